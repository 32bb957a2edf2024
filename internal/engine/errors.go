package engine

import (
	"errors"

	"github.com/dshills/bytestorm/internal/engine/buffer"
)

// Engine errors.
var (
	// ErrNoPath is returned by Save on a document that was never given
	// a path.
	ErrNoPath = errors.New("engine: document has no path")

	// ErrClosed is returned by operations on a closed document.
	ErrClosed = errors.New("engine: document closed")
)

// Re-exported buffer sentinels so callers can match common failures
// without importing the buffer package.
var (
	ErrOutOfRange = buffer.ErrOutOfRange
	ErrReadOnly   = buffer.ErrReadOnly
)
