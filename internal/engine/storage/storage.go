package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Default sizing for strategy selection and caching.
const (
	// DefaultThreshold is the file size at or above which Open switches
	// from InMemory to Mapped/Chunked access.
	DefaultThreshold = 10 << 20 // 10 MiB

	// DefaultChunkSize is the read granularity of the Chunked strategy.
	DefaultChunkSize = 1 << 20 // 1 MiB

	// DefaultChunkCount bounds the number of resident chunks.
	DefaultChunkCount = 5

	// DefaultWindowSize is the mapping granularity of the Mapped strategy.
	DefaultWindowSize = 16 << 20 // 16 MiB

	// DefaultWindowCount bounds the number of resident mapped windows.
	DefaultWindowCount = 4
)

// Sentinel errors returned by strategies.
var (
	// ErrClosed is returned when reading from a closed strategy.
	ErrClosed = errors.New("storage: strategy closed")

	// ErrOutOfRange is returned by ReadRange when the requested range
	// exceeds the backing length.
	ErrOutOfRange = errors.New("storage: read out of range")

	// errMapUnsupported signals that memory mapping is unavailable on
	// this platform or failed; Open falls back to Chunked.
	errMapUnsupported = errors.New("storage: memory mapping unsupported")
)

// Kind identifies the access strategy backing a file.
type Kind uint8

// Strategy kinds.
const (
	KindInMemory Kind = iota
	KindChunked
	KindMapped
)

// String returns a human-readable strategy name.
func (k Kind) String() string {
	switch k {
	case KindInMemory:
		return "in-memory"
	case KindChunked:
		return "chunked"
	case KindMapped:
		return "mapped"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Strategy is a read-only byte source over an opened file.
//
// ReadAt follows the io.ReaderAt contract. Len reports the backing
// length, fixed for the lifetime of the strategy. Implementations are
// safe for concurrent readers.
type Strategy interface {
	io.ReaderAt
	Len() int64
	Kind() Kind
	Close() error
}

// IOError wraps a failed storage operation with its operation name and
// path. It unwraps to the underlying OS error.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

// Options configures strategy selection and cache sizing. Zero values
// select the package defaults.
type Options struct {
	// Threshold is the file size at or above which Open avoids loading
	// the whole file into memory.
	Threshold int64

	// ChunkSize and ChunkCount size the Chunked strategy's cache.
	ChunkSize  int64
	ChunkCount int

	// WindowSize and WindowCount size the Mapped strategy's window set.
	// WindowSize is rounded down to a multiple of the system page size.
	WindowSize  int64
	WindowCount int
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.ChunkCount <= 0 {
		o.ChunkCount = DefaultChunkCount
	}
	if o.WindowSize <= 0 {
		o.WindowSize = DefaultWindowSize
	}
	page := int64(os.Getpagesize())
	if o.WindowSize < page {
		o.WindowSize = page
	}
	o.WindowSize -= o.WindowSize % page
	if o.WindowCount <= 0 {
		o.WindowCount = DefaultWindowCount
	}
	return o
}

// Open opens path and selects an access strategy by file size: below
// opts.Threshold the content is loaded whole; at or above it the file is
// memory-mapped where the platform supports it, else read in chunks.
//
// Open fails with *IOError if the path does not exist or is unreadable.
// Callers that want absent files to mean "new empty buffer" check for
// fs.ErrNotExist themselves before calling.
func Open(path string, opts Options) (Strategy, error) {
	opts = opts.withDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	size := info.Size()

	if size < opts.Threshold {
		data := make([]byte, size)
		if err := readFullAt(f, data, 0); err != nil {
			f.Close()
			return nil, &IOError{Op: "read", Path: path, Err: err}
		}
		f.Close()
		return NewInMemory(data), nil
	}

	m, err := newMapped(f, path, size, opts)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, errMapUnsupported) {
		f.Close()
		return nil, err
	}
	return newChunked(f, path, size, opts), nil
}

// ReadRange reads exactly length bytes at off from s. Unlike a raw
// ReadAt, it validates the range against s.Len() up front and fails with
// ErrOutOfRange instead of returning a short read.
func ReadRange(s Strategy, off, length int64) ([]byte, error) {
	if off < 0 || length < 0 || off+length < off || off+length > s.Len() {
		return nil, fmt.Errorf("%w: [%d,+%d) of %d", ErrOutOfRange, off, length, s.Len())
	}
	if length == 0 {
		return nil, nil
	}
	p := make([]byte, length)
	if _, err := s.ReadAt(p, off); err != nil && err != io.EOF {
		return nil, err
	}
	return p, nil
}

// readRetries bounds how often a failed low-level read is retried before
// the error surfaces.
const readRetries = 3

// readFullAt fills p from f at off, retrying transient short reads a
// bounded number of times.
func readFullAt(f *os.File, p []byte, off int64) error {
	var err error
	for attempt := 0; attempt < readRetries; attempt++ {
		var n int
		n, err = f.ReadAt(p, off)
		if n == len(p) {
			return nil
		}
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		p = p[n:]
		off += int64(n)
	}
	return err
}
