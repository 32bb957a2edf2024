package buffer

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/dshills/bytestorm/internal/engine/history"
	"github.com/dshills/bytestorm/internal/engine/storage"
)

// Buffer errors.
var (
	// ErrOutOfRange is returned when an operation addresses bytes
	// outside the current buffer bounds. Out-of-range requests are
	// never clamped.
	ErrOutOfRange = errors.New("buffer: offset out of range")

	// ErrInvalidSpan is returned for malformed spans (negative fields
	// or overflowing end).
	ErrInvalidSpan = errors.New("buffer: invalid span")

	// ErrReadOnly is returned by mutating operations on a read-only
	// buffer.
	ErrReadOnly = errors.New("buffer: read-only")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("buffer: closed")
)

// Buffer is the editable byte content of one file.
type Buffer struct {
	mu       sync.RWMutex
	ov       overlay
	st       storage.Strategy
	readOnly bool
	dirty    bool
	revision uint64
	closed   bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithReadOnly makes every mutating operation fail with ErrReadOnly.
func WithReadOnly() Option {
	return func(b *Buffer) { b.readOnly = true }
}

// New wraps st in an editable buffer. In-memory strategies are spliced
// directly; chunked and mapped strategies get a piece-list overlay.
func New(st storage.Strategy, opts ...Option) (*Buffer, error) {
	b := &Buffer{st: st}
	for _, opt := range opts {
		opt(b)
	}
	ov, err := overlayFor(st)
	if err != nil {
		return nil, err
	}
	b.ov = ov
	return b, nil
}

func overlayFor(st storage.Strategy) (overlay, error) {
	if st.Kind() == storage.KindInMemory {
		data, err := storage.ReadRange(st, 0, st.Len())
		if err != nil {
			return nil, err
		}
		return newDirectOverlay(data), nil
	}
	return newPieceOverlay(st), nil
}

// Len returns the logical content length: base length adjusted by every
// overlay edit.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ov.length()
}

// Revision returns a counter that increments on every successful
// mutation. Readers use it to detect concurrent change.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Dirty reports whether the buffer has unflushed modifications.
func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (b *Buffer) MarkClean() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirty = false
}

// ReadOnly reports whether mutations are rejected.
func (b *Buffer) ReadOnly() bool { return b.readOnly }

// Kind returns the backing storage strategy kind.
func (b *Buffer) Kind() storage.Kind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.st.Kind()
}

// Read returns a copy of the bytes in span. It never mutates state and
// fails with ErrOutOfRange or ErrInvalidSpan for bad spans.
func (b *Buffer) Read(span ByteSpan) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, ErrClosed
	}
	if err := b.checkSpan(span); err != nil {
		return nil, err
	}
	return b.ov.read(span.Start, span.Len)
}

// Insert places data at off, shifting everything after it. Inserting at
// off == Len() appends. Returns the operation that was applied; an
// empty data slice is a no-op returning a zero operation.
func (b *Buffer) Insert(off int64, data []byte) (history.Operation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutable(); err != nil {
		return history.Operation{}, err
	}
	if off < 0 || off > b.ov.length() {
		return history.Operation{}, fmt.Errorf("%w: insert at %d, length %d", ErrOutOfRange, off, b.ov.length())
	}
	if len(data) == 0 {
		return history.Operation{}, nil
	}
	owned := slices.Clone(data)
	if err := b.ov.insert(off, owned); err != nil {
		return history.Operation{}, err
	}
	b.touch()
	return history.NewInsert(off, owned), nil
}

// Delete removes n bytes at off, capturing them for the returned
// operation's inverse. A zero-length delete is a no-op returning a zero
// operation.
func (b *Buffer) Delete(off, n int64) (history.Operation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutable(); err != nil {
		return history.Operation{}, err
	}
	span := Span(off, n)
	if err := b.checkSpan(span); err != nil {
		return history.Operation{}, err
	}
	if n == 0 {
		return history.Operation{}, nil
	}
	removed, err := b.ov.delete(off, n)
	if err != nil {
		return history.Operation{}, err
	}
	b.touch()
	return history.NewDelete(off, removed), nil
}

// Overwrite replaces bytes at off with data. When data runs past the
// current end the excess grows the buffer, modeling hex-mode typing
// past EOF. off itself must lie within [0, Len()].
func (b *Buffer) Overwrite(off int64, data []byte) (history.Operation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutable(); err != nil {
		return history.Operation{}, err
	}
	length := b.ov.length()
	if off < 0 || off > length {
		return history.Operation{}, fmt.Errorf("%w: overwrite at %d, length %d", ErrOutOfRange, off, length)
	}
	if len(data) == 0 {
		return history.Operation{}, nil
	}
	overlap := min(int64(len(data)), length-off)

	var old []byte
	if overlap > 0 {
		var err error
		old, err = b.ov.delete(off, overlap)
		if err != nil {
			return history.Operation{}, err
		}
	}
	owned := slices.Clone(data)
	if err := b.ov.insert(off, owned); err != nil {
		// Restore the deleted prefix; without it the failure would
		// leave a hole.
		_ = b.ov.insert(off, old)
		return history.Operation{}, err
	}
	b.touch()
	return history.NewOverwrite(off, old, owned), nil
}

// Apply replays a journal operation through the same mutation path as
// direct edits. Apply(op) followed by Apply(op.Inverted()) is a
// byte-for-byte identity.
func (b *Buffer) Apply(op history.Operation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkMutable(); err != nil {
		return err
	}
	length := b.ov.length()
	switch op.Kind {
	case history.OpNone:
		return nil
	case history.OpInsert:
		if op.Offset < 0 || op.Offset > length {
			return fmt.Errorf("%w: replay insert at %d, length %d", ErrOutOfRange, op.Offset, length)
		}
		if err := b.ov.insert(op.Offset, op.Data); err != nil {
			return err
		}
	case history.OpDelete:
		span := Span(op.Offset, int64(len(op.Data)))
		if err := b.checkSpan(span); err != nil {
			return fmt.Errorf("replay delete %s: %w", span, err)
		}
		if _, err := b.ov.delete(op.Offset, span.Len); err != nil {
			return err
		}
	case history.OpOverwrite:
		span := Span(op.Offset, int64(len(op.Old)))
		if err := b.checkSpan(span); err != nil {
			return fmt.Errorf("replay overwrite %s: %w", span, err)
		}
		old, err := b.ov.delete(op.Offset, span.Len)
		if err != nil {
			return err
		}
		if err := b.ov.insert(op.Offset, op.Data); err != nil {
			_ = b.ov.insert(op.Offset, old)
			return err
		}
	default:
		return fmt.Errorf("buffer: unknown operation kind %v", op.Kind)
	}
	b.touch()
	return nil
}

// WriteTo streams the full logical content to w in bounded windows.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, ErrClosed
	}
	return b.ov.writeTo(w)
}

// Reset re-bases the buffer on st after a save: the overlay is dropped,
// the previous strategy is closed, and the buffer reports clean. The
// logical content must be unchanged by the caller's contract, so the
// revision is preserved.
func (b *Buffer) Reset(st storage.Strategy) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	ov, err := overlayFor(st)
	if err != nil {
		return err
	}
	if b.st != nil {
		b.st.Close()
	}
	b.st = st
	b.ov = ov
	b.dirty = false
	return nil
}

// Close releases the backing strategy. Further operations fail with
// ErrClosed.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.st != nil {
		return b.st.Close()
	}
	return nil
}

// touch records a successful mutation. Must hold mu.
func (b *Buffer) touch() {
	b.dirty = true
	b.revision++
}

// checkMutable guards every mutation. Must hold mu.
func (b *Buffer) checkMutable() error {
	if b.closed {
		return ErrClosed
	}
	if b.readOnly {
		return ErrReadOnly
	}
	return nil
}

// checkSpan validates span against the current length. Must hold mu.
func (b *Buffer) checkSpan(span ByteSpan) error {
	if !span.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSpan, span)
	}
	if span.End() > b.ov.length() {
		return fmt.Errorf("%w: %s, length %d", ErrOutOfRange, span, b.ov.length())
	}
	return nil
}
