package engine

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
	"github.com/dshills/bytestorm/internal/engine/storage"
)

// defaultPerm is the mode for files created by saving a new document.
const defaultPerm fs.FileMode = 0o644

// Document is one open file: buffer, journal, and cursor behind a
// single mutation lock.
type Document struct {
	mu       sync.Mutex
	path     string
	buf      *buffer.Buffer
	jrn      *history.Journal
	cur      Cursor
	perm     fs.FileMode
	opts     settings
	onChange func(history.Operation)
	closed   bool
}

// Open opens path, selecting a storage strategy by file size. A path
// that does not exist yields an empty document that will create the
// file on save.
func Open(path string, opts ...Option) (*Document, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	d := &Document{
		path: path,
		jrn:  history.New(s.undoCap),
		perm: defaultPerm,
		opts: s,
	}

	var bufOpts []buffer.Option
	if s.readOnly {
		bufOpts = append(bufOpts, buffer.WithReadOnly())
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		b, err := buffer.New(storage.NewInMemory(nil), bufOpts...)
		if err != nil {
			return nil, err
		}
		d.buf = b
		return d, nil
	case err != nil:
		return nil, &storage.IOError{Op: "stat", Path: path, Err: err}
	}
	d.perm = info.Mode().Perm()

	st, err := storage.Open(path, s.storage)
	if err != nil {
		return nil, err
	}
	b, err := buffer.New(st, bufOpts...)
	if err != nil {
		st.Close()
		return nil, err
	}
	d.buf = b
	return d, nil
}

// NewScratch returns an unnamed empty document. Save fails with
// ErrNoPath until SaveAs names it.
func NewScratch(opts ...Option) *Document {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	var bufOpts []buffer.Option
	if s.readOnly {
		bufOpts = append(bufOpts, buffer.WithReadOnly())
	}
	b, _ := buffer.New(storage.NewInMemory(nil), bufOpts...)
	return &Document{
		buf:  b,
		jrn:  history.New(s.undoCap),
		perm: defaultPerm,
		opts: s,
	}
}

// Path returns the document's file path, empty for a scratch document.
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Len returns the logical content length.
func (d *Document) Len() int64 { return d.buf.Len() }

// Revision returns the buffer revision counter.
func (d *Document) Revision() uint64 { return d.buf.Revision() }

// ReadOnly reports whether mutations are rejected.
func (d *Document) ReadOnly() bool { return d.buf.ReadOnly() }

// Kind returns the backing storage strategy kind.
func (d *Document) Kind() storage.Kind { return d.buf.Kind() }

// Dirty reports whether the content differs from the last saved state.
// Undoing back to the save point reports clean again.
func (d *Document) Dirty() bool { return d.jrn.Modified() }

// Read returns a copy of the bytes in span.
func (d *Document) Read(span buffer.ByteSpan) ([]byte, error) {
	return d.buf.Read(span)
}

// OnChange registers fn to run after every applied operation,
// including undo and redo replays, in application order. The callback
// must not mutate the document.
func (d *Document) OnChange(fn func(history.Operation)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// Insert places data at off as one undo group (or as part of the open
// group).
func (d *Document) Insert(off int64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	op, err := d.buf.Insert(off, data)
	return d.commit(op, err)
}

// Delete removes n bytes at off.
func (d *Document) Delete(off, n int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	op, err := d.buf.Delete(off, n)
	return d.commit(op, err)
}

// Overwrite replaces bytes at off with data, growing the buffer when
// data runs past the end.
func (d *Document) Overwrite(off int64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	op, err := d.buf.Overwrite(off, data)
	return d.commit(op, err)
}

// ReplaceSpan deletes span and inserts data in its place as a single
// undo group.
func (d *Document) ReplaceSpan(span buffer.ByteSpan, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.jrn.BeginGroup()
	op, err := d.buf.Delete(span.Start, span.Len)
	if err := d.commit(op, err); err != nil {
		d.jrn.CancelGroup(journalApplier{d})
		return err
	}
	op, err = d.buf.Insert(span.Start, data)
	if err := d.commit(op, err); err != nil {
		d.jrn.CancelGroup(journalApplier{d})
		return err
	}
	d.jrn.EndGroup()
	return nil
}

// BeginGroup opens an undo group for a composite user action. Calls
// nest; the outermost EndGroup commits.
func (d *Document) BeginGroup() { d.jrn.BeginGroup() }

// EndGroup closes the innermost group.
func (d *Document) EndGroup() { d.jrn.EndGroup() }

// CancelGroup rolls back and abandons the open group.
func (d *Document) CancelGroup() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.jrn.CancelGroup(journalApplier{d})
}

// Undo reverts the most recent group. It reports false when there is
// nothing to undo.
func (d *Document) Undo() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.jrn.Undo(journalApplier{d})
}

// Redo re-applies the most recently undone group. It reports false when
// there is nothing to redo.
func (d *Document) Redo() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.jrn.Redo(journalApplier{d})
}

// CanUndo reports whether Undo would act.
func (d *Document) CanUndo() bool { return d.jrn.CanUndo() }

// CanRedo reports whether Redo would act.
func (d *Document) CanRedo() bool { return d.jrn.CanRedo() }

// Save writes the content to the document's path.
func (d *Document) Save() error {
	d.mu.Lock()
	path := d.path
	d.mu.Unlock()
	if path == "" {
		return ErrNoPath
	}
	return d.SaveAs(path)
}

// SaveAs writes the content atomically to path, then re-bases the
// buffer on the saved file and marks the document clean. On failure
// nothing changes: buffer, journal, cursor, and the previous on-disk
// content all stay as they were.
func (d *Document) SaveAs(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if err := storage.WriteFileAtomic(path, &contentReader{buf: d.buf}, d.perm); err != nil {
		return err
	}
	d.path = path

	// Re-base on the saved file so the overlay stops accumulating. If
	// the reopen fails the old strategy keeps serving identical bytes;
	// the save itself already succeeded.
	if st, err := storage.Open(path, d.opts.storage); err == nil {
		if err := d.buf.Reset(st); err != nil {
			st.Close()
			d.buf.MarkClean()
		}
	} else {
		d.buf.MarkClean()
	}
	d.jrn.MarkSaved()
	return nil
}

// Cursor returns the current cursor.
func (d *Document) Cursor() Cursor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cur
}

// SetCursor moves the cursor, clamped to [0, Len()]. The selection is
// kept only if it still fits the buffer.
func (d *Document) SetCursor(pos int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if l := d.buf.Len(); pos > l {
		pos = l
	}
	d.cur.Pos = pos
}

// Select sets the selection span, clamped into the buffer.
func (d *Document) Select(span buffer.ByteSpan) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !span.Valid() {
		return
	}
	if l := d.buf.Len(); span.End() > l {
		span.Len = l - span.Start
		if span.Len < 0 {
			span = buffer.ByteSpan{}
		}
	}
	d.cur.Sel = span
}

// ClearSelection drops the selection.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cur.Sel = buffer.ByteSpan{}
}

// Close releases the document's resources.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.buf.Close()
}

// commit records a successful operation, shifts the cursor, and fires
// the change callback. Must hold mu.
func (d *Document) commit(op history.Operation, err error) error {
	if err != nil {
		return err
	}
	if op.IsZero() {
		return nil
	}
	d.jrn.Record(op)
	d.applied(op)
	return nil
}

// applied runs the post-apply bookkeeping shared by direct edits and
// journal replays. Must hold mu (or be called from within a held
// section via journalApplier).
func (d *Document) applied(op history.Operation) {
	d.cur = d.cur.adjust(op, d.buf.Len())
	if d.onChange != nil {
		d.onChange(op)
	}
}

// journalApplier lets the journal drive buffer replays through the
// document's bookkeeping.
type journalApplier struct{ d *Document }

func (a journalApplier) Apply(op history.Operation) error {
	if err := a.d.buf.Apply(op); err != nil {
		return err
	}
	a.d.applied(op)
	return nil
}

// contentReader adapts the buffer to io.Reader for streaming saves.
type contentReader struct {
	buf *buffer.Buffer
	off int64
}

func (r *contentReader) Read(p []byte) (int, error) {
	remaining := r.buf.Len() - r.off
	if remaining <= 0 {
		return 0, io.EOF
	}
	n := int64(len(p))
	if n > remaining {
		n = remaining
	}
	data, err := r.buf.Read(buffer.Span(r.off, n))
	if err != nil {
		return 0, err
	}
	copy(p, data)
	r.off += int64(len(data))
	return len(data), nil
}
