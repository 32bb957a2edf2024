package buffer

import (
	"io"
	"slices"
)

// overlay composes base storage with pending edits. Callers validate
// bounds before every call; implementations may assume offsets and
// lengths are inside the current logical content.
type overlay interface {
	length() int64
	read(off, n int64) ([]byte, error)
	insert(off int64, data []byte) error
	delete(off, n int64) ([]byte, error)
	writeTo(w io.Writer) (int64, error)
}

// directOverlay keeps the whole content in one slice and splices edits
// in place. Used over in-memory storage.
type directOverlay struct {
	data []byte
}

func newDirectOverlay(data []byte) *directOverlay {
	return &directOverlay{data: data}
}

func (d *directOverlay) length() int64 { return int64(len(d.data)) }

func (d *directOverlay) read(off, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	return slices.Clone(d.data[off : off+n]), nil
}

func (d *directOverlay) insert(off int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	d.data = slices.Insert(d.data, int(off), data...)
	return nil
}

func (d *directOverlay) delete(off, n int64) ([]byte, error) {
	removed := slices.Clone(d.data[off : off+n])
	d.data = slices.Delete(d.data, int(off), int(off+n))
	return removed, nil
}

func (d *directOverlay) writeTo(w io.Writer) (int64, error) {
	n, err := w.Write(d.data)
	return int64(n), err
}
