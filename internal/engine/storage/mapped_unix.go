//go:build unix

package storage

import (
	"container/list"
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// window is one mapped region of the backing file.
type window struct {
	idx  int64
	data []byte // mmap'd, length <= windowSize
}

// mapped memory-maps the file in aligned windows. Windows are mapped on
// first access; when the resident set exceeds maxWindows the
// least-recently-used window is unmapped. Unmapping never changes read
// results, only the cost of the next access.
type mapped struct {
	mu         sync.Mutex
	f          *os.File
	path       string
	size       int64
	windowSize int64
	maxWindows int
	windows    map[int64]*list.Element
	lru        *list.List
	maps       int64 // windows mapped, for tests
	closed     bool
}

func newMapped(f *os.File, path string, size int64, opts Options) (Strategy, error) {
	if size == 0 {
		// Zero-length files cannot be mapped; nothing to gain anyway.
		return nil, errMapUnsupported
	}
	m := &mapped{
		f:          f,
		path:       path,
		size:       size,
		windowSize: opts.WindowSize,
		maxWindows: opts.WindowCount,
		windows:    make(map[int64]*list.Element),
		lru:        list.New(),
	}
	// Probe the first window now so platforms where mmap fails (e.g.
	// unusual filesystems) fall back to chunked at open time, not on a
	// later read.
	m.mu.Lock()
	_, err := m.windowFor(0)
	m.mu.Unlock()
	if err != nil {
		m.release()
		return nil, errMapUnsupported
	}
	return m, nil
}

func (m *mapped) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	if off < 0 || off >= m.size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && off < m.size {
		w, err := m.windowFor(off / m.windowSize)
		if err != nil {
			return n, err
		}
		rel := off - w.idx*m.windowSize
		c := copy(p[n:], w.data[rel:])
		n += c
		off += int64(c)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// windowFor returns the mapped window with the given index, mapping it
// on a miss and evicting the least-recently-used window past the bound.
// Must hold mu.
func (m *mapped) windowFor(idx int64) (*window, error) {
	if el, ok := m.windows[idx]; ok {
		m.lru.MoveToFront(el)
		return el.Value.(*window), nil
	}

	off := idx * m.windowSize
	length := m.windowSize
	if off+length > m.size {
		length = m.size - off
	}
	data, err := unix.Mmap(int(m.f.Fd()), off, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, &IOError{Op: "mmap", Path: m.path, Err: err}
	}
	m.maps++

	w := &window{idx: idx, data: data}
	m.windows[idx] = m.lru.PushFront(w)
	for m.lru.Len() > m.maxWindows {
		el := m.lru.Back()
		m.lru.Remove(el)
		old := el.Value.(*window)
		delete(m.windows, old.idx)
		_ = unix.Munmap(old.data)
	}
	return w, nil
}

func (m *mapped) Len() int64 { return m.size }

func (m *mapped) Kind() Kind { return KindMapped }

func (m *mapped) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.release()
	if err := m.f.Close(); err != nil {
		return &IOError{Op: "close", Path: m.path, Err: err}
	}
	return nil
}

// release unmaps every resident window. Close and the failed-probe path
// in newMapped both funnel through here so mappings never outlive the
// strategy.
func (m *mapped) release() {
	for el := m.lru.Front(); el != nil; el = el.Next() {
		_ = unix.Munmap(el.Value.(*window).data)
	}
	m.lru.Init()
	m.windows = make(map[int64]*list.Element)
}
