package storage

import (
	"io"
	"sync"
)

// inMemory holds the whole backing content in one slice. It is the
// strategy for files below the size threshold and for brand-new buffers.
type inMemory struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

// NewInMemory returns an in-memory strategy over data. The strategy
// takes ownership of the slice.
func NewInMemory(data []byte) Strategy {
	return &inMemory{data: data}
}

func (m *inMemory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *inMemory) Len() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.data))
}

func (m *inMemory) Kind() Kind { return KindInMemory }

func (m *inMemory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.data = nil
	return nil
}
