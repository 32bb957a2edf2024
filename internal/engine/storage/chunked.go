package storage

import (
	"container/list"
	"io"
	"os"
	"sync"
)

// chunk is one cached slice of the backing file.
type chunk struct {
	idx  int64
	data []byte
}

// chunked reads the file through a bounded LRU cache of fixed-size
// chunks. Cache misses issue one bounded ReadAt per chunk.
type chunked struct {
	mu        sync.Mutex
	f         *os.File
	path      string
	size      int64
	chunkSize int64
	maxChunks int
	cache     map[int64]*list.Element
	lru       *list.List // front = most recently used
	loads     int64      // chunk reads issued, for tests
	closed    bool
}

func newChunked(f *os.File, path string, size int64, opts Options) *chunked {
	return &chunked{
		f:         f,
		path:      path,
		size:      size,
		chunkSize: opts.ChunkSize,
		maxChunks: opts.ChunkCount,
		cache:     make(map[int64]*list.Element),
		lru:       list.New(),
	}
}

func (c *chunked) ReadAt(p []byte, off int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if off < 0 || off >= c.size {
		return 0, io.EOF
	}

	n := 0
	for n < len(p) && off < c.size {
		ck, err := c.chunkFor(off / c.chunkSize)
		if err != nil {
			return n, err
		}
		rel := off - ck.idx*c.chunkSize
		m := copy(p[n:], ck.data[rel:])
		n += m
		off += int64(m)
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// chunkFor returns the chunk with the given index, loading and caching
// it on a miss. Must hold mu.
func (c *chunked) chunkFor(idx int64) (*chunk, error) {
	if el, ok := c.cache[idx]; ok {
		c.lru.MoveToFront(el)
		return el.Value.(*chunk), nil
	}

	off := idx * c.chunkSize
	length := c.chunkSize
	if off+length > c.size {
		length = c.size - off
	}
	data := make([]byte, length)
	if err := readFullAt(c.f, data, off); err != nil {
		return nil, &IOError{Op: "read", Path: c.path, Err: err}
	}
	c.loads++

	ck := &chunk{idx: idx, data: data}
	c.cache[idx] = c.lru.PushFront(ck)
	for c.lru.Len() > c.maxChunks {
		el := c.lru.Back()
		c.lru.Remove(el)
		delete(c.cache, el.Value.(*chunk).idx)
	}
	return ck, nil
}

func (c *chunked) Len() int64 { return c.size }

func (c *chunked) Kind() Kind { return KindChunked }

func (c *chunked) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cache = nil
	c.lru.Init()
	if err := c.f.Close(); err != nil {
		return &IOError{Op: "close", Path: c.path, Err: err}
	}
	return nil
}
