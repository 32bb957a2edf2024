// Package storage provides the backing byte source for edit buffers.
//
// A Strategy abstracts how file bytes are fetched. Three strategies exist:
//
//   - InMemory: the whole file resident in one byte slice. Used for files
//     below the size threshold.
//   - Chunked: fixed-size chunks loaded on demand into a bounded LRU
//     cache, backed by ReadAt against the open file.
//   - Mapped: the file is memory-mapped in aligned windows; windows are
//     mapped lazily on first access and the least-recently-used window is
//     unmapped when the resident set exceeds its bound.
//
// Open selects a strategy from the file size. The choice is an
// implementation detail: a read of any valid range returns identical
// bytes under every strategy. Strategies are read-only; modified content
// lives in the edit buffer's overlay and reaches disk only through
// WriteFileAtomic on an explicit save.
//
// All I/O failures surface as *IOError wrapping the underlying OS error,
// so callers can match with errors.Is against fs.ErrNotExist,
// fs.ErrPermission, and friends.
package storage
