package engine

import "github.com/dshills/bytestorm/internal/engine/storage"

// settings collects resolved document options.
type settings struct {
	storage  storage.Options
	undoCap  int
	readOnly bool
}

// Option configures a Document at open time.
type Option func(*settings)

// WithThreshold sets the file size at or above which content is
// accessed through mapped or chunked storage instead of being loaded
// whole.
func WithThreshold(n int64) Option {
	return func(s *settings) { s.storage.Threshold = n }
}

// WithChunkSize sets the chunked strategy's read granularity.
func WithChunkSize(n int64) Option {
	return func(s *settings) { s.storage.ChunkSize = n }
}

// WithChunkCount bounds how many chunks the chunked strategy keeps
// resident.
func WithChunkCount(n int) Option {
	return func(s *settings) { s.storage.ChunkCount = n }
}

// WithWindowSize sets the mapped strategy's window granularity.
func WithWindowSize(n int64) Option {
	return func(s *settings) { s.storage.WindowSize = n }
}

// WithWindowCount bounds how many windows the mapped strategy keeps
// mapped.
func WithWindowCount(n int) Option {
	return func(s *settings) { s.storage.WindowCount = n }
}

// WithUndoCap bounds the number of retained undo groups. Zero keeps
// history for the lifetime of the document.
func WithUndoCap(n int) Option {
	return func(s *settings) { s.undoCap = n }
}

// WithReadOnly rejects every mutation with ErrReadOnly.
func WithReadOnly() Option {
	return func(s *settings) { s.readOnly = true }
}
