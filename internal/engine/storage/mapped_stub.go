//go:build !unix

package storage

import "os"

// newMapped reports mapping as unavailable so Open falls back to the
// chunked strategy on platforms without unix mmap support.
func newMapped(_ *os.File, _ string, _ int64, _ Options) (Strategy, error) {
	return nil, errMapUnsupported
}
