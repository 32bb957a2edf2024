package storage

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes src to path atomically: content is streamed to
// a temporary file in the same directory, synced, then renamed over the
// destination. On any failure the destination is left untouched and the
// temporary file is removed.
func WriteFileAtomic(path string, src io.Reader, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".bytestorm-*.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: op, Path: path, Err: err}
	}

	if _, err := io.Copy(tmp, src); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
