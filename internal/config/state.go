package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FileState is what the editor remembers about one file between runs.
type FileState struct {
	// Offset is the last cursor byte offset.
	Offset int64
	// Hex records whether the file was showing the hex view.
	Hex bool
}

// State is the persisted per-file session memory, stored as state.json
// next to the config file. The raw JSON is kept as-is and patched in
// place, so entries written by newer versions survive a round trip.
type State struct {
	path string
	raw  []byte
}

// LoadState reads the state file at path, or the default location when
// path is empty. A missing or corrupt file yields an empty state; this
// is session sugar, never a reason to refuse to start.
func LoadState(path string) *State {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return &State{}
		}
		path = filepath.Join(dir, "state.json")
	}
	st := &State{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	if !gjson.ValidBytes(data) {
		return st
	}
	st.raw = data
	return st
}

// Lookup returns the remembered state for a file path.
func (st *State) Lookup(file string) (FileState, bool) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return FileState{}, false
	}
	entry := gjson.GetBytes(st.raw, key(abs))
	if !entry.Exists() {
		return FileState{}, false
	}
	return FileState{
		Offset: entry.Get("offset").Int(),
		Hex:    entry.Get("hex").Bool(),
	}, true
}

// Set records the state for a file path in memory; Save persists it.
func (st *State) Set(file string, fs FileState) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return
	}
	raw, err := sjson.SetBytes(st.raw, key(abs)+".offset", fs.Offset)
	if err != nil {
		return
	}
	raw, err = sjson.SetBytes(raw, key(abs)+".hex", fs.Hex)
	if err != nil {
		return
	}
	st.raw = raw
}

// Save writes the state file, creating its directory if needed.
func (st *State) Save() error {
	if st.path == "" || st.raw == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return err
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, st.raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return errors.Join(err, os.Remove(tmp))
	}
	return nil
}

// key escapes a file path for use as a gjson/sjson path segment under
// the "files" object.
func key(abs string) string {
	out := make([]byte, 0, len(abs)+8)
	out = append(out, "files."...)
	for i := 0; i < len(abs); i++ {
		switch abs[i] {
		case '.', '*', '?', '\\', '|', '#', '@':
			out = append(out, '\\')
		}
		out = append(out, abs[i])
	}
	return string(out)
}
