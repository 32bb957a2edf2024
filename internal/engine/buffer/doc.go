// Package buffer provides the editable byte representation of a file.
//
// A Buffer owns exactly one storage.Strategy plus an overlay of pending
// edits. Content below the in-memory threshold is spliced directly; for
// chunked or mapped backing the overlay is a piece list layering
// insertions and deletions over the unmodified base, so editing a
// gigabyte file never copies the gigabyte. Either way the composition is
// deterministic: Read returns the buffer's true current content.
//
// Mutations run under a single write lock for the duration of one
// operation and return the history.Operation describing exactly what
// changed, ready for journaling. Apply replays journal operations along
// the same path, so undo and redo cannot diverge from direct edits.
//
// Offsets and lengths are validated before any state changes; an
// out-of-bounds request fails with ErrOutOfRange and mutates nothing.
package buffer
