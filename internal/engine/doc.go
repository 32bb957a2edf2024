// Package engine ties storage, buffer, and history into the editable
// document that the rest of the editor works against.
//
// A Document owns one edit buffer over one storage strategy, an undo
// journal, and a cursor. Every mutation (direct edits, grouped user
// actions, search replacements, undo and redo) travels the same path:
// the buffer applies the change, the journal records it, the cursor
// shifts, and change listeners fire. That single path is what keeps the
// journal an exact history of the buffer.
//
// Opening a path that does not exist yields an empty document that
// creates the file on first save. Saves are atomic: content streams to
// a temporary file which is renamed over the target, and a failed save
// leaves the document, its journal, and the on-disk file untouched.
//
// # Usage
//
//	doc, err := engine.Open("notes.txt")
//	if err != nil { ... }
//	defer doc.Close()
//
//	doc.Insert(0, []byte("hello"))
//	doc.Undo()
//	doc.Save()
package engine
