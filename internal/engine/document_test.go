package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
	"github.com/dshills/bytestorm/internal/engine/storage"
)

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func mustOpen(t *testing.T, path string, opts ...Option) *Document {
	t.Helper()
	d, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open(%q): %v", path, err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func content(t *testing.T, d *Document) []byte {
	t.Helper()
	data, err := d.Read(buffer.Span(0, d.Len()))
	if err != nil {
		t.Fatalf("Read full: %v", err)
	}
	return data
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	d := mustOpen(t, path)

	if d.Len() != 0 {
		t.Fatalf("Len = %d, want 0", d.Len())
	}
	if d.Dirty() {
		t.Fatal("fresh document reports dirty")
	}
	if d.Path() != path {
		t.Fatalf("Path = %q, want %q", d.Path(), path)
	}

	if err := d.Insert(0, []byte("created on save\n")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "created on save\n" {
		t.Fatalf("file content = %q", got)
	}
}

func TestEditUndoRedoCycle(t *testing.T) {
	path := writeFixture(t, "cycle.txt", []byte("hello world"))
	d := mustOpen(t, path)

	if err := d.Overwrite(0, []byte("HELLO")); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if err := d.Insert(11, []byte("!")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := string(content(t, d)); got != "HELLO world!" {
		t.Fatalf("after edits: %q", got)
	}

	for _, want := range []string{"HELLO world", "hello world"} {
		ok, err := d.Undo()
		if err != nil || !ok {
			t.Fatalf("Undo = %v, %v", ok, err)
		}
		if got := string(content(t, d)); got != want {
			t.Fatalf("after undo: %q, want %q", got, want)
		}
	}
	if ok, _ := d.Undo(); ok {
		t.Fatal("Undo past the beginning reported work")
	}

	for _, want := range []string{"HELLO world", "HELLO world!"} {
		ok, err := d.Redo()
		if err != nil || !ok {
			t.Fatalf("Redo = %v, %v", ok, err)
		}
		if got := string(content(t, d)); got != want {
			t.Fatalf("after redo: %q, want %q", got, want)
		}
	}
	if ok, _ := d.Redo(); ok {
		t.Fatal("Redo past the end reported work")
	}
}

func TestDirtyTracksSavePoint(t *testing.T) {
	path := writeFixture(t, "dirty.txt", []byte("base"))
	d := mustOpen(t, path)

	if d.Dirty() {
		t.Fatal("dirty before any edit")
	}
	if err := d.Insert(4, []byte("line")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !d.Dirty() {
		t.Fatal("clean after edit")
	}

	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if d.Dirty() {
		t.Fatal("dirty after save")
	}

	if err := d.Insert(8, []byte("!")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !d.Dirty() {
		t.Fatal("clean after post-save edit")
	}
	if ok, err := d.Undo(); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if d.Dirty() {
		t.Fatal("dirty after undoing back to the save point")
	}
	if ok, err := d.Redo(); !ok || err != nil {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	if !d.Dirty() {
		t.Fatal("clean after redoing past the save point")
	}
}

func TestSaveAtomicReplacesAndRebases(t *testing.T) {
	path := writeFixture(t, "atomic.txt", []byte("original content"))
	d := mustOpen(t, path)

	if err := d.Overwrite(0, []byte("rewritten")); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "rewritten content" {
		t.Fatalf("file = %q", got)
	}
	if got := string(content(t, d)); got != "rewritten content" {
		t.Fatalf("in-memory content after rebase = %q", got)
	}

	// The journal survives the save: undo still works and makes the
	// document dirty again.
	if !d.CanUndo() {
		t.Fatal("journal lost across save")
	}
	if ok, err := d.Undo(); !ok || err != nil {
		t.Fatalf("Undo after save = %v, %v", ok, err)
	}
	if got := string(content(t, d)); got != "original content" {
		t.Fatalf("after undo: %q", got)
	}
	if !d.Dirty() {
		t.Fatal("clean after undoing past the save point")
	}
}

func TestFailedSaveLeavesEverything(t *testing.T) {
	path := writeFixture(t, "keep.txt", []byte("on disk"))
	d := mustOpen(t, path)

	if err := d.Overwrite(0, []byte("in memory")); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}

	bad := filepath.Join(t.TempDir(), "missing", "dir", "out.txt")
	err := d.SaveAs(bad)
	if err == nil {
		t.Fatal("SaveAs into a missing directory succeeded")
	}
	var ioErr *storage.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("error = %v, want *storage.IOError", err)
	}

	if got, _ := os.ReadFile(path); string(got) != "on disk" {
		t.Fatalf("original file changed: %q", got)
	}
	if got := string(content(t, d)); got != "in memory" {
		t.Fatalf("buffer changed: %q", got)
	}
	if !d.Dirty() {
		t.Fatal("dirty flag lost after failed save")
	}
	if d.Path() != path {
		t.Fatalf("path changed to %q", d.Path())
	}
	if !d.CanUndo() {
		t.Fatal("journal lost after failed save")
	}
}

func TestScratchDocument(t *testing.T) {
	d := NewScratch()
	defer d.Close()

	if err := d.Insert(0, []byte("scratch")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Save(); !errors.Is(err, ErrNoPath) {
		t.Fatalf("Save = %v, want ErrNoPath", err)
	}

	path := filepath.Join(t.TempDir(), "named.txt")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if d.Path() != path {
		t.Fatalf("Path = %q, want %q", d.Path(), path)
	}
	if got, _ := os.ReadFile(path); string(got) != "scratch" {
		t.Fatalf("file = %q", got)
	}
	if d.Dirty() {
		t.Fatal("dirty after SaveAs")
	}
}

func TestReplaceSpanIsOneGroup(t *testing.T) {
	path := writeFixture(t, "group.txt", []byte("the quick brown fox"))
	d := mustOpen(t, path)

	if err := d.ReplaceSpan(buffer.Span(4, 5), []byte("slow")); err != nil {
		t.Fatalf("ReplaceSpan: %v", err)
	}
	if got := string(content(t, d)); got != "the slow brown fox" {
		t.Fatalf("after replace: %q", got)
	}

	if ok, err := d.Undo(); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if got := string(content(t, d)); got != "the quick brown fox" {
		t.Fatalf("one undo did not revert the whole replace: %q", got)
	}
	if ok, err := d.Redo(); !ok || err != nil {
		t.Fatalf("Redo = %v, %v", ok, err)
	}
	if got := string(content(t, d)); got != "the slow brown fox" {
		t.Fatalf("after redo: %q", got)
	}
}

func TestGroupCancelReverts(t *testing.T) {
	path := writeFixture(t, "cancel.txt", []byte("abcdef"))
	d := mustOpen(t, path)

	d.BeginGroup()
	if err := d.Delete(0, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Insert(0, []byte("XY")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.CancelGroup(); err != nil {
		t.Fatalf("CancelGroup: %v", err)
	}

	if got := string(content(t, d)); got != "abcdef" {
		t.Fatalf("after cancel: %q", got)
	}
	if d.CanUndo() {
		t.Fatal("cancelled group left undo history")
	}
}

func TestCursorFollowsEdits(t *testing.T) {
	path := writeFixture(t, "cursor.txt", []byte("0123456789"))
	d := mustOpen(t, path)

	d.SetCursor(5)
	if err := d.Insert(2, []byte("ab")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if got := d.Cursor().Pos; got != 7 {
		t.Fatalf("cursor after insert before it = %d, want 7", got)
	}

	if err := d.Delete(0, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := d.Cursor().Pos; got != 3 {
		t.Fatalf("cursor after delete before it = %d, want 3", got)
	}

	// Deleting the region under the cursor snaps it to the deletion
	// point.
	if err := d.Delete(1, 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := d.Cursor().Pos; got != 1 {
		t.Fatalf("cursor inside deleted range = %d, want 1", got)
	}
}

func TestCursorClampAndSelection(t *testing.T) {
	path := writeFixture(t, "sel.txt", []byte("select me"))
	d := mustOpen(t, path)

	d.SetCursor(100)
	if got := d.Cursor().Pos; got != 9 {
		t.Fatalf("cursor clamped to %d, want 9", got)
	}
	d.SetCursor(-3)
	if got := d.Cursor().Pos; got != 0 {
		t.Fatalf("cursor clamped to %d, want 0", got)
	}

	d.Select(buffer.Span(2, 4))
	if got := d.Cursor().Sel; got != buffer.Span(2, 4) {
		t.Fatalf("selection = %v", got)
	}

	// Any edit drops the selection.
	if err := d.Insert(0, []byte("x")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if d.Cursor().HasSelection() {
		t.Fatal("selection survived an edit")
	}

	d.Select(buffer.Span(8, 50))
	if got := d.Cursor().Sel; got != buffer.Span(8, 2) {
		t.Fatalf("oversized selection clamped to %v", got)
	}
	d.ClearSelection()
	if d.Cursor().HasSelection() {
		t.Fatal("ClearSelection left a selection")
	}
}

func TestOnChangeSeesReplays(t *testing.T) {
	path := writeFixture(t, "notify.txt", []byte("watch"))
	d := mustOpen(t, path)

	var seen []history.Operation
	d.OnChange(func(op history.Operation) { seen = append(seen, op) })

	if err := d.Insert(5, []byte("!")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Delete(0, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("saw %d ops, want 2", len(seen))
	}
	if seen[0].Kind != history.OpInsert || seen[1].Kind != history.OpDelete {
		t.Fatalf("ops = %v, %v", seen[0], seen[1])
	}

	// Undo replays arrive as the inverse operations.
	if ok, err := d.Undo(); !ok || err != nil {
		t.Fatalf("Undo = %v, %v", ok, err)
	}
	if len(seen) != 3 {
		t.Fatalf("saw %d ops after undo, want 3", len(seen))
	}
	undone := seen[2]
	if undone.Kind != history.OpInsert || undone.Offset != 0 || string(undone.Data) != "w" {
		t.Fatalf("undo replay op = %v", undone)
	}
}

func TestReadOnlyDocument(t *testing.T) {
	path := writeFixture(t, "ro.txt", []byte("look only"))
	d := mustOpen(t, path, WithReadOnly())

	if !d.ReadOnly() {
		t.Fatal("ReadOnly not set")
	}
	if err := d.Insert(0, []byte("x")); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Insert = %v, want ErrReadOnly", err)
	}
	if err := d.Delete(0, 1); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("Delete = %v, want ErrReadOnly", err)
	}
	if got := string(content(t, d)); got != "look only" {
		t.Fatalf("content changed: %q", got)
	}
}

func TestLargeFileRoundTrip(t *testing.T) {
	base := bytes.Repeat([]byte("0123456789abcdef"), 4096)
	path := writeFixture(t, "large.bin", base)

	// Force a streaming strategy with a tiny threshold, sized so the
	// content cannot sit resident all at once.
	d := mustOpen(t, path,
		WithThreshold(1024),
		WithChunkSize(512), WithChunkCount(2),
		WithWindowSize(64<<10), WithWindowCount(2))
	if d.Kind() == storage.KindInMemory {
		t.Fatalf("Kind = %v, want a streaming strategy", d.Kind())
	}

	if err := d.Overwrite(30000, []byte("EDITED")); err != nil {
		t.Fatalf("Overwrite: %v", err)
	}
	if err := d.Insert(0, []byte("HDR:")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := d.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := append([]byte("HDR:"), base...)
	copy(want[4+30000:], "EDITED")
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("saved bytes differ: len %d vs %d", len(got), len(want))
	}
	if got := string(content(t, d)); got != string(want) {
		t.Fatal("rebased buffer differs from saved file")
	}
}

func TestUndoCapAtDocumentLevel(t *testing.T) {
	path := writeFixture(t, "cap.txt", nil)
	d := mustOpen(t, path, WithUndoCap(2))

	for _, s := range []string{"a", "b", "c"} {
		if err := d.Insert(d.Len(), []byte(s)); err != nil {
			t.Fatalf("Insert %q: %v", s, err)
		}
	}
	undos := 0
	for {
		ok, err := d.Undo()
		if err != nil {
			t.Fatalf("Undo: %v", err)
		}
		if !ok {
			break
		}
		undos++
	}
	if undos != 2 {
		t.Fatalf("undid %d groups, want 2", undos)
	}
	if got := string(content(t, d)); got != "a" {
		t.Fatalf("oldest edit should survive eviction: %q", got)
	}
}
