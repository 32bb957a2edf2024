package history

import (
	"bytes"
	"errors"
	"testing"
)

// sliceApplier applies operations to a plain byte slice, the simplest
// possible Applier.
type sliceApplier struct {
	data []byte
	errs map[int]error // apply index -> error to inject
	n    int           // applies seen
}

func (s *sliceApplier) Apply(op Operation) error {
	s.n++
	if err, ok := s.errs[s.n]; ok {
		return err
	}
	switch op.Kind {
	case OpInsert:
		s.data = append(s.data[:op.Offset:op.Offset], append(append([]byte(nil), op.Data...), s.data[op.Offset:]...)...)
	case OpDelete:
		s.data = append(s.data[:op.Offset:op.Offset], s.data[op.Offset+int64(len(op.Data)):]...)
	case OpOverwrite:
		tail := s.data[op.Offset+int64(len(op.Old)):]
		s.data = append(s.data[:op.Offset:op.Offset], append(append([]byte(nil), op.Data...), tail...)...)
	}
	return nil
}

func (s *sliceApplier) String() string { return string(s.data) }

// applyAndRecord applies through the applier then records, the order a
// buffer uses.
func applyAndRecord(t *testing.T, j *Journal, a *sliceApplier, op Operation) {
	t.Helper()
	if err := a.Apply(op); err != nil {
		t.Fatalf("apply %v: %v", op, err)
	}
	j.Record(op)
}

func TestInvertedRoundTrip(t *testing.T) {
	ops := []Operation{
		NewInsert(3, []byte("abc")),
		NewDelete(0, []byte("xy")),
		NewOverwrite(5, []byte("old"), []byte("newer")),
	}
	for _, op := range ops {
		inv := op.Inverted()
		back := inv.Inverted()
		if back.Kind != op.Kind || back.Offset != op.Offset ||
			!bytes.Equal(back.Data, op.Data) || !bytes.Equal(back.Old, op.Old) {
			t.Errorf("double inversion of %v changed the operation: %v", op, back)
		}
		if op.LengthDelta() != -inv.LengthDelta() {
			t.Errorf("%v: inverse length delta should negate, got %d and %d",
				op, op.LengthDelta(), inv.LengthDelta())
		}
	}
}

func TestUndoRedoSequence(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	applyAndRecord(t, j, a, NewInsert(0, []byte("abc")))
	applyAndRecord(t, j, a, NewInsert(3, []byte("def")))
	if a.String() != "abcdef" {
		t.Fatalf("expected %q, got %q", "abcdef", a.String())
	}

	if ok, err := j.Undo(a); !ok || err != nil {
		t.Fatalf("first undo: ok=%v err=%v", ok, err)
	}
	if a.String() != "abc" {
		t.Errorf("expected %q after undo, got %q", "abc", a.String())
	}
	if ok, err := j.Undo(a); !ok || err != nil {
		t.Fatalf("second undo: ok=%v err=%v", ok, err)
	}
	if a.String() != "" {
		t.Errorf("expected empty buffer after two undos, got %q", a.String())
	}
	if ok, _ := j.Undo(a); ok {
		t.Error("undo on empty history should report false")
	}

	for i := 0; i < 2; i++ {
		if ok, err := j.Redo(a); !ok || err != nil {
			t.Fatalf("redo %d: ok=%v err=%v", i, ok, err)
		}
	}
	if a.String() != "abcdef" {
		t.Errorf("expected %q after two redos, got %q", "abcdef", a.String())
	}
	if ok, _ := j.Redo(a); ok {
		t.Error("redo at tip should report false")
	}
}

func TestGroupUndoneAsUnit(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	j.BeginGroup()
	applyAndRecord(t, j, a, NewInsert(0, []byte("hello ")))
	applyAndRecord(t, j, a, NewInsert(6, []byte("world")))
	j.EndGroup()

	if j.Len() != 1 {
		t.Fatalf("expected 1 group, got %d", j.Len())
	}
	if ok, err := j.Undo(a); !ok || err != nil {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if a.String() != "" {
		t.Errorf("group undo should revert both inserts, got %q", a.String())
	}
}

func TestNestedGroupsCoalesce(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	j.BeginGroup()
	applyAndRecord(t, j, a, NewInsert(0, []byte("a")))
	j.BeginGroup()
	applyAndRecord(t, j, a, NewInsert(1, []byte("b")))
	j.EndGroup()
	applyAndRecord(t, j, a, NewInsert(2, []byte("c")))
	j.EndGroup()

	if j.Len() != 1 {
		t.Fatalf("nested groups should commit as one, got %d", j.Len())
	}
	j.Undo(a)
	if a.String() != "" {
		t.Errorf("expected full revert, got %q", a.String())
	}
}

func TestEmptyGroupCommitsNothing(t *testing.T) {
	j := New(0)
	j.BeginGroup()
	j.EndGroup()
	if j.Len() != 0 {
		t.Errorf("empty group should not be recorded, got %d groups", j.Len())
	}

	j.Record(Operation{})
	if j.Len() != 0 {
		t.Errorf("zero operation should not be recorded, got %d groups", j.Len())
	}
}

func TestNewEditTruncatesRedo(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	applyAndRecord(t, j, a, NewInsert(0, []byte("one")))
	applyAndRecord(t, j, a, NewInsert(3, []byte("two")))
	j.Undo(a)

	if !j.CanRedo() {
		t.Fatal("expected redo available after undo")
	}
	applyAndRecord(t, j, a, NewInsert(3, []byte("NEW")))
	if j.CanRedo() {
		t.Error("new edit must discard redo history")
	}
	if ok, _ := j.Redo(a); ok {
		t.Error("redo after truncation should report false")
	}
	if a.String() != "oneNEW" {
		t.Errorf("expected %q, got %q", "oneNEW", a.String())
	}
}

func TestBeginGroupTruncatesRedo(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	applyAndRecord(t, j, a, NewInsert(0, []byte("x")))
	j.Undo(a)
	j.BeginGroup()
	j.EndGroup()
	if j.CanRedo() {
		t.Error("opening a group away from the tip must discard redo history")
	}
}

func TestCapEvictsOldestGroups(t *testing.T) {
	j := New(2)
	a := &sliceApplier{}

	applyAndRecord(t, j, a, NewInsert(0, []byte("a")))
	applyAndRecord(t, j, a, NewInsert(1, []byte("b")))
	applyAndRecord(t, j, a, NewInsert(2, []byte("c")))

	if j.Len() != 2 {
		t.Fatalf("expected cap of 2 groups, got %d", j.Len())
	}
	// Only the two newest edits can be undone.
	j.Undo(a)
	j.Undo(a)
	if ok, _ := j.Undo(a); ok {
		t.Error("undo past evicted history should report false")
	}
	if a.String() != "a" {
		t.Errorf("expected %q after undoing retained groups, got %q", "a", a.String())
	}
}

func TestSavedMarker(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	if j.Modified() {
		t.Error("fresh journal should not report modified")
	}
	applyAndRecord(t, j, a, NewInsert(0, []byte("a")))
	if !j.Modified() {
		t.Error("expected modified after edit")
	}
	j.MarkSaved()
	if j.Modified() {
		t.Error("expected clean after save")
	}
	applyAndRecord(t, j, a, NewInsert(1, []byte("b")))
	if !j.Modified() {
		t.Error("expected modified after post-save edit")
	}
	j.Undo(a)
	if j.Modified() {
		t.Error("undoing back to the saved cursor should report clean")
	}
	j.Redo(a)
	if !j.Modified() {
		t.Error("redoing away from the saved cursor should report modified")
	}
}

func TestSavedMarkerStrandedByTruncation(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	applyAndRecord(t, j, a, NewInsert(0, []byte("a")))
	applyAndRecord(t, j, a, NewInsert(1, []byte("b")))
	j.MarkSaved()
	j.Undo(a)
	applyAndRecord(t, j, a, NewInsert(1, []byte("c"))) // truncates the saved group

	j.Undo(a)
	if !j.Modified() {
		t.Error("saved state was truncated; journal must stay modified")
	}
}

func TestUndoFailureRollsForward(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	j.BeginGroup()
	applyAndRecord(t, j, a, NewInsert(0, []byte("aa")))
	applyAndRecord(t, j, a, NewInsert(2, []byte("bb")))
	j.EndGroup()

	// The group's undo applies two inverses; fail the second (applies
	// 3 and 4 overall).
	boom := errors.New("apply failed")
	a.errs = map[int]error{4: boom}

	ok, err := j.Undo(a)
	if ok || !errors.Is(err, boom) {
		t.Fatalf("expected undo failure, got ok=%v err=%v", ok, err)
	}
	if a.String() != "aabb" {
		t.Errorf("failed undo must roll forward to pre-undo state, got %q", a.String())
	}
	if !j.CanUndo() {
		t.Error("failed undo must leave the cursor in place")
	}
}

func TestCancelGroupRevertsPending(t *testing.T) {
	j := New(0)
	a := &sliceApplier{}

	j.BeginGroup()
	applyAndRecord(t, j, a, NewInsert(0, []byte("one")))
	applyAndRecord(t, j, a, NewInsert(3, []byte("two")))
	if err := j.CancelGroup(a); err != nil {
		t.Fatalf("CancelGroup: %v", err)
	}
	if a.String() != "" {
		t.Errorf("cancel should revert pending operations, got %q", a.String())
	}
	if j.Len() != 0 {
		t.Errorf("cancelled group must not commit, got %d groups", j.Len())
	}
	if j.Modified() {
		t.Error("cancelled group should leave journal unmodified")
	}
}
