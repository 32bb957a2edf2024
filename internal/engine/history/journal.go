package history

import (
	"fmt"
	"sync"
)

// Applier applies one operation to a buffer. The journal drives an
// Applier during undo and redo; *buffer.Buffer satisfies it.
type Applier interface {
	Apply(Operation) error
}

// unsaved marks the saved-state cursor as unreachable: the group holding
// the saved state was truncated or evicted.
const unsaved = -1

// Journal is the undo/redo history for one buffer.
//
// Methods are safe for concurrent use, though in practice the owning
// document serializes mutations anyway.
type Journal struct {
	mu      sync.Mutex
	groups  [][]Operation
	cursor  int // next redo position, 0 <= cursor <= len(groups)
	depth   int // BeginGroup nesting
	pending []Operation
	cap     int // 0 = unbounded
	savedAt int // cursor value at last save, or unsaved
}

// New returns an empty journal. cap bounds the number of retained
// groups; 0 keeps history for the lifetime of the buffer.
func New(cap int) *Journal {
	if cap < 0 {
		cap = 0
	}
	return &Journal{cap: cap}
}

// BeginGroup opens an operation group. Nested calls coalesce into the
// outermost group. Opening a group away from the journal tip discards
// redo history immediately, before any operation is recorded.
func (j *Journal) BeginGroup() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.truncate()
	j.depth++
}

// EndGroup closes the innermost group. When the outermost group closes
// with recorded operations, they commit as a single undo unit.
func (j *Journal) EndGroup() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.depth == 0 {
		return
	}
	j.depth--
	if j.depth > 0 || len(j.pending) == 0 {
		return
	}
	j.groups = append(j.groups, j.pending)
	j.pending = nil
	j.cursor = len(j.groups)
	j.evict()
}

// CancelGroup abandons the open group, applying inverses of its pending
// operations in reverse order so the buffer returns to its pre-group
// state. No group is committed. Reports the first rollback error;
// rollback continues past failures so as much state as possible is
// restored.
func (j *Journal) CancelGroup(a Applier) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.depth == 0 {
		return nil
	}
	var firstErr error
	for i := len(j.pending) - 1; i >= 0; i-- {
		if err := a.Apply(j.pending[i].Inverted()); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("history: cancel rollback: %w", err)
		}
	}
	j.pending = nil
	j.depth = 0
	return firstErr
}

// Record adds an already-applied operation to the journal. Inside a
// group the operation joins the pending group; otherwise it commits as
// a group of one. Empty operations record nothing. Recording away from
// the tip discards redo history.
func (j *Journal) Record(op Operation) {
	if op.IsZero() {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.truncate()
	if j.depth > 0 {
		j.pending = append(j.pending, op)
		return
	}
	j.groups = append(j.groups, []Operation{op})
	j.cursor = len(j.groups)
	j.evict()
}

// Undo applies the inverse of the group before the cursor, last
// operation first, and steps the cursor back. It reports false with no
// effect when there is nothing to undo or a group is open. On an apply
// failure the already-inverted operations are re-applied so the buffer
// matches the journal again, and the error surfaces.
func (j *Journal) Undo(a Applier) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.depth != 0 || j.cursor == 0 {
		return false, nil
	}
	g := j.groups[j.cursor-1]
	for i := len(g) - 1; i >= 0; i-- {
		if err := a.Apply(g[i].Inverted()); err != nil {
			for k := i + 1; k < len(g); k++ {
				_ = a.Apply(g[k]) // roll forward, best effort
			}
			return false, fmt.Errorf("history: undo: %w", err)
		}
	}
	j.cursor--
	return true, nil
}

// Redo re-applies the group at the cursor in order and steps the cursor
// forward. It reports false with no effect when the cursor is at the
// tip or a group is open. On failure the partial application is rolled
// back before the error surfaces.
func (j *Journal) Redo(a Applier) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.depth != 0 || j.cursor == len(j.groups) {
		return false, nil
	}
	g := j.groups[j.cursor]
	for i := 0; i < len(g); i++ {
		if err := a.Apply(g[i]); err != nil {
			for k := i - 1; k >= 0; k-- {
				_ = a.Apply(g[k].Inverted()) // roll back, best effort
			}
			return false, fmt.Errorf("history: redo: %w", err)
		}
	}
	j.cursor++
	return true, nil
}

// CanUndo reports whether Undo would act.
func (j *Journal) CanUndo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.depth == 0 && j.cursor > 0
}

// CanRedo reports whether Redo would act.
func (j *Journal) CanRedo() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.depth == 0 && j.cursor < len(j.groups)
}

// Len returns the number of committed groups.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.groups)
}

// MarkSaved pins the current cursor as the on-disk state. Modified
// reports false until the cursor moves away from it.
func (j *Journal) MarkSaved() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.savedAt = j.cursor
}

// Modified reports whether the buffer state at the cursor differs from
// the state at the last MarkSaved. A stranded saved marker (truncated
// or evicted) reports modified until the next save.
func (j *Journal) Modified() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cursor != j.savedAt || len(j.pending) > 0
}

// Clear drops all history and the saved marker, as on a file switch.
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.groups = nil
	j.pending = nil
	j.cursor = 0
	j.depth = 0
	j.savedAt = 0
}

// truncate discards groups at and after the cursor. Must hold mu.
func (j *Journal) truncate() {
	if j.cursor == len(j.groups) {
		return
	}
	j.groups = j.groups[:j.cursor:j.cursor]
	if j.savedAt > j.cursor {
		j.savedAt = unsaved
	}
}

// evict drops the oldest groups past the cap, shifting the cursor and
// saved marker. Must hold mu.
func (j *Journal) evict() {
	if j.cap <= 0 {
		return
	}
	for len(j.groups) > j.cap {
		j.groups = j.groups[1:]
		j.cursor--
		if j.savedAt != unsaved {
			j.savedAt--
			if j.savedAt < 0 {
				j.savedAt = unsaved
			}
		}
	}
}
