// Package history records buffer operations and replays them for
// undo/redo.
//
// The journal is a linear sequence of operation groups plus a cursor
// marking the next redo position. A group is one or more operations
// applied as a single user-visible action (one keystroke, one paste, one
// replace-all). Undo applies a group's inverses in reverse order and
// moves the cursor back; redo re-applies the group and moves it forward.
// Recording a new operation while the cursor sits before the end
// discards everything at and after it, the standard linear-history rule.
//
// Every Operation carries the bytes needed to construct its exact
// inverse, so a group followed by its inverse group restores the buffer
// byte for byte. The journal never touches a buffer directly; callers
// hand it an Applier and the journal drives it, rolling back partial
// application on failure so the history always reflects true buffer
// state.
//
// History is unbounded by default. A cap evicts the oldest groups,
// which can strand the saved-state marker; the document then reports
// itself modified until the next save.
package history
