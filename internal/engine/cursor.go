package engine

import (
	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
)

// Cursor is a byte position in the document plus an optional selection.
// An empty Sel span means no selection.
type Cursor struct {
	Pos int64
	Sel buffer.ByteSpan
}

// HasSelection reports whether a non-empty selection is active.
func (c Cursor) HasSelection() bool { return !c.Sel.Empty() }

// adjust shifts the cursor for an applied operation and drops the
// selection, which no longer describes stable content after an edit.
func (c Cursor) adjust(op history.Operation, bufLen int64) Cursor {
	pos := c.Pos
	switch op.Kind {
	case history.OpInsert:
		if pos >= op.Offset {
			pos += int64(len(op.Data))
		}
	case history.OpDelete:
		end := op.Offset + int64(len(op.Data))
		switch {
		case pos > end:
			pos -= int64(len(op.Data))
		case pos > op.Offset:
			pos = op.Offset
		}
	case history.OpOverwrite:
		oldEnd := op.Offset + int64(len(op.Old))
		newEnd := op.Offset + int64(len(op.Data))
		switch {
		case pos > oldEnd:
			pos += newEnd - oldEnd
		case pos > op.Offset && pos > newEnd:
			pos = newEnd
		}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > bufLen {
		pos = bufLen
	}
	return Cursor{Pos: pos}
}
