package app

import (
	"errors"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bytestorm/internal/engine"
	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/view"
)

// handleKey routes one key event: global chords first, then the keys
// of the active view mode.
func (e *Editor) handleKey(ev *tcell.EventKey) error {
	d := e.sess.Active()
	if d == nil {
		return ErrQuit
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ:
		return e.cmdQuit()
	case tcell.KeyCtrlE:
		d.Toggle()
		return nil
	case tcell.KeyCtrlS:
		return e.cmdSave(d)
	case tcell.KeyCtrlO:
		return e.cmdSaveAs(d)
	case tcell.KeyCtrlZ:
		return e.cmdUndo(d)
	case tcell.KeyCtrlY:
		return e.cmdRedo(d)
	case tcell.KeyCtrlF:
		return e.cmdFind(d)
	case tcell.KeyF3:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return e.cmdFindStep(d, false)
		}
		return e.cmdFindStep(d, true)
	case tcell.KeyF15: // Shift-F3 on terminals that shift the function row
		return e.cmdFindStep(d, false)
	case tcell.KeyCtrlR:
		return e.cmdReplace(d)
	case tcell.KeyCtrlA:
		return e.cmdReplaceAll(d)
	case tcell.KeyCtrlG:
		return e.cmdGoto(d)
	case tcell.KeyCtrlW:
		return e.cmdClose()
	case tcell.KeyCtrlN:
		e.sess.Next()
		return nil
	case tcell.KeyCtrlP:
		e.sess.Prev()
		return nil
	}

	if d.Mode == ModeHex {
		return e.handleHexKey(d, ev)
	}
	return e.handleTextKey(d, ev)
}

func (e *Editor) cmdQuit() error {
	if e.sess.AnyDirty() {
		if !e.confirm("Unsaved changes. Quit anyway? (y/n)") {
			return nil
		}
	}
	return ErrQuit
}

func (e *Editor) cmdClose() error {
	d := e.sess.Active()
	if d != nil && d.Eng.Dirty() {
		if !e.confirm("Unsaved changes. Close anyway? (y/n)") {
			return nil
		}
	}
	e.sess.CloseActive()
	if e.sess.Len() == 0 {
		return ErrQuit
	}
	return nil
}

func (e *Editor) cmdSave(d *Document) error {
	err := d.Eng.Save()
	if errors.Is(err, engine.ErrNoPath) {
		return e.cmdSaveAs(d)
	}
	if err != nil {
		return err
	}
	e.say("Saved %s", d.Name())
	return nil
}

func (e *Editor) cmdSaveAs(d *Document) error {
	path, ok := e.prompt("Save as: ", d.Eng.Path())
	if !ok || path == "" {
		return nil
	}
	if err := d.Eng.SaveAs(path); err != nil {
		return err
	}
	e.say("Saved %s", path)
	return nil
}

func (e *Editor) cmdUndo(d *Document) error {
	did, err := d.Eng.Undo()
	if err != nil {
		return err
	}
	if !did {
		e.say("Nothing to undo")
	}
	return nil
}

func (e *Editor) cmdRedo(d *Document) error {
	did, err := d.Eng.Redo()
	if err != nil {
		return err
	}
	if !did {
		e.say("Nothing to redo")
	}
	return nil
}

// handleTextKey is the text-view keymap.
func (e *Editor) handleTextKey(d *Document, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyLeft:
		e.moveHoriz(d, -1)
	case tcell.KeyRight:
		e.moveHoriz(d, +1)
	case tcell.KeyUp:
		e.moveVert(d, -1)
	case tcell.KeyDown:
		e.moveVert(d, +1)
	case tcell.KeyPgUp:
		e.moveVert(d, -e.bodyHeight())
	case tcell.KeyPgDn:
		e.moveVert(d, e.bodyHeight())
	case tcell.KeyHome:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.moveTo(d, 0)
		} else {
			e.moveLineEdge(d, false)
		}
	case tcell.KeyEnd:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.moveTo(d, d.Eng.Len())
		} else {
			e.moveLineEdge(d, true)
		}
	case tcell.KeyEnter:
		return e.insert(d, []byte{'\n'})
	case tcell.KeyTab:
		pad := make([]byte, e.cfg.TabWidth)
		for i := range pad {
			pad[i] = ' '
		}
		return e.insert(d, pad)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return e.backspace(d)
	case tcell.KeyDelete:
		return e.deleteForward(d)
	case tcell.KeyCtrlSpace:
		e.toggleMark(d)
	case tcell.KeyCtrlK:
		return e.cut(d)
	case tcell.KeyCtrlU:
		return e.paste(d)
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return nil
		}
		return e.insert(d, []byte(string(ev.Rune())))
	}
	return nil
}

// handleHexKey is the hex-view keymap.
func (e *Editor) handleHexKey(d *Document, ev *tcell.EventKey) error {
	w := int64(d.Proj.HexWidth())
	pos := d.Eng.Cursor().Pos

	switch ev.Key() {
	case tcell.KeyLeft:
		e.moveTo(d, pos-1)
	case tcell.KeyRight:
		e.moveTo(d, pos+1)
	case tcell.KeyUp:
		e.moveTo(d, pos-w)
	case tcell.KeyDown:
		e.moveTo(d, pos+w)
	case tcell.KeyPgUp:
		e.moveTo(d, pos-w*int64(e.bodyHeight()))
	case tcell.KeyPgDn:
		e.moveTo(d, pos+w*int64(e.bodyHeight()))
	case tcell.KeyHome:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.moveTo(d, 0)
		} else {
			e.moveTo(d, pos-pos%w)
		}
	case tcell.KeyEnd:
		if ev.Modifiers()&tcell.ModCtrl != 0 {
			e.moveTo(d, d.Eng.Len())
		} else {
			e.moveTo(d, pos-pos%w+w-1)
		}
	case tcell.KeyTab:
		d.asciiPane = !d.asciiPane
		d.lowNibble = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.moveTo(d, pos-1)
	case tcell.KeyDelete:
		return e.deleteForward(d)
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt) != 0 {
			return nil
		}
		if d.asciiPane {
			return e.hexASCIIType(d, ev.Rune())
		}
		return e.hexNibbleType(d, ev.Rune())
	}
	return nil
}

// hexASCIIType overwrites the byte at the cursor from the ASCII panel.
func (e *Editor) hexASCIIType(d *Document, r rune) error {
	if r < 0x20 || r > 0x7e {
		return nil
	}
	pos := d.Eng.Cursor().Pos
	if err := d.Eng.Overwrite(pos, []byte{byte(r)}); err != nil {
		return err
	}
	e.moveTo(d, pos+1)
	return nil
}

// hexNibbleType applies one hex digit to the cursor byte: first keypress
// sets the high nibble, the next completes the low one and advances.
// Typing at end of content grows the document.
func (e *Editor) hexNibbleType(d *Document, r rune) error {
	digit, ok := hexDigit(r)
	if !ok {
		return nil
	}
	pos := d.Eng.Cursor().Pos

	var cur byte
	if pos < d.Eng.Len() {
		b, err := d.Eng.Read(buffer.Span(pos, 1))
		if err != nil {
			return err
		}
		cur = b[0]
	}

	var next byte
	if d.lowNibble {
		next = cur&0xf0 | digit
	} else {
		next = digit<<4 | cur&0x0f
	}
	if err := d.Eng.Overwrite(pos, []byte{next}); err != nil {
		return err
	}
	// Advance only once both nibbles are typed.
	if d.lowNibble {
		d.Eng.SetCursor(pos + 1)
		d.lowNibble = false
	} else {
		d.Eng.SetCursor(pos)
		d.lowNibble = true
	}
	return nil
}

func hexDigit(r rune) (byte, bool) {
	switch {
	case r >= '0' && r <= '9':
		return byte(r - '0'), true
	case r >= 'a' && r <= 'f':
		return byte(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return byte(r-'A') + 10, true
	}
	return 0, false
}

// insert places data at the cursor. The engine shifts the cursor past
// the insertion.
func (e *Editor) insert(d *Document, data []byte) error {
	d.marking = false
	return d.Eng.Insert(d.Eng.Cursor().Pos, data)
}

// backspace deletes the grapheme (or byte) before the cursor.
func (e *Editor) backspace(d *Document) error {
	pos := d.Eng.Cursor().Pos
	if pos == 0 {
		return nil
	}
	start := pos - 1
	if raw, err := lineHead(d, pos); err == nil && len(raw) > 0 {
		start = pos - int64(len(raw)-prevBoundary(string(raw), len(raw)))
	}
	d.marking = false
	return d.Eng.Delete(start, pos-start)
}

// lineHead reads the bytes of the cursor's line up to the cursor.
func lineHead(d *Document, pos int64) ([]byte, error) {
	tp, err := d.Proj.TextPosAt(pos)
	if err != nil {
		return nil, err
	}
	return d.Eng.Read(buffer.Span(pos-tp.Col, tp.Col))
}

// deleteForward deletes the byte span of the grapheme at the cursor,
// or one byte in hex mode.
func (e *Editor) deleteForward(d *Document) error {
	pos := d.Eng.Cursor().Pos
	if pos >= d.Eng.Len() {
		return nil
	}
	n := int64(1)
	if d.Mode == ModeText {
		if tp, err := d.Proj.TextPosAt(pos); err == nil {
			if ln, err := d.Proj.Line(tp.Line); err == nil {
				raw, err := d.Eng.Read(ln.Span)
				if err == nil && tp.Col < int64(len(raw)) {
					n = int64(nextBoundary(string(raw), int(tp.Col))) - tp.Col
				} else if tp.Col >= ln.Span.Len {
					n = 1 // the newline itself
				}
			}
		}
	}
	d.marking = false
	return d.Eng.Delete(pos, n)
}

// toggleMark starts or clears the selection anchor.
func (e *Editor) toggleMark(d *Document) {
	if d.marking {
		d.marking = false
		d.Eng.ClearSelection()
		e.say("Mark cleared")
		return
	}
	d.marking = true
	d.mark = d.Eng.Cursor().Pos
	e.say("Mark set")
}

// cut removes the selection, or the whole current line when nothing is
// selected, into the kill buffer.
func (e *Editor) cut(d *Document) error {
	span, err := e.cutSpan(d)
	if err != nil {
		return err
	}
	if span.Empty() {
		return nil
	}
	data, err := d.Eng.Read(span)
	if err != nil {
		return err
	}
	if err := d.Eng.Delete(span.Start, span.Len); err != nil {
		return err
	}
	e.kill = data
	d.marking = false
	d.Eng.ClearSelection()
	return nil
}

func (e *Editor) cutSpan(d *Document) (buffer.ByteSpan, error) {
	if d.marking {
		return selectionSpan(d), nil
	}
	tp, err := d.Proj.TextPosAt(d.Eng.Cursor().Pos)
	if err != nil {
		return buffer.ByteSpan{}, err
	}
	return d.Proj.LineSpan(tp.Line, true)
}

// paste inserts the kill buffer at the cursor.
func (e *Editor) paste(d *Document) error {
	if len(e.kill) == 0 {
		e.say("Nothing to paste")
		return nil
	}
	return e.insert(d, e.kill)
}

// selectionSpan normalizes the live mark-to-cursor range.
func selectionSpan(d *Document) buffer.ByteSpan {
	a, b := d.mark, d.Eng.Cursor().Pos
	if a > b {
		a, b = b, a
	}
	return buffer.Span(a, b-a)
}

// moveTo clamps and sets the cursor offset, updating the selection
// when a mark is live.
func (e *Editor) moveTo(d *Document, pos int64) {
	d.Eng.SetCursor(pos)
	d.lowNibble = false
	if d.marking {
		d.Eng.Select(selectionSpan(d))
	}
}

// moveHoriz steps the cursor one grapheme left or right, crossing line
// boundaries over the newline byte.
func (e *Editor) moveHoriz(d *Document, dir int) {
	pos := d.Eng.Cursor().Pos
	tp, err := d.Proj.TextPosAt(pos)
	if err != nil {
		e.moveTo(d, pos+int64(dir))
		return
	}
	ln, err := d.Proj.Line(tp.Line)
	if err != nil {
		e.moveTo(d, pos+int64(dir))
		return
	}
	raw, err := d.Eng.Read(ln.Span)
	if err != nil {
		e.moveTo(d, pos+int64(dir))
		return
	}

	if dir < 0 {
		if tp.Col == 0 {
			e.moveTo(d, pos-1) // onto the previous line's newline position
		} else {
			e.moveTo(d, ln.Span.Start+int64(prevBoundary(string(raw), int(tp.Col))))
		}
	} else {
		if tp.Col >= ln.Span.Len {
			e.moveTo(d, pos+1)
		} else {
			e.moveTo(d, ln.Span.Start+int64(nextBoundary(string(raw), int(tp.Col))))
		}
	}
	d.wantCol = -1
}

// moveVert moves the cursor by lines, keeping the display column.
func (e *Editor) moveVert(d *Document, delta int) {
	pos := d.Eng.Cursor().Pos
	tp, err := d.Proj.TextPosAt(pos)
	if err != nil {
		return
	}
	if d.wantCol < 0 {
		d.wantCol = int64(displayWidth(lineString(d, tp.Line), int(tp.Col), e.cfg.TabWidth))
	}

	target := tp.Line + delta
	if target < 0 {
		target = 0
	}
	if count, err := d.Proj.LineCount(); err == nil && target >= count {
		target = count - 1
	}
	col := int64(colForWidth(lineString(d, target), int(d.wantCol), e.cfg.TabWidth))
	off, err := d.Proj.OffsetAt(view.TextPos{Line: target, Col: col})
	if err != nil {
		return
	}
	e.moveTo(d, off)
}

// lineString reads a line's raw bytes as a string. Widths and grapheme
// boundaries are computed over the raw bytes so the resulting columns
// stay valid byte columns.
func lineString(d *Document, i int) string {
	span, err := d.Proj.LineSpan(i, false)
	if err != nil {
		return ""
	}
	raw, err := d.Eng.Read(span)
	if err != nil {
		return ""
	}
	return string(raw)
}

// moveLineEdge jumps to the start or end of the cursor's line.
func (e *Editor) moveLineEdge(d *Document, end bool) {
	tp, err := d.Proj.TextPosAt(d.Eng.Cursor().Pos)
	if err != nil {
		return
	}
	span, err := d.Proj.LineSpan(tp.Line, false)
	if err != nil {
		return
	}
	if end {
		e.moveTo(d, span.End())
	} else {
		e.moveTo(d, span.Start)
	}
	d.wantCol = -1
}

// bodyHeight is the content rows: everything but status and message
// lines.
func (e *Editor) bodyHeight() int {
	h := e.height - 2
	if h < 1 {
		h = 1
	}
	return h
}
