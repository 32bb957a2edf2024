package app

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/search"
	"github.com/dshills/bytestorm/internal/view"
)

// visibleMatchCap bounds how many sibling matches one paint will
// collect for highlighting.
const visibleMatchCap = 512

func runeDisplayWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w < 1 {
		w = 1
	}
	return w
}

// draw paints the whole screen: body, status line, message line.
func (e *Editor) draw() {
	e.screen.Fill(' ', e.styles.base)

	d := e.sess.Active()
	if d != nil {
		if d.Mode == ModeHex {
			e.drawHex(d)
		} else {
			e.drawText(d)
		}
		e.drawStatus(d)
	}
	e.drawMessage()
	e.screen.Show()
}

// drawMessage paints the transient message row.
func (e *Editor) drawMessage() {
	y := e.height - 1
	if y < 0 {
		return
	}
	x := 0
	for _, r := range e.msg {
		if x >= e.width {
			break
		}
		e.screen.SetContent(x, y, r, nil, e.styles.message)
		x += runeDisplayWidth(r)
	}
}

// drawStatus paints the status row: name, dirty flag, document index,
// mode, language, encoding, position.
func (e *Editor) drawStatus(d *Document) {
	y := e.height - 2
	if y < 0 {
		return
	}

	dirty := ""
	if d.Eng.Dirty() {
		dirty = " [+]"
	}
	ro := ""
	if d.Eng.ReadOnly() {
		ro = " [RO]"
	}
	enc := d.Proj.Encoding()
	if enc == "" {
		enc = "utf-8"
	}
	if d.Mode == ModeText {
		if tp, err := d.Proj.TextPosAt(d.Eng.Cursor().Pos); err == nil {
			if ln, err := d.Proj.Line(tp.Line); err == nil && ln.Lossy {
				enc += "*"
			}
		}
	}
	lang := d.LangName()
	if lang == "" {
		if d.Binary {
			lang = "binary"
		} else {
			lang = "plain"
		}
	}

	var pos string
	cur := d.Eng.Cursor().Pos
	if d.Mode == ModeHex {
		pos = fmt.Sprintf("0x%08x/%d", cur, d.Eng.Len())
	} else if tp, err := d.Proj.TextPosAt(cur); err == nil {
		pos = fmt.Sprintf("%d:%d", tp.Line+1, tp.Col+1)
	}

	left := fmt.Sprintf(" %s%s%s  [%d/%d]  %s  %s  %s",
		d.Name(), dirty, ro, e.sess.ActiveIndex()+1, e.sess.Len(), d.Mode, lang, enc)
	right := pos + " "

	for x := 0; x < e.width; x++ {
		e.screen.SetContent(x, y, ' ', nil, e.styles.status)
	}
	x := 0
	for _, r := range left {
		if x >= e.width {
			break
		}
		e.screen.SetContent(x, y, r, nil, e.styles.status)
		x += runeDisplayWidth(r)
	}
	x = e.width - len(right)
	for _, r := range right {
		if x >= 0 && x < e.width {
			e.screen.SetContent(x, y, r, nil, e.styles.status)
		}
		x += runeDisplayWidth(r)
	}
}

// drawText paints the text projection with gutter, highlight tokens,
// selection, and search match styling.
func (e *Editor) drawText(d *Document) {
	body := e.bodyHeight()

	tp, err := d.Proj.TextPosAt(d.Eng.Cursor().Pos)
	if err != nil {
		return
	}
	if tp.Line < d.topLine {
		d.topLine = tp.Line
	}
	if tp.Line >= d.topLine+body {
		d.topLine = tp.Line - body + 1
	}

	gutter := len(fmt.Sprintf("%d", d.topLine+body)) + 1

	lines, err := d.Proj.Lines(d.topLine, body)
	if err != nil {
		return
	}

	var matches []buffer.ByteSpan
	if d.pattern != nil && len(lines) > 0 {
		lo := lines[0].Span.Start
		hi := lines[len(lines)-1].Span.End()
		matches = e.visibleMatches(d, lo, hi)
	}
	sel := d.Eng.Cursor().Sel

	for row, ln := range lines {
		num := fmt.Sprintf("%*d ", gutter-1, ln.Num+1)
		for i, r := range num {
			e.screen.SetContent(i, row, r, nil, e.styles.lineNum)
		}

		tokens := d.Tokens(ln.Num)
		adv, mapped := overlayAdvance(d, ln)
		ti := 0
		x := gutter
		col := 0    // byte column in the decoded text, indexes tokens
		rawCol := 0 // source byte column, anchors overlays
		for _, r := range ln.Text {
			if x >= e.width {
				break
			}
			for ti < len(tokens) && tokens[ti].End <= col {
				ti++
			}
			st := e.styles.base
			if ti < len(tokens) && tokens[ti].Start <= col {
				st = e.styles.forKind(tokens[ti].Kind)
			}
			if mapped {
				st = e.overlayStyle(st, ln.Span.Start+int64(rawCol), sel, matches, d)
			}

			if r == '\t' {
				stop := e.cfg.TabWidth - (x-gutter)%e.cfg.TabWidth
				for k := 0; k < stop && x < e.width; k++ {
					e.screen.SetContent(x, row, ' ', nil, st)
					x++
				}
			} else {
				e.screen.SetContent(x, row, r, nil, st)
				x += runeDisplayWidth(r)
			}
			col += len(string(r))
			if mapped {
				rawCol += adv(r)
			}
		}
	}

	// Terminal cursor on the active cell.
	if tp.Line >= d.topLine && tp.Line < d.topLine+body {
		x := gutter
		if ln, err := d.Proj.Line(tp.Line); err == nil {
			x += displayWidth(ln.Text, int(tp.Col), e.cfg.TabWidth)
		}
		if x < e.width {
			e.screen.ShowCursor(x, tp.Line-d.topLine)
		} else {
			e.screen.HideCursor()
		}
	}
}

// overlayAdvance maps drawn runes back to source bytes for selection
// and match shading. Native UTF-8 lines map exactly; single-byte
// encodings advance one byte per rune. When neither holds (lossy
// decodes, multi-byte legacy encodings) the mapping is unreliable, so
// per-cell overlays are withheld rather than shading the wrong cells.
func overlayAdvance(d *Document, ln view.Line) (func(rune) int, bool) {
	if d.Proj.Encoding() == "" {
		if ln.Lossy {
			return nil, false
		}
		return func(r rune) int { return len(string(r)) }, true
	}
	if ln.Lossy {
		return nil, false
	}
	raw := int(ln.Span.Len)
	if raw > 0 && len(ln.Text) < raw {
		// A CRLF terminator keeps its CR out of the display text.
		if b, err := d.Eng.Read(buffer.Span(ln.Span.End()-1, 1)); err == nil && b[0] == '\r' {
			raw--
		}
	}
	if utf8.RuneCountInString(ln.Text) == raw {
		return func(rune) int { return 1 }, true
	}
	return nil, false
}

// overlayStyle layers selection and match backgrounds over a token
// style.
func (e *Editor) overlayStyle(st tcell.Style, off int64, sel buffer.ByteSpan, matches []buffer.ByteSpan, d *Document) tcell.Style {
	if d.current != nil && d.current.Span.Contains(off) {
		return e.styles.matchCur
	}
	for _, m := range matches {
		if m.Contains(off) {
			return e.styles.match
		}
	}
	if !sel.Empty() && sel.Contains(off) {
		return e.styles.selection
	}
	return st
}

// visibleMatches collects sibling matches of the active pattern inside
// the painted byte range.
func (e *Editor) visibleMatches(d *Document, lo, hi int64) []buffer.ByteSpan {
	var out []buffer.ByteSpan
	from := lo
	for len(out) < visibleMatchCap {
		m, ok, err := search.FindNext(d.Eng, d.pattern, from)
		if err != nil || !ok {
			break
		}
		if m.Span.Start < from || m.Span.Start >= hi {
			break // wrapped past the window
		}
		out = append(out, m.Span)
		step := m.Span.Len
		if step == 0 {
			step = 1
		}
		from = m.Span.Start + step
	}
	return out
}

// drawHex paints the hex projection: offset column, hex cell grid with
// a group gap every eight bytes, and the ASCII panel.
func (e *Editor) drawHex(d *Document) {
	body := e.bodyHeight()
	w := d.Proj.HexWidth()

	hp, err := d.Proj.HexPosAt(d.Eng.Cursor().Pos)
	if err != nil {
		return
	}
	if hp.Row < d.topRow {
		d.topRow = hp.Row
	}
	if hp.Row >= d.topRow+int64(body) {
		d.topRow = hp.Row - int64(body) + 1
	}

	rows, err := d.Proj.HexRows(d.topRow, int64(body))
	if err != nil {
		return
	}

	var matches []buffer.ByteSpan
	if d.pattern != nil && len(rows) > 0 {
		lo := rows[0].Offset
		hi := rows[len(rows)-1].Offset + int64(w)
		matches = e.visibleMatches(d, lo, hi)
	}
	sel := d.Eng.Cursor().Sel

	hexX := 10 // after "%08x  "
	asciiX := hexX + w*3 + w/8

	for row, hr := range rows {
		for i, r := range fmt.Sprintf("%08x", hr.Offset) {
			e.screen.SetContent(i, row, r, nil, e.styles.lineNum)
		}
		for i, b := range hr.Bytes {
			off := hr.Offset + int64(i)
			st := e.overlayStyle(e.styles.base, off, sel, matches, d)
			x := hexX + i*3 + i/8
			pair := fmt.Sprintf("%02x", b)
			e.screen.SetContent(x, row, rune(pair[0]), nil, st)
			e.screen.SetContent(x+1, row, rune(pair[1]), nil, st)

			ast := st
			if ast == e.styles.base && (b < 0x20 || b > 0x7e) {
				ast = e.styles.dimmed
			}
			e.screen.SetContent(asciiX+i, row, rune(hr.ASCII[i]), nil, ast)
		}
	}

	// Terminal cursor on the focused pane's cell.
	if hp.Row >= d.topRow && hp.Row < d.topRow+int64(body) {
		y := int(hp.Row - d.topRow)
		if d.asciiPane {
			e.screen.ShowCursor(asciiX+hp.Col, y)
		} else {
			x := hexX + hp.Col*3 + hp.Col/8
			if d.lowNibble {
				x++
			}
			e.screen.ShowCursor(x, y)
		}
	}
}
