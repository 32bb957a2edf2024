package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/bytestorm/internal/engine/search"
	"github.com/dshills/bytestorm/internal/view"
)

// parseSearchSpec reads the find-prompt syntax: an optional mode
// prefix ("w:" wildcard, "re:" regex, "x:" hex bytes; none is
// literal), with a trailing "!" requesting case folding.
func parseSearchSpec(input string) (expr string, mode search.Mode, fold bool) {
	if strings.HasSuffix(input, "!") {
		fold = true
		input = input[:len(input)-1]
	}
	switch {
	case strings.HasPrefix(input, "w:"):
		return input[2:], search.ModeWildcard, fold
	case strings.HasPrefix(input, "re:"):
		return input[3:], search.ModeRegex, fold
	case strings.HasPrefix(input, "x:"):
		return input[2:], search.ModeHex, fold
	default:
		return input, search.ModeLiteral, fold
	}
}

// specFor renders a pattern back into prompt syntax, used as the
// default text when re-prompting.
func specFor(p *search.Pattern) string {
	if p == nil {
		return ""
	}
	switch p.Mode() {
	case search.ModeWildcard:
		return "w:" + p.Expr()
	case search.ModeRegex:
		return "re:" + p.Expr()
	case search.ModeHex:
		return "x:" + p.Expr()
	default:
		return p.Expr()
	}
}

// promptPattern asks for and compiles a search pattern. ok is false
// when the user cancelled; a compile failure is reported and also
// counts as not-ok.
func (e *Editor) promptPattern(d *Document, label string) bool {
	input, ok := e.prompt(label, specFor(d.pattern))
	if !ok || input == "" {
		return false
	}
	expr, mode, fold := parseSearchSpec(input)
	var opts []search.CompileOption
	if fold {
		opts = append(opts, search.IgnoreCase())
	}
	pat, err := search.Compile(expr, mode, opts...)
	if err != nil {
		e.report(err)
		return false
	}
	d.pattern = pat
	d.current = nil
	return true
}

func (e *Editor) cmdFind(d *Document) error {
	if !e.promptPattern(d, "Find: ") {
		return nil
	}
	return e.findFrom(d, d.Eng.Cursor().Pos, true)
}

// cmdFindStep advances to the next or previous match of the active
// pattern, prompting for one when there is none yet.
func (e *Editor) cmdFindStep(d *Document, forward bool) error {
	if d.pattern == nil {
		if !e.promptPattern(d, "Find: ") {
			return nil
		}
	}
	from := d.Eng.Cursor().Pos
	if forward {
		from++
	}
	return e.findFrom(d, from, forward)
}

// findFrom locates a match and moves the cursor onto it, noting when
// the search wrapped around the end of the document.
func (e *Editor) findFrom(d *Document, from int64, forward bool) error {
	var (
		m   search.Match
		ok  bool
		err error
	)
	if forward {
		m, ok, err = search.FindNext(d.Eng, d.pattern, from)
	} else {
		m, ok, err = search.FindPrev(d.Eng, d.pattern, from)
	}
	if err != nil {
		return err
	}
	if !ok {
		e.say("Not found: %s", d.pattern)
		d.current = nil
		return nil
	}
	wrapped := (forward && m.Span.Start < from) || (!forward && m.Span.Start >= from)
	d.current = &m
	d.Eng.SetCursor(m.Span.Start)
	d.lowNibble = false
	if wrapped {
		e.say("Search wrapped")
	}
	return nil
}

// cmdReplace substitutes the match at or after the cursor, then moves
// to the following one.
func (e *Editor) cmdReplace(d *Document) error {
	if d.pattern == nil {
		if !e.promptPattern(d, "Replace: ") {
			return nil
		}
	}
	repl, ok := e.prompt("Replace with: ", string(d.repl))
	if !ok {
		return nil
	}
	d.repl = []byte(repl)

	m := d.current
	if m == nil {
		found, ok, err := search.FindNext(d.Eng, d.pattern, d.Eng.Cursor().Pos)
		if err != nil {
			return err
		}
		if !ok {
			e.say("Not found: %s", d.pattern)
			return nil
		}
		m = &found
	}
	if err := search.Replace(d.Eng, d.pattern, *m, d.repl); err != nil {
		return err
	}
	e.say("Replaced")
	return e.findFrom(d, d.Eng.Cursor().Pos, true)
}

// cmdReplaceAll substitutes every match in the document as one undo
// group.
func (e *Editor) cmdReplaceAll(d *Document) error {
	if !e.promptPattern(d, "Replace all: ") {
		return nil
	}
	repl, ok := e.prompt("Replace with: ", string(d.repl))
	if !ok {
		return nil
	}
	d.repl = []byte(repl)

	n, err := search.ReplaceAll(context.Background(), d.Eng, d.pattern, d.repl)
	if err != nil {
		return err
	}
	e.say("Replaced %d occurrence(s)", n)
	return nil
}

// cmdGoto jumps to a line in text mode or a byte offset in hex mode.
func (e *Editor) cmdGoto(d *Document) error {
	if d.Mode == ModeHex {
		input, ok := e.prompt("Goto offset: ", "")
		if !ok || input == "" {
			return nil
		}
		off, err := parseOffset(input)
		if err != nil {
			return err
		}
		if off > d.Eng.Len() {
			off = d.Eng.Len()
		}
		d.Eng.SetCursor(off)
		return nil
	}

	input, ok := e.prompt("Goto line: ", "")
	if !ok || input == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 {
		return fmt.Errorf("app: bad line number %q", input)
	}
	count, err := d.Proj.LineCount()
	if err != nil {
		return err
	}
	if n > count {
		n = count
	}
	off, err := d.Proj.OffsetAt(view.TextPos{Line: n - 1})
	if err != nil {
		return err
	}
	d.Eng.SetCursor(off)
	d.wantCol = -1
	return nil
}

// parseOffset reads a goto target: decimal digits, 0x-prefixed hex, or
// bare hex when a hex letter appears.
func parseOffset(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if rest, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseInt(rest, 16, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("app: bad offset %q", s)
		}
		return v, nil
	}
	if strings.ContainsAny(s, "abcdef") {
		v, err := strconv.ParseInt(s, 16, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("app: bad offset %q", s)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("app: bad offset %q", s)
	}
	return v, nil
}
