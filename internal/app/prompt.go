package app

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// prompt runs a one-line input on the message row. It returns the
// entered text and whether the user confirmed (Enter) rather than
// bailed (Escape or Ctrl-C).
func (e *Editor) prompt(label, initial string) (string, bool) {
	var input strings.Builder
	input.WriteString(initial)

	for {
		e.drawPromptLine(label + input.String())
		ev := e.screen.PollEvent()
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			if res, isResize := ev.(*tcell.EventResize); isResize {
				e.width, e.height = res.Size()
				e.fitHexWidth()
				continue
			}
			if ev == nil {
				return "", false
			}
			continue
		}
		switch key.Key() {
		case tcell.KeyEnter:
			return input.String(), true
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return "", false
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			s := input.String()
			if len(s) > 0 {
				s = s[:prevBoundary(s, len(s))]
			}
			input.Reset()
			input.WriteString(s)
		case tcell.KeyCtrlU:
			input.Reset()
		case tcell.KeyRune:
			input.WriteRune(key.Rune())
		}
	}
}

// confirm asks a yes/no question on the message row.
func (e *Editor) confirm(question string) bool {
	for {
		e.drawPromptLine(question)
		ev := e.screen.PollEvent()
		if ev == nil {
			return false
		}
		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		switch key.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch key.Rune() {
			case 'y', 'Y':
				return true
			case 'n', 'N':
				return false
			}
		}
	}
}

// drawPromptLine paints the bottom row with the live prompt text and
// parks the terminal cursor after it.
func (e *Editor) drawPromptLine(text string) {
	y := e.height - 1
	if y < 0 {
		y = 0
	}
	for x := 0; x < e.width; x++ {
		e.screen.SetContent(x, y, ' ', nil, e.styles.message)
	}
	x := 0
	for _, r := range text {
		if x >= e.width {
			break
		}
		e.screen.SetContent(x, y, r, nil, e.styles.message)
		x += runeDisplayWidth(r)
	}
	e.screen.ShowCursor(x, y)
	e.screen.Show()
}
