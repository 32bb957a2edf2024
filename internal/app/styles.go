package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bytestorm/internal/view/highlight"
)

// styleSet is the theme precompiled into tcell styles, one per token
// kind plus the chrome styles the panes share.
type styleSet struct {
	base      tcell.Style
	kinds     map[highlight.Kind]tcell.Style
	lineNum   tcell.Style
	selection tcell.Style
	match     tcell.Style
	matchCur  tcell.Style
	status    tcell.Style
	message   tcell.Style
	dimmed    tcell.Style
}

func tcellColor(c highlight.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// buildStyles flattens a theme into ready-to-paint styles. Match
// backgrounds are blended from the selection color so they read as a
// lighter cousin of selected text.
func buildStyles(th *highlight.Theme) *styleSet {
	bg := tcellColor(th.Background)
	base := tcell.StyleDefault.Foreground(tcellColor(th.Foreground)).Background(bg)

	kinds := make(map[highlight.Kind]tcell.Style)
	for k := highlight.KindNone; k <= highlight.KindKey; k++ {
		s := th.StyleFor(k)
		st := tcell.StyleDefault.Foreground(tcellColor(s.FG)).Background(bg)
		if s.Bold {
			st = st.Bold(true)
		}
		if s.Italic {
			st = st.Italic(true)
		}
		if s.Underline {
			st = st.Underline(true)
		}
		kinds[k] = st
	}

	matchBG := th.Selection.Blend(th.Background, 0.35)
	return &styleSet{
		base:      base,
		kinds:     kinds,
		lineNum:   tcell.StyleDefault.Foreground(tcellColor(th.LineNum)).Background(bg),
		selection: base.Background(tcellColor(th.Selection)),
		match:     base.Background(tcellColor(matchBG)),
		matchCur:  base.Background(tcellColor(th.Selection)).Bold(true),
		status:    tcell.StyleDefault.Foreground(bg).Background(tcellColor(th.Foreground)),
		message:   base.Bold(true),
		dimmed:    base.Foreground(tcellColor(th.Dimmed())),
	}
}

// forKind returns the style for a token kind.
func (ss *styleSet) forKind(k highlight.Kind) tcell.Style {
	if st, ok := ss.kinds[k]; ok {
		return st
	}
	return ss.base
}
