package highlight

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a 24-bit display color.
type Color struct {
	R, G, B uint8
}

// ParseColor reads a hex color, with or without the leading #.
func ParseColor(s string) (Color, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("highlight: color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// Hex renders the color as #rrggbb.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Blend mixes the color toward other in Lab space, which keeps
// midpoints perceptually even; t of zero keeps c, one gives other.
func (c Color) Blend(other Color, t float64) Color {
	mixed := c.colorful().BlendLab(other.colorful(), t).Clamped()
	r, g, b := mixed.RGB255()
	return Color{R: r, G: g, B: b}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Style is how one token kind draws.
type Style struct {
	FG        Color
	Bold      bool
	Italic    bool
	Underline bool
}

// Theme maps token kinds to styles plus the handful of chrome colors
// the panes need.
type Theme struct {
	Name       string
	Foreground Color
	Background Color
	Selection  Color
	LineNum    Color
	Styles     map[Kind]Style
}

// StyleFor returns the style for a kind, falling back to the plain
// foreground.
func (t *Theme) StyleFor(k Kind) Style {
	if s, ok := t.Styles[k]; ok {
		return s
	}
	return Style{FG: t.Foreground}
}

// Dimmed returns the foreground pulled halfway toward the background,
// used for placeholders and inactive chrome.
func (t *Theme) Dimmed() Color {
	return t.Foreground.Blend(t.Background, 0.5)
}

// SetStyle overrides one kind by name with a hex color. Unknown names
// are an error so config typos surface instead of silently painting
// nothing.
func (t *Theme) SetStyle(kindName, hexColor string) error {
	k, ok := KindFromName(kindName)
	if !ok {
		return fmt.Errorf("highlight: unknown token kind %q", kindName)
	}
	c, err := ParseColor(hexColor)
	if err != nil {
		return err
	}
	if t.Styles == nil {
		t.Styles = make(map[Kind]Style)
	}
	s := t.Styles[k]
	s.FG = c
	t.Styles[k] = s
	return nil
}

func mustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ByName resolves a theme name; unknown names fall back to the
// default.
func ByName(name string) *Theme {
	if name == "mono" {
		return MonoTheme()
	}
	return DefaultTheme()
}

// MonoTheme renders without color, leaning on weight and slant only.
// It is the fallback for terminals and users that want no palette.
func MonoTheme() *Theme {
	fg := mustColor("#d0d0d0")
	return &Theme{
		Name:       "mono",
		Foreground: fg,
		Background: mustColor("#000000"),
		Selection:  mustColor("#444444"),
		LineNum:    mustColor("#808080"),
		Styles: map[Kind]Style{
			KindComment: {FG: fg, Italic: true},
			KindKeyword: {FG: fg, Bold: true},
			KindHeading: {FG: fg, Bold: true, Underline: true},
			KindString:  {FG: fg, Italic: true},
		},
	}
}

// DefaultTheme is a dark palette in the vein of the usual terminal
// editor defaults.
func DefaultTheme() *Theme {
	return &Theme{
		Name:       "storm-dark",
		Foreground: mustColor("#d4d4d4"),
		Background: mustColor("#1e1e1e"),
		Selection:  mustColor("#264f78"),
		LineNum:    mustColor("#5a5a5a"),
		Styles: map[Kind]Style{
			KindComment:  {FG: mustColor("#6a9955"), Italic: true},
			KindString:   {FG: mustColor("#ce9178")},
			KindEscape:   {FG: mustColor("#d7ba7d")},
			KindNumber:   {FG: mustColor("#b5cea8")},
			KindKeyword:  {FG: mustColor("#569cd6"), Bold: true},
			KindType:     {FG: mustColor("#4ec9b0")},
			KindConstant: {FG: mustColor("#4fc1ff")},
			KindFunction: {FG: mustColor("#dcdcaa")},
			KindOperator: {FG: mustColor("#d4d4d4")},
			KindPunct:    {FG: mustColor("#808080")},
			KindHeading:  {FG: mustColor("#569cd6"), Bold: true},
			KindQuote:    {FG: mustColor("#6a9955"), Italic: true},
			KindKey:      {FG: mustColor("#9cdcfe")},
		},
	}
}
