package app

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// nextBoundary returns the byte column after the grapheme cluster
// starting at col, so Right moves over a full user-perceived character
// instead of landing inside a combining sequence.
func nextBoundary(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	g := uniseg.NewGraphemes(line[col:])
	if g.Next() {
		_, to := g.Positions()
		return col + to
	}
	return col + 1
}

// prevBoundary returns the byte column of the grapheme cluster before
// col.
func prevBoundary(line string, col int) int {
	if col <= 0 {
		return 0
	}
	if col > len(line) {
		col = len(line)
	}
	prev := 0
	g := uniseg.NewGraphemes(line[:col])
	for g.Next() {
		from, _ := g.Positions()
		prev = from
	}
	return prev
}

// displayWidth computes the screen cells taken by the first col bytes
// of line, expanding tabs to the next tabWidth stop.
func displayWidth(line string, col int, tabWidth int) int {
	if col > len(line) {
		col = len(line)
	}
	x := 0
	g := uniseg.NewGraphemes(line[:col])
	for g.Next() {
		if g.Str() == "\t" {
			x += tabWidth - x%tabWidth
			continue
		}
		x += runewidth.StringWidth(g.Str())
	}
	return x
}

// colForWidth inverts displayWidth: the byte column whose display
// position is closest to, without exceeding, x cells.
func colForWidth(line string, x int, tabWidth int) int {
	pos := 0
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		var w int
		if g.Str() == "\t" {
			w = tabWidth - pos%tabWidth
		} else {
			w = runewidth.StringWidth(g.Str())
		}
		if pos+w > x {
			return col
		}
		pos += w
		from, to := g.Positions()
		col += to - from
	}
	return col
}
