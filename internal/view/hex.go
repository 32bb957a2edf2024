package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/bytestorm/internal/engine/buffer"
)

// ErrNoRow reports a hex row outside the content.
var ErrNoRow = errors.New("view: hex row out of range")

// DefaultHexWidth is the bytes-per-row default for the hex view.
const DefaultHexWidth = 16

// NormalizeHexWidth clamps w to a multiple of eight, at least eight,
// so group gaps always line up.
func NormalizeHexWidth(w int) int {
	if w < 8 {
		return 8
	}
	return w - w%8
}

// HexRow is one row of the hex view.
type HexRow struct {
	// Offset is the byte offset of the first cell.
	Offset int64
	// Bytes holds up to the row width of content.
	Bytes []byte
	// ASCII is the printable projection: bytes 32..126 as themselves,
	// everything else as '.'.
	ASCII string
}

// HexWidth returns the configured bytes per row.
func (p *Projector) HexWidth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hexWidth
}

// SetHexWidth changes the bytes per row, normalized to a multiple of
// eight.
func (p *Projector) SetHexWidth(w int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hexWidth = NormalizeHexWidth(w)
}

// HexRowCount returns the number of rows at the current width. The
// count always includes the row holding the end-of-content position,
// so content filling its last row exactly still has a trailing empty
// row for the cursor, and empty content has one.
func (p *Projector) HexRowCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src.Len()/int64(p.hexWidth) + 1
}

// HexRow projects row i of the hex view.
func (p *Projector) HexRow(i int64) (HexRow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hexRow(i)
}

// HexRows projects count consecutive rows starting at from, stopping
// early at end of content.
func (p *Projector) HexRows(from, count int64) ([]HexRow, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]HexRow, 0, count)
	for i := from; i < from+count; i++ {
		row, err := p.hexRow(i)
		if err == ErrNoRow {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (p *Projector) hexRow(i int64) (HexRow, error) {
	w := int64(p.hexWidth)
	total := p.src.Len()
	if i < 0 || i > total/w {
		return HexRow{}, ErrNoRow
	}
	off := i * w
	n := w
	if rest := total - off; n > rest {
		n = rest
	}
	raw, err := p.src.Read(buffer.Span(off, n))
	if err != nil {
		return HexRow{}, err
	}

	ascii := make([]byte, len(raw))
	for k, b := range raw {
		if b >= 32 && b <= 126 {
			ascii[k] = b
		} else {
			ascii[k] = '.'
		}
	}
	return HexRow{Offset: off, Bytes: raw, ASCII: string(ascii)}, nil
}

// Format renders the row the way the hex pane draws it: an eight-digit
// offset, hex pairs with a wider gap every eight bytes, and the ASCII
// gutter. Short rows are padded so gutters align.
func (r HexRow) Format(width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%08x  ", r.Offset)
	for i := 0; i < width; i++ {
		if i > 0 && i%8 == 0 {
			b.WriteByte(' ')
		}
		if i < len(r.Bytes) {
			fmt.Fprintf(&b, "%02x ", r.Bytes[i])
		} else {
			b.WriteString("   ")
		}
	}
	b.WriteByte(' ')
	b.WriteByte('|')
	b.WriteString(r.ASCII)
	b.WriteString(strings.Repeat(" ", width-len(r.ASCII)))
	b.WriteByte('|')
	return b.String()
}
