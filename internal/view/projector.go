// Package view projects document bytes into the two presentations the
// editor draws: decoded text lines and hex rows. Both read through the
// same Source, so what the text pane shows and what the hex pane shows
// are always the same bytes. Coordinates on either side convert to
// byte offsets and back without loss.
package view

import (
	"fmt"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
)

// Projector owns the line index and the projection settings for one
// document.
type Projector struct {
	mu       sync.Mutex
	src      Source
	idx      *LineIndex
	enc      encoding.Encoding // nil means native UTF-8
	encName  string
	hexWidth int
}

// Option adjusts a Projector.
type Option func(*Projector) error

// WithEncoding overrides the display encoding by IANA name, for
// example "windows-1252" or "ISO-8859-1". An empty name keeps UTF-8.
func WithEncoding(name string) Option {
	return func(p *Projector) error {
		if name == "" || name == "utf-8" || name == "UTF-8" {
			p.enc, p.encName = nil, ""
			return nil
		}
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil {
			return fmt.Errorf("view: encoding %q: %w", name, err)
		}
		if enc == nil {
			return fmt.Errorf("view: encoding %q has no decoder", name)
		}
		p.enc, p.encName = enc, name
		return nil
	}
}

// WithHexWidth sets the initial bytes per hex row.
func WithHexWidth(w int) Option {
	return func(p *Projector) error {
		p.hexWidth = NormalizeHexWidth(w)
		return nil
	}
}

// New builds a Projector over src.
func New(src Source, opts ...Option) (*Projector, error) {
	p := &Projector{
		src:      src,
		idx:      NewLineIndex(src),
		hexWidth: DefaultHexWidth,
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Encoding returns the active display encoding name, empty for UTF-8.
func (p *Projector) Encoding() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encName
}

// Apply folds an edit into the line index. Wire it to
// Document.OnChange so the index tracks every mutation, including undo
// and redo replays.
func (p *Projector) Apply(op history.Operation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idx.apply(op)
}

// LineCount scans any remaining content and returns the total line
// count.
func (p *Projector) LineCount() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx.LineCount()
}

// IndexedLines returns how many line starts are known without IO.
func (p *Projector) IndexedLines() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx.IndexedLines()
}

// LineSpan returns the byte span of line i, without its newline
// terminator by default, or including it when withEOL is set. The last
// line never has a terminator to include.
func (p *Projector) LineSpan(i int, withEOL bool) (buffer.ByteSpan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	span, err := p.idx.Span(i)
	if err != nil {
		return buffer.ByteSpan{}, err
	}
	if withEOL && span.End() < p.src.Len() {
		span.Len++
	}
	return span, nil
}

// TextPos is a text-view coordinate. Col counts bytes from the line
// start, so every position maps back to exactly one offset even on
// lines holding multi-byte or undecodable sequences.
type TextPos struct {
	Line int
	Col  int64
}

// HexPos is a hex-view coordinate at the current row width.
type HexPos struct {
	Row int64
	Col int
}

// TextPosAt converts a byte offset to a text coordinate. Offset Len()
// maps to the end of the final line.
func (p *Projector) TextPosAt(off int64) (TextPos, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line, err := p.idx.LineForOffset(off)
	if err != nil {
		return TextPos{}, err
	}
	start := p.idx.starts[line]
	return TextPos{Line: line, Col: off - start}, nil
}

// OffsetAt converts a text coordinate back to a byte offset. Columns
// past the end of the line clamp to the line's last position.
func (p *Projector) OffsetAt(pos TextPos) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	span, err := p.idx.Span(pos.Line)
	if err != nil {
		return 0, err
	}
	col := pos.Col
	if col < 0 {
		col = 0
	}
	if col > span.Len {
		col = span.Len
	}
	return span.Start + col, nil
}

// HexPosAt converts a byte offset to a hex coordinate.
func (p *Projector) HexPosAt(off int64) (HexPos, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if off < 0 || off > p.src.Len() {
		return HexPos{}, ErrNoRow
	}
	w := int64(p.hexWidth)
	return HexPos{Row: off / w, Col: int(off % w)}, nil
}

// OffsetAtHex converts a hex coordinate back to a byte offset, clamped
// to the end of content.
func (p *Projector) OffsetAtHex(pos HexPos) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pos.Row < 0 || pos.Col < 0 || pos.Col >= p.hexWidth {
		return 0, ErrNoRow
	}
	off := pos.Row*int64(p.hexWidth) + int64(pos.Col)
	if l := p.src.Len(); off > l {
		off = l
	}
	return off, nil
}
