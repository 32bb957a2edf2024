package view

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/dshills/bytestorm/internal/engine/buffer"
)

// Line is one decoded text line.
type Line struct {
	// Num is the zero-based line number.
	Num int
	// Span covers the line's bytes without the newline terminator.
	Span buffer.ByteSpan
	// Text is the decoded content. Bytes the encoding cannot decode
	// appear as U+FFFD so the line always renders.
	Text string
	// Lossy is set when Text contains placeholders for undecodable
	// bytes.
	Lossy bool
}

// Line projects line i through the configured encoding.
func (p *Projector) Line(i int) (Line, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line(i)
}

// Lines projects count consecutive lines starting at from, stopping
// early at end of content. This is the viewport fetch: cost is
// proportional to the rows on screen, not the file.
func (p *Projector) Lines(from, count int) ([]Line, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Line, 0, count)
	for i := from; i < from+count; i++ {
		ln, err := p.line(i)
		if err == ErrNoLine {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, nil
}

func (p *Projector) line(i int) (Line, error) {
	span, err := p.idx.Span(i)
	if err != nil {
		return Line{}, err
	}
	raw, err := p.src.Read(span)
	if err != nil {
		return Line{}, err
	}
	// A trailing CR is part of the terminator on CRLF content; keep it
	// out of the display text.
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	text, lossy := p.decode(raw)
	return Line{Num: i, Span: span, Text: text, Lossy: lossy}, nil
}

// decode converts raw bytes to display text, substituting U+FFFD for
// anything the encoding rejects.
func (p *Projector) decode(raw []byte) (string, bool) {
	if p.enc == nil {
		return decodeUTF8(raw)
	}
	out, err := p.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(out) + string(utf8.RuneError), true
	}
	return string(out), bytes.ContainsRune(out, utf8.RuneError)
}

func decodeUTF8(raw []byte) (string, bool) {
	if utf8.Valid(raw) {
		return string(raw), false
	}
	var b strings.Builder
	b.Grow(len(raw))
	lossy := false
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size == 1 {
			lossy = true
		}
		b.WriteRune(r)
		raw = raw[size:]
	}
	return b.String(), lossy
}
