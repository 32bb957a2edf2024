package view

import (
	"bytes"
	"errors"
	"sort"

	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
)

// Source is the content a projection reads from. *engine.Document
// satisfies it.
type Source interface {
	Len() int64
	Read(buffer.ByteSpan) ([]byte, error)
}

// ErrNoLine reports a line number outside the content.
var ErrNoLine = errors.New("view: line out of range")

// indexStep is how many bytes one lazy extension pass scans.
const indexStep = 256 << 10

// LineIndex maps line numbers to byte offsets. Lines end at 0x0A
// regardless of the display encoding, so the index lives purely in the
// byte domain. It is built lazily from the front and spliced in place
// as edits arrive; opening a huge file never triggers a full scan.
type LineIndex struct {
	src     Source
	starts  []int64 // starts[i] is the offset of line i; starts[0] == 0
	indexed int64   // length of the scanned prefix
}

// NewLineIndex returns an index over src with nothing scanned yet.
func NewLineIndex(src Source) *LineIndex {
	return &LineIndex{src: src, starts: []int64{0}}
}

// IndexedLines returns how many line starts are known without doing
// any further IO.
func (ix *LineIndex) IndexedLines() int { return len(ix.starts) }

// LineCount scans any remaining content and returns the total number
// of lines. Content ending in a newline has a final empty line.
func (ix *LineIndex) LineCount() (int, error) {
	if err := ix.extend(ix.src.Len()); err != nil {
		return 0, err
	}
	return len(ix.starts), nil
}

// Start returns the byte offset where line i begins.
func (ix *LineIndex) Start(i int) (int64, error) {
	if err := ix.ensureLine(i); err != nil {
		return 0, err
	}
	if i < 0 || i >= len(ix.starts) {
		return 0, ErrNoLine
	}
	return ix.starts[i], nil
}

// Span returns the bytes of line i without its newline terminator.
func (ix *LineIndex) Span(i int) (buffer.ByteSpan, error) {
	if err := ix.ensureLine(i + 1); err != nil {
		return buffer.ByteSpan{}, err
	}
	if i < 0 || i >= len(ix.starts) {
		return buffer.ByteSpan{}, ErrNoLine
	}
	start := ix.starts[i]
	if i+1 < len(ix.starts) {
		return buffer.Span(start, ix.starts[i+1]-1-start), nil
	}
	return buffer.Span(start, ix.src.Len()-start), nil
}

// LineForOffset returns the line containing off. Offset Len() belongs
// to the final line so an end-of-content cursor still maps.
func (ix *LineIndex) LineForOffset(off int64) (int, error) {
	if off < 0 || off > ix.src.Len() {
		return 0, ErrNoLine
	}
	if err := ix.extend(off + 1); err != nil {
		return 0, err
	}
	i := sort.Search(len(ix.starts), func(k int) bool { return ix.starts[k] > off })
	return i - 1, nil
}

// ensureLine extends the scanned prefix until line i is known or the
// content is exhausted.
func (ix *LineIndex) ensureLine(i int) error {
	total := ix.src.Len()
	for len(ix.starts) <= i && ix.indexed < total {
		if err := ix.extend(ix.indexed + indexStep); err != nil {
			return err
		}
	}
	return nil
}

// extend scans forward until at least target bytes are indexed.
func (ix *LineIndex) extend(target int64) error {
	total := ix.src.Len()
	if target > total {
		target = total
	}
	for ix.indexed < target {
		n := int64(indexStep)
		if rest := total - ix.indexed; n > rest {
			n = rest
		}
		window, err := ix.src.Read(buffer.Span(ix.indexed, n))
		if err != nil {
			return err
		}
		for p := 0; ; {
			j := bytes.IndexByte(window[p:], '\n')
			if j < 0 {
				break
			}
			ix.starts = append(ix.starts, ix.indexed+int64(p+j)+1)
			p += j + 1
		}
		ix.indexed += int64(len(window))
	}
	return nil
}

// apply splices an edit into the indexed prefix. Line starts at or
// before the edit stay put; later ones shift, and newlines inside
// inserted data add starts. Edits beyond the scanned prefix need no
// work at all.
func (ix *LineIndex) apply(op history.Operation) {
	switch op.Kind {
	case history.OpInsert:
		ix.applyInsert(op.Offset, op.Data)
	case history.OpDelete:
		ix.applyDelete(op.Offset, int64(len(op.Data)))
	case history.OpOverwrite:
		ix.applyDelete(op.Offset, int64(len(op.Old)))
		ix.applyInsert(op.Offset, op.Data)
	}
}

func (ix *LineIndex) applyInsert(off int64, data []byte) {
	n := int64(len(data))
	if n == 0 || off > ix.indexed {
		return
	}

	i := sort.Search(len(ix.starts), func(k int) bool { return ix.starts[k] > off })
	var mid []int64
	for p := 0; ; {
		j := bytes.IndexByte(data[p:], '\n')
		if j < 0 {
			break
		}
		mid = append(mid, off+int64(p+j)+1)
		p += j + 1
	}

	rebuilt := make([]int64, 0, len(ix.starts)+len(mid))
	rebuilt = append(rebuilt, ix.starts[:i]...)
	rebuilt = append(rebuilt, mid...)
	for _, s := range ix.starts[i:] {
		rebuilt = append(rebuilt, s+n)
	}
	ix.starts = rebuilt
	ix.indexed += n
}

func (ix *LineIndex) applyDelete(off, n int64) {
	if n == 0 || off >= ix.indexed {
		return
	}
	end := off + n

	// Keep starts at or before off, drop those whose newline fell in
	// the removed range, shift the rest back.
	i := sort.Search(len(ix.starts), func(k int) bool { return ix.starts[k] > off })
	j := sort.Search(len(ix.starts), func(k int) bool { return ix.starts[k] > end })
	rebuilt := make([]int64, 0, i+len(ix.starts)-j)
	rebuilt = append(rebuilt, ix.starts[:i]...)
	for _, s := range ix.starts[j:] {
		rebuilt = append(rebuilt, s-n)
	}
	ix.starts = rebuilt

	if end <= ix.indexed {
		ix.indexed -= n
	} else {
		ix.indexed = off
	}
}
