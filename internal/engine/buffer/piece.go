package buffer

import (
	"io"

	"github.com/dshills/bytestorm/internal/engine/storage"
)

// pieceSrc selects which byte pool a piece references.
type pieceSrc uint8

const (
	srcBase pieceSrc = iota // unmodified backing storage
	srcAdd                  // append-only add pool
)

// piece references n bytes at off within its source pool.
type piece struct {
	src pieceSrc
	off int64
	n   int64
}

// pieceOverlay layers edits over read-only base storage as an ordered
// piece list. Inserted bytes accumulate in an append-only pool; deletes
// only re-slice pieces. Base bytes are fetched on demand, so content
// far larger than memory stays on disk until read.
type pieceOverlay struct {
	base   storage.Strategy
	add    []byte
	pieces []piece
	total  int64
}

func newPieceOverlay(base storage.Strategy) *pieceOverlay {
	o := &pieceOverlay{base: base, total: base.Len()}
	if o.total > 0 {
		o.pieces = []piece{{src: srcBase, off: 0, n: o.total}}
	}
	return o
}

func (o *pieceOverlay) length() int64 { return o.total }

func (o *pieceOverlay) read(off, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, 0, n)
	end := off + n
	cur := int64(0)
	for _, p := range o.pieces {
		pEnd := cur + p.n
		if pEnd <= off {
			cur = pEnd
			continue
		}
		if cur >= end {
			break
		}
		from := max(off, cur)
		to := min(end, pEnd)
		rel := p.off + (from - cur)
		take := to - from
		if p.src == srcAdd {
			buf = append(buf, o.add[rel:rel+take]...)
		} else {
			b, err := storage.ReadRange(o.base, rel, take)
			if err != nil {
				return nil, err
			}
			buf = append(buf, b...)
		}
		cur = pEnd
	}
	return buf, nil
}

func (o *pieceOverlay) insert(off int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	addOff := int64(len(o.add))
	o.add = append(o.add, data...)
	np := piece{src: srcAdd, off: addOff, n: int64(len(data))}

	out := make([]piece, 0, len(o.pieces)+2)
	cur := int64(0)
	placed := false
	for _, p := range o.pieces {
		pEnd := cur + p.n
		if !placed && off >= cur && off < pEnd {
			if off > cur {
				out = append(out, piece{src: p.src, off: p.off, n: off - cur})
			}
			out = appendPiece(out, np)
			out = append(out, piece{src: p.src, off: p.off + (off - cur), n: pEnd - off})
			placed = true
		} else {
			out = append(out, p)
		}
		cur = pEnd
	}
	if !placed {
		out = appendPiece(out, np)
	}
	o.pieces = out
	o.total += np.n
	return nil
}

func (o *pieceOverlay) delete(off, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	// Capture the removed bytes before touching the piece list so a
	// failed base read leaves the overlay unchanged.
	removed, err := o.read(off, n)
	if err != nil {
		return nil, err
	}

	end := off + n
	out := make([]piece, 0, len(o.pieces)+1)
	cur := int64(0)
	for _, p := range o.pieces {
		pEnd := cur + p.n
		switch {
		case pEnd <= off || cur >= end:
			out = append(out, p)
		default:
			if cur < off {
				out = append(out, piece{src: p.src, off: p.off, n: off - cur})
			}
			if pEnd > end {
				out = append(out, piece{src: p.src, off: p.off + (end - cur), n: pEnd - end})
			}
		}
		cur = pEnd
	}
	o.pieces = out
	o.total -= n
	return removed, nil
}

// writeWindow bounds how much base content is materialized at once when
// streaming the buffer out.
const writeWindow = 64 << 10

func (o *pieceOverlay) writeTo(w io.Writer) (int64, error) {
	var written int64
	for _, p := range o.pieces {
		if p.src == srcAdd {
			n, err := w.Write(o.add[p.off : p.off+p.n])
			written += int64(n)
			if err != nil {
				return written, err
			}
			continue
		}
		for rel := int64(0); rel < p.n; rel += writeWindow {
			take := min(int64(writeWindow), p.n-rel)
			b, err := storage.ReadRange(o.base, p.off+rel, take)
			if err != nil {
				return written, err
			}
			n, err := w.Write(b)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// appendPiece appends an add-pool piece, merging it into the previous
// piece when the two are contiguous in the pool (sequential typing).
func appendPiece(out []piece, np piece) []piece {
	if len(out) > 0 {
		last := &out[len(out)-1]
		if last.src == srcAdd && np.src == srcAdd && last.off+last.n == np.off {
			last.n += np.n
			return out
		}
	}
	return append(out, np)
}
