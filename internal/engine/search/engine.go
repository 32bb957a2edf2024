package search

import (
	"bytes"
	"context"
	"errors"

	"github.com/dshills/bytestorm/internal/engine/buffer"
)

// Reader is the read surface a search runs against. Both
// *engine.Document and *buffer.Buffer satisfy it.
type Reader interface {
	Len() int64
	Read(buffer.ByteSpan) ([]byte, error)
}

// Replacer extends Reader with the mutation surface replacement needs.
type Replacer interface {
	Reader
	ReplaceSpan(buffer.ByteSpan, []byte) error
	BeginGroup()
	EndGroup()
	CancelGroup() error
}

// Revisioned is implemented by readers that report a change counter.
// Iterators and ReplaceAll use it to detect edits made underneath them.
type Revisioned interface {
	Revision() uint64
}

// ErrInvalidated reports that the content changed while an iteration
// or replacement was in flight, or that a match went stale.
var ErrInvalidated = errors.New("search: content changed during search")

// Match is one occurrence of a pattern. Groups holds the capture-group
// spans of regex and wildcard matches in group order; a group the match
// did not use has Start -1. Other modes leave Groups nil.
type Match struct {
	Span   buffer.ByteSpan
	Groups []buffer.ByteSpan
}

// newMatch builds a Match from an absolute span and the submatch pairs
// the matcher reported, which index the haystack the span was found in.
func newMatch(span buffer.ByteSpan, loc []int) Match {
	m := Match{Span: span}
	if len(loc) <= 2 {
		return m
	}
	base := span.Start - int64(loc[0])
	m.Groups = make([]buffer.ByteSpan, 0, len(loc)/2-1)
	for i := 2; i < len(loc); i += 2 {
		if loc[i] < 0 {
			m.Groups = append(m.Groups, buffer.ByteSpan{Start: -1})
			continue
		}
		m.Groups = append(m.Groups, buffer.Span(base+int64(loc[i]), int64(loc[i+1]-loc[i])))
	}
	return m
}

// scanConfig sizes the sliding window. A match longer than overlap that
// straddles a window boundary can be missed; interactive patterns stay
// far below the limit.
type scanConfig struct {
	window  int64
	overlap int64
}

var defaultScan = scanConfig{window: 1 << 20, overlap: 64 << 10}

// scanRange reports, in offset order, every non-overlapping match
// whose start lies in [start, stopStart). Pass r.Len()+1 as stopStart
// to include a zero-width match at end of content. Window reads extend
// past stopStart so a match beginning just inside the range can
// complete. A zero-width match immediately after a non-empty one is
// suppressed. fn returns false to stop the scan.
func scanRange(ctx context.Context, r Reader, p *Pattern, cfg scanConfig, start, stopStart int64, fn func(span buffer.ByteSpan, hay []byte, loc []int) bool) error {
	total := r.Len()
	if start < 0 {
		start = 0
	}
	if stopStart > total+1 {
		stopStart = total + 1
	}

	prevEnd := int64(-1)
	prevLen := int64(-1)
	pos := start
	for pos < stopStart {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		readEnd := pos + cfg.window + cfg.overlap
		if readEnd > total {
			readEnd = total
		}
		window, err := r.Read(buffer.Span(pos, readEnd-pos))
		if err != nil {
			return err
		}
		limit := pos + cfg.window
		if limit > stopStart {
			limit = stopStart
		}

		i := 0
		for i <= len(window) {
			s, e, loc := p.m.find(window[i:])
			if s < 0 {
				break
			}
			absStart := pos + int64(i+s)
			if absStart >= limit {
				break
			}
			n := int64(e - s)
			adv := e
			if e == s {
				adv = s + 1
			}
			if n == 0 && prevLen > 0 && absStart == prevEnd {
				i += adv
				continue
			}
			if !fn(buffer.Span(absStart, n), window[i:], loc) {
				return nil
			}
			prevEnd = absStart + n
			prevLen = n
			i += adv
		}

		next := pos + cfg.window
		if prevEnd > next {
			next = prevEnd
		}
		pos = next
	}
	return nil
}

func firstMatch(ctx context.Context, r Reader, p *Pattern, cfg scanConfig, start, stopStart int64) (Match, bool, error) {
	var m Match
	found := false
	err := scanRange(ctx, r, p, cfg, start, stopStart, func(span buffer.ByteSpan, _ []byte, loc []int) bool {
		m = newMatch(span, loc)
		found = true
		return false
	})
	return m, found, err
}

func lastMatch(ctx context.Context, r Reader, p *Pattern, cfg scanConfig, start, stopStart int64) (Match, bool, error) {
	var m Match
	found := false
	err := scanRange(ctx, r, p, cfg, start, stopStart, func(span buffer.ByteSpan, _ []byte, loc []int) bool {
		m = newMatch(span, loc)
		found = true
		return true
	})
	return m, found, err
}

// FindNext returns the first match starting at or after from, wrapping
// past the end of the content exactly once. ok is false when the whole
// content holds no match.
func FindNext(r Reader, p *Pattern, from int64) (Match, bool, error) {
	if from < 0 {
		from = 0
	}
	if l := r.Len(); from > l {
		from = l
	}
	ctx := context.Background()
	m, ok, err := firstMatch(ctx, r, p, defaultScan, from, r.Len()+1)
	if ok || err != nil {
		return m, ok, err
	}
	return firstMatch(ctx, r, p, defaultScan, 0, from)
}

// FindPrev returns the last match starting before from, wrapping to the
// end of the content when there is none.
func FindPrev(r Reader, p *Pattern, from int64) (Match, bool, error) {
	if from < 0 {
		from = 0
	}
	if l := r.Len(); from > l {
		from = l
	}
	ctx := context.Background()
	m, ok, err := lastMatch(ctx, r, p, defaultScan, 0, from)
	if ok || err != nil {
		return m, ok, err
	}
	return lastMatch(ctx, r, p, defaultScan, from, r.Len()+1)
}

// Iter walks matches lazily in offset order. Windows are read on
// demand, so iterating a large file costs memory proportional to the
// window size, not the file size.
type Iter struct {
	r       Reader
	p       *Pattern
	cfg     scanConfig
	rev     uint64
	hasRev  bool
	pos     int64
	prevEnd int64
	prevLen int64
	pending []Match
}

// FindAll returns an iterator over every match from offset zero.
func FindAll(r Reader, p *Pattern) *Iter {
	it := &Iter{r: r, p: p, cfg: defaultScan, prevEnd: -1, prevLen: -1}
	if rv, ok := r.(Revisioned); ok {
		it.rev = rv.Revision()
		it.hasRev = true
	}
	return it
}

// Next returns the next match; ok is false once the content is
// exhausted. Next fails with ErrInvalidated when the content was
// edited after the iterator was created.
func (it *Iter) Next(ctx context.Context) (Match, bool, error) {
	if it.hasRev && it.r.(Revisioned).Revision() != it.rev {
		return Match{}, false, ErrInvalidated
	}
	if len(it.pending) == 0 {
		if err := it.fill(ctx); err != nil {
			return Match{}, false, err
		}
		if len(it.pending) == 0 {
			return Match{}, false, nil
		}
	}
	m := it.pending[0]
	it.pending = it.pending[1:]
	return m, true, nil
}

// fill scans forward one window at a time until it has at least one
// match or runs out of content.
func (it *Iter) fill(ctx context.Context) error {
	end := it.r.Len() + 1
	for len(it.pending) == 0 && it.pos < end {
		stop := it.pos + it.cfg.window
		if stop > end {
			stop = end
		}
		err := scanRange(ctx, it.r, it.p, it.cfg, it.pos, stop, func(span buffer.ByteSpan, _ []byte, loc []int) bool {
			if span.Len == 0 && it.prevLen > 0 && span.Start == it.prevEnd {
				return true
			}
			it.pending = append(it.pending, newMatch(span, loc))
			it.prevEnd = span.End()
			it.prevLen = span.Len
			return true
		})
		if err != nil {
			return err
		}
		next := stop
		if it.prevEnd > next {
			next = it.prevEnd
		}
		it.pos = next
	}
	return nil
}

// Count returns the number of matches in the whole content.
func Count(ctx context.Context, r Reader, p *Pattern) (int, error) {
	it := FindAll(r, p)
	n := 0
	for {
		_, ok, err := it.Next(ctx)
		if err != nil {
			return n, err
		}
		if !ok {
			return n, nil
		}
	}
}

// Replace substitutes a previously found match as a single undo group.
// In repl, \1 through \9 reference capture groups of regex and wildcard
// patterns and \\ is a literal backslash; literal and hex replacements
// are taken verbatim. Replace fails with ErrInvalidated when the match
// bytes no longer match the pattern.
func Replace(rp Replacer, p *Pattern, m Match, repl []byte) error {
	hay, err := rp.Read(m.Span)
	if err != nil {
		return err
	}
	s, e, loc := p.m.find(hay)
	if s != 0 || int64(e) != m.Span.Len {
		return ErrInvalidated
	}
	return rp.ReplaceSpan(m.Span, p.expandTemplate(hay, loc, repl))
}

// ReplaceAll substitutes every match as one undo group and returns the
// number of substitutions. Matches are collected first, then applied
// from the highest offset down so earlier spans never shift under
// later ones.
func ReplaceAll(ctx context.Context, rp Replacer, p *Pattern, repl []byte) (int, error) {
	type sub struct {
		span buffer.ByteSpan
		data []byte
	}
	var subs []sub

	rv, hasRev := rp.(Revisioned)
	var rev uint64
	if hasRev {
		rev = rv.Revision()
	}
	err := scanRange(ctx, rp, p, defaultScan, 0, rp.Len()+1, func(span buffer.ByteSpan, hay []byte, loc []int) bool {
		subs = append(subs, sub{span: span, data: p.expandTemplate(hay, loc, repl)})
		return true
	})
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}
	if hasRev && rv.Revision() != rev {
		return 0, ErrInvalidated
	}

	rp.BeginGroup()
	for i := len(subs) - 1; i >= 0; i-- {
		if err := rp.ReplaceSpan(subs[i].span, subs[i].data); err != nil {
			if cerr := rp.CancelGroup(); cerr != nil {
				return 0, errors.Join(err, cerr)
			}
			return 0, err
		}
	}
	rp.EndGroup()
	return len(subs), nil
}

// expandTemplate renders repl for one match. hay and loc come from the
// matcher; patterns without capture groups expand unknown references to
// nothing, matching regexp.Expand.
func (p *Pattern) expandTemplate(hay []byte, loc []int, repl []byte) []byte {
	rm, ok := p.m.(regexMatcher)
	if !ok || !bytes.ContainsRune(repl, '\\') {
		return append([]byte(nil), repl...)
	}
	return rm.re.Expand(nil, toExpandSyntax(repl), hay, loc)
}

// toExpandSyntax converts backslash references to the $ syntax
// regexp.Expand understands, protecting any $ already present.
func toExpandSyntax(repl []byte) []byte {
	out := make([]byte, 0, len(repl)+8)
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			out = append(out, '$', '$')
		case c == '\\' && i+1 < len(repl):
			next := repl[i+1]
			switch {
			case next >= '1' && next <= '9':
				out = append(out, '$', '{', next, '}')
				i++
			case next == '\\':
				out = append(out, '\\')
				i++
			default:
				out = append(out, c)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}
