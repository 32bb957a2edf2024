package highlight

import "sync"

// maxLookback bounds how far above a requested line the provider will
// rescan to recover state after invalidation. Starting clean that far
// back is the usual editor approximation; a construct spanning more
// lines than this may briefly paint wrong until scrolled.
const maxLookback = 4096

// Provider computes tokens for document lines, carrying scanner state
// across lines and caching it so repaints only rescan what changed.
type Provider struct {
	mu     sync.Mutex
	lang   *Language
	states []State // states[i] is the state entering line i
	valid  int     // states[:valid] are trustworthy
}

// NewProvider returns a provider with no language; Tokens is a no-op
// until SetLanguage.
func NewProvider() *Provider {
	return &Provider{states: []State{StateNone}, valid: 1}
}

// SetLanguage switches tables and drops all cached state.
func (pv *Provider) SetLanguage(l *Language) {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	pv.lang = l
	pv.states = pv.states[:1]
	pv.valid = 1
}

// Language returns the active table, nil when rendering plain.
func (pv *Provider) Language() *Language {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return pv.lang
}

// Invalidate marks line and everything after it dirty. Call it with
// the first line an edit touched.
func (pv *Provider) Invalidate(line int) {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	if line < 0 {
		line = 0
	}
	if line+1 < pv.valid {
		pv.valid = line + 1
	}
}

// Tokens classifies one line. get fetches line text by number; it is
// only called for lines at or above the requested one. A nil language
// yields nil tokens.
func (pv *Provider) Tokens(line int, get func(int) (string, error)) ([]Token, error) {
	pv.mu.Lock()
	defer pv.mu.Unlock()

	if pv.lang == nil || line < 0 {
		return nil, nil
	}

	start := line
	if start > pv.valid-1 {
		start = pv.valid - 1
	}
	st := StateNone
	if line-start > maxLookback {
		start = line - maxLookback
	} else {
		st = pv.states[start]
	}

	for i := start; i < line; i++ {
		text, err := get(i)
		if err != nil {
			return nil, err
		}
		_, st = ScanLine(pv.lang, text, st)
		pv.remember(i+1, st)
	}

	text, err := get(line)
	if err != nil {
		return nil, err
	}
	tokens, end := ScanLine(pv.lang, text, st)
	pv.remember(line+1, end)
	return tokens, nil
}

// remember records the state entering line i and extends the valid
// prefix when the record is contiguous with it.
func (pv *Provider) remember(i int, st State) {
	for len(pv.states) <= i {
		pv.states = append(pv.states, StateNone)
	}
	pv.states[i] = st
	if i == pv.valid {
		pv.valid = i + 1
	}
}
