package highlight

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ScanLine classifies one line of text, resuming from the state the
// previous line ended in. Tokens come back in column order. The
// returned state feeds the next line's scan.
func ScanLine(lang *Language, line string, st State) ([]Token, State) {
	if lang == nil {
		return nil, StateNone
	}
	var tokens []Token
	i := 0

	// Finish a construct left open by an earlier line.
	if st.Rule >= 0 && int(st.Rule) < len(lang.Blocks) {
		blk := lang.Blocks[st.Rule]
		end, next := scanBlockEnd(line, blk, st.Depth)
		if end < 0 {
			return []Token{{Kind: blk.Kind, Start: 0, End: len(line)}}, State{Rule: st.Rule, Depth: next}
		}
		tokens = append(tokens, Token{Kind: blk.Kind, Start: 0, End: end})
		i = end
		st = StateNone
	}

	// Whole-line rules only apply when the line starts outside any
	// construct.
	if i == 0 {
		for _, lr := range lang.LineRules {
			rest := line
			if lr.AllowIndent {
				rest = strings.TrimLeft(line, " \t")
			}
			if strings.HasPrefix(rest, lr.Prefix) {
				return []Token{{Kind: lr.Kind, Start: 0, End: len(line)}}, StateNone
			}
		}
	}

scan:
	for i < len(line) {
		c := line[i]

		for _, lc := range lang.LineComments {
			if strings.HasPrefix(line[i:], lc) {
				tokens = append(tokens, Token{Kind: KindComment, Start: i, End: len(line)})
				break scan
			}
		}

		if tok, next, open, ok := scanBlockStart(lang, line, i); ok {
			tokens = append(tokens, tok)
			if open.Rule >= 0 {
				return tokens, open
			}
			i = next
			continue
		}

		if matched := matchString(lang, line, i); matched != nil {
			tokens = append(tokens, *matched)
			i = matched.End
			continue
		}

		if lang.Numbers && c >= '0' && c <= '9' {
			end := scanNumber(line, i)
			tokens = append(tokens, Token{Kind: KindNumber, Start: i, End: end})
			i = end
			continue
		}

		if r, size := utf8.DecodeRuneInString(line[i:]); r == '_' || unicode.IsLetter(r) {
			end := scanWord(line, i+size)
			kind := lang.wordKind(line[i:end])
			if kind == KindIdent && end < len(line) && line[end] == '(' {
				kind = KindFunction
			}
			tokens = append(tokens, Token{Kind: kind, Start: i, End: end})
			i = end
			continue
		}

		if lang.Operators {
			if isOperatorByte(c) {
				end := i + 1
				for end < len(line) && isOperatorByte(line[end]) {
					end++
				}
				tokens = append(tokens, Token{Kind: KindOperator, Start: i, End: end})
				i = end
				continue
			}
			if isPunctByte(c) {
				tokens = append(tokens, Token{Kind: KindPunct, Start: i, End: i + 1})
				i++
				continue
			}
		}

		i++
	}
	return tokens, StateNone
}

// scanBlockStart tries every block construct at position i. When one
// opens and closes on the same line it returns the closed token; when
// it runs off the line it returns the token to end of line plus the
// state the next line resumes in.
func scanBlockStart(lang *Language, line string, i int) (Token, int, State, bool) {
	for bi, blk := range lang.Blocks {
		if !strings.HasPrefix(line[i:], blk.Start) {
			continue
		}
		inner := i + len(blk.Start)
		end, depth := scanBlockEnd(line[inner:], blk, 1)
		if end < 0 {
			return Token{Kind: blk.Kind, Start: i, End: len(line)}, len(line), State{Rule: int8(bi), Depth: depth}, true
		}
		return Token{Kind: blk.Kind, Start: i, End: inner + end}, inner + end, StateNone, true
	}
	return Token{}, 0, StateNone, false
}

// scanBlockEnd looks for the close of an open construct. It returns
// the column just past the closing delimiter, or -1 with the remaining
// depth when the construct continues past the line.
func scanBlockEnd(line string, blk Block, depth uint8) (int, uint8) {
	i := 0
	for i < len(line) {
		if blk.Nested && strings.HasPrefix(line[i:], blk.Start) {
			depth++
			i += len(blk.Start)
			continue
		}
		if strings.HasPrefix(line[i:], blk.End) {
			depth--
			i += len(blk.End)
			if depth == 0 {
				return i, 0
			}
			continue
		}
		i++
	}
	return -1, depth
}

// matchString scans a quoted string starting at i, if any. An
// unterminated string colors to end of line but does not cross it.
func matchString(lang *Language, line string, i int) *Token {
	for _, sr := range lang.Strings {
		if line[i] != sr.Quote {
			continue
		}
		j := i + 1
		for j < len(line) {
			switch {
			case sr.Escape && line[j] == '\\' && j+1 < len(line):
				j += 2
			case line[j] == sr.Quote:
				j++
				kind := KindString
				if lang.KeyStrings && nextIsColon(line, j) {
					kind = KindKey
				}
				return &Token{Kind: kind, Start: i, End: j}
			default:
				j++
			}
		}
		return &Token{Kind: KindString, Start: i, End: len(line)}
	}
	return nil
}

func nextIsColon(line string, i int) bool {
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t':
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}

// scanNumber consumes a numeric literal loosely: prefixes, digits,
// separators, a decimal point, exponents, and type suffixes all ride
// along.
func scanNumber(line string, i int) int {
	j := i + 1
	for j < len(line) {
		c := line[j]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '.':
			j++
		case (c == '+' || c == '-') && (line[j-1] == 'e' || line[j-1] == 'E'):
			j++
		default:
			return j
		}
	}
	return j
}

func scanWord(line string, i int) int {
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return i
		}
		i += size
	}
	return i
}

func isOperatorByte(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '&', '|', '^', '~', '?', '$', '@':
		return true
	}
	return false
}

func isPunctByte(c byte) bool {
	switch c {
	case '(', ')', '[', ']', '{', '}', ';', ',', ':', '.':
		return true
	}
	return false
}
