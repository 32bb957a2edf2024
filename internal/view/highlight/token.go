// Package highlight classifies document lines for syntax coloring.
// Every language is a data table interpreted by one generic scanner;
// adding a language means adding a table, not a lexer.
package highlight

import "fmt"

// Kind classifies a scanned span for styling.
type Kind uint8

const (
	KindNone Kind = iota
	KindComment
	KindString
	KindEscape
	KindNumber
	KindKeyword
	KindType
	KindConstant
	KindFunction
	KindOperator
	KindPunct
	KindIdent
	KindHeading
	KindQuote
	KindKey
)

var kindNames = [...]string{
	KindNone:     "none",
	KindComment:  "comment",
	KindString:   "string",
	KindEscape:   "escape",
	KindNumber:   "number",
	KindKeyword:  "keyword",
	KindType:     "type",
	KindConstant: "constant",
	KindFunction: "function",
	KindOperator: "operator",
	KindPunct:    "punct",
	KindIdent:    "ident",
	KindHeading:  "heading",
	KindQuote:    "quote",
	KindKey:      "key",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// KindFromName resolves a style table name back to a Kind. It reports
// false for names no table defines.
func KindFromName(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindNone, false
}

// Token is one classified span of a line. Start and End are byte
// columns within the line.
type Token struct {
	Kind  Kind
	Start int
	End   int
}

// State carries scanner context across lines, such as an open block
// comment or an unterminated multi-line string. It is comparable so
// callers can cache it per line and detect when a rescan must cascade.
type State struct {
	// Rule indexes the language's Blocks table, -1 when no construct
	// is open.
	Rule int8
	// Depth tracks nesting for constructs that nest, like Rust block
	// comments.
	Depth uint8
}

// StateNone is the neutral state a file starts in.
var StateNone = State{Rule: -1}
