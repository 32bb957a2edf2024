package highlight

// Block is a construct that can span lines: block comments, triple
// quoted strings, template literals, fenced code.
type Block struct {
	Start string
	End   string
	Kind  Kind
	// Nested allows the construct to contain itself, as Rust block
	// comments do.
	Nested bool
}

// StringRule describes a single-line quoted string.
type StringRule struct {
	Quote byte
	// Escape honors backslash escapes inside the string.
	Escape bool
}

// LineRule classifies a whole line by its prefix, such as a Markdown
// heading or a C preprocessor directive.
type LineRule struct {
	Prefix string
	Kind   Kind
	// AllowIndent lets the prefix follow leading blanks.
	AllowIndent bool
}

// Language is a pure rule table. The scanner interprets it; the table
// itself holds no behavior.
type Language struct {
	Name     string
	Globs    []string
	Shebangs []string

	LineComments []string
	Blocks       []Block
	Strings      []StringRule
	LineRules    []LineRule

	Keywords  []string
	Types     []string
	Constants []string

	// Operators turns on coloring of operator and punctuation runs.
	Operators bool
	// Numbers turns on numeric literal scanning.
	Numbers bool
	// KeyStrings colors a string followed by a colon as a key, for
	// JSON-like content.
	KeyStrings bool

	words map[string]Kind
}

// define finalizes a language table, building the word lookup the
// scanner classifies identifiers with.
func define(l Language) *Language {
	l.words = make(map[string]Kind, len(l.Keywords)+len(l.Types)+len(l.Constants))
	for _, w := range l.Keywords {
		l.words[w] = KindKeyword
	}
	for _, w := range l.Types {
		l.words[w] = KindType
	}
	for _, w := range l.Constants {
		l.words[w] = KindConstant
	}
	return &l
}

// wordKind classifies an identifier, with KindIdent for anything not
// in the table.
func (l *Language) wordKind(w string) Kind {
	if k, ok := l.words[w]; ok {
		return k
	}
	return KindIdent
}
