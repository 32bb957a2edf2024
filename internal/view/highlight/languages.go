package highlight

// Builtin returns the stock language tables. The slice is freshly
// allocated; callers may append their own tables.
func Builtin() []*Language {
	return []*Language{goLang, pythonLang, javascriptLang, cLang, cppLang, rustLang, shellLang, jsonLang, markdownLang}
}

var goLang = define(Language{
	Name:         "go",
	Globs:        []string{"*.go"},
	LineComments: []string{"//"},
	Blocks: []Block{
		{Start: "/*", End: "*/", Kind: KindComment},
		{Start: "`", End: "`", Kind: KindString},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: true},
	},
	Keywords: []string{
		"break", "case", "chan", "const", "continue", "default", "defer",
		"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
		"interface", "map", "package", "range", "return", "select", "struct",
		"switch", "type", "var",
	},
	Types: []string{
		"any", "bool", "byte", "complex64", "complex128", "error", "float32",
		"float64", "int", "int8", "int16", "int32", "int64", "rune", "string",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	},
	Constants: []string{"true", "false", "nil", "iota"},
	Operators: true,
	Numbers:   true,
})

var pythonLang = define(Language{
	Name:         "python",
	Globs:        []string{"*.py", "*.pyw"},
	Shebangs:     []string{"python"},
	LineComments: []string{"#"},
	Blocks: []Block{
		{Start: `"""`, End: `"""`, Kind: KindString},
		{Start: "'''", End: "'''", Kind: KindString},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: true},
	},
	Keywords: []string{
		"and", "as", "assert", "async", "await", "break", "class", "continue",
		"def", "del", "elif", "else", "except", "finally", "for", "from",
		"global", "if", "import", "in", "is", "lambda", "nonlocal", "not",
		"or", "pass", "raise", "return", "try", "while", "with", "yield",
	},
	Types: []string{
		"bool", "bytes", "dict", "float", "int", "list", "object", "set",
		"str", "tuple",
	},
	Constants: []string{"True", "False", "None"},
	Operators: true,
	Numbers:   true,
})

var javascriptLang = define(Language{
	Name:         "javascript",
	Globs:        []string{"*.js", "*.mjs", "*.cjs", "*.jsx"},
	Shebangs:     []string{"node"},
	LineComments: []string{"//"},
	Blocks: []Block{
		{Start: "/*", End: "*/", Kind: KindComment},
		{Start: "`", End: "`", Kind: KindString},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: true},
	},
	Keywords: []string{
		"async", "await", "break", "case", "catch", "class", "const",
		"continue", "debugger", "default", "delete", "do", "else", "export",
		"extends", "finally", "for", "function", "if", "import", "in",
		"instanceof", "let", "new", "of", "return", "static", "super",
		"switch", "this", "throw", "try", "typeof", "var", "void", "while",
		"with", "yield",
	},
	Types: []string{
		"Array", "Boolean", "Map", "Number", "Object", "Promise", "Set",
		"String", "Symbol",
	},
	Constants: []string{"true", "false", "null", "undefined", "NaN", "Infinity"},
	Operators: true,
	Numbers:   true,
})

var cLang = define(Language{
	Name:         "c",
	Globs:        []string{"*.c", "*.h"},
	LineComments: []string{"//"},
	Blocks: []Block{
		{Start: "/*", End: "*/", Kind: KindComment},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: true},
	},
	LineRules: []LineRule{
		{Prefix: "#", Kind: KindKeyword, AllowIndent: true},
	},
	Keywords: []string{
		"auto", "break", "case", "const", "continue", "default", "do",
		"else", "enum", "extern", "for", "goto", "if", "inline", "register",
		"restrict", "return", "sizeof", "static", "struct", "switch",
		"typedef", "union", "volatile", "while",
	},
	Types: []string{
		"char", "double", "float", "int", "long", "short", "signed",
		"unsigned", "void", "size_t", "ssize_t", "int8_t", "int16_t",
		"int32_t", "int64_t", "uint8_t", "uint16_t", "uint32_t", "uint64_t",
	},
	Constants: []string{"NULL", "true", "false"},
	Operators: true,
	Numbers:   true,
})

var cppLang = define(Language{
	Name:         "cpp",
	Globs:        []string{"*.cc", "*.cpp", "*.cxx", "*.hh", "*.hpp", "*.hxx"},
	LineComments: []string{"//"},
	Blocks: []Block{
		{Start: "/*", End: "*/", Kind: KindComment},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: true},
	},
	LineRules: []LineRule{
		{Prefix: "#", Kind: KindKeyword, AllowIndent: true},
	},
	Keywords: []string{
		"break", "case", "catch", "class", "const", "constexpr", "continue",
		"default", "delete", "do", "else", "enum", "explicit", "extern",
		"final", "for", "friend", "goto", "if", "inline", "mutable",
		"namespace", "new", "noexcept", "operator", "override", "private",
		"protected", "public", "return", "sizeof", "static", "struct",
		"switch", "template", "this", "throw", "try", "typedef", "typename",
		"union", "using", "virtual", "volatile", "while",
	},
	Types: []string{
		"auto", "bool", "char", "double", "float", "int", "long", "short",
		"signed", "unsigned", "void", "wchar_t", "size_t", "string",
	},
	Constants: []string{"NULL", "nullptr", "true", "false"},
	Operators: true,
	Numbers:   true,
})

var rustLang = define(Language{
	Name:         "rust",
	Globs:        []string{"*.rs"},
	LineComments: []string{"//"},
	Blocks: []Block{
		{Start: "/*", End: "*/", Kind: KindComment, Nested: true},
	},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
	},
	Keywords: []string{
		"as", "async", "await", "break", "const", "continue", "crate", "dyn",
		"else", "enum", "extern", "fn", "for", "if", "impl", "in", "let",
		"loop", "match", "mod", "move", "mut", "pub", "ref", "return",
		"self", "Self", "static", "struct", "super", "trait", "type",
		"unsafe", "use", "where", "while",
	},
	Types: []string{
		"bool", "char", "f32", "f64", "i8", "i16", "i32", "i64", "i128",
		"isize", "str", "u8", "u16", "u32", "u64", "u128", "usize", "Box",
		"Option", "Result", "String", "Vec",
	},
	Constants: []string{"true", "false", "None", "Some", "Ok", "Err"},
	Operators: true,
	Numbers:   true,
})

var shellLang = define(Language{
	Name:  "shell",
	Globs: []string{"*.sh", "*.bash", "*.zsh", "*.ksh", ".bashrc", ".zshrc", ".profile", ".bash_profile"},
	Shebangs: []string{
		"sh", "bash", "zsh", "ksh", "dash",
	},
	LineComments: []string{"#"},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
		{Quote: '\'', Escape: false},
	},
	Keywords: []string{
		"alias", "break", "case", "continue", "coproc", "declare", "do",
		"done", "elif", "else", "esac", "eval", "exec", "exit", "export",
		"fi", "for", "function", "if", "in", "local", "readonly", "return",
		"select", "set", "shift", "source", "then", "time", "trap", "until",
		"unset", "while",
	},
	Constants: []string{"true", "false"},
	Operators: true,
	Numbers:   true,
})

var jsonLang = define(Language{
	Name:  "json",
	Globs: []string{"*.json"},
	Strings: []StringRule{
		{Quote: '"', Escape: true},
	},
	Constants:  []string{"true", "false", "null"},
	Operators:  true,
	Numbers:    true,
	KeyStrings: true,
})

var markdownLang = define(Language{
	Name:  "markdown",
	Globs: []string{"*.md", "*.markdown"},
	Blocks: []Block{
		{Start: "```", End: "```", Kind: KindString},
	},
	Strings: []StringRule{
		{Quote: '`', Escape: false},
	},
	LineRules: []LineRule{
		{Prefix: "#", Kind: KindHeading},
		{Prefix: ">", Kind: KindQuote},
	},
})
