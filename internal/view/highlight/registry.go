package highlight

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/tidwall/match"
)

// Registry resolves which language table a document gets. Detection
// runs once per open; editing never re-detects.
type Registry struct {
	langs []*Language
}

// NewRegistry returns a registry loaded with the builtin tables.
func NewRegistry() *Registry {
	return &Registry{langs: Builtin()}
}

// Register adds a language table. Earlier tables win glob ties, so
// registrations land behind the builtins.
func (r *Registry) Register(l *Language) {
	r.langs = append(r.langs, l)
}

// ByName returns the named table, or nil.
func (r *Registry) ByName(name string) *Language {
	for _, l := range r.langs {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Detect picks a language for a file. The filename is matched against
// each table's globs first; failing that, the head of the content is
// sniffed for a shebang line and then for JSON shape. Binary content
// and unknown text both come back nil and render plain.
func (r *Registry) Detect(name string, head []byte) *Language {
	if IsBinary(head) {
		return nil
	}
	if name != "" {
		base := filepath.Base(name)
		for _, l := range r.langs {
			for _, g := range l.Globs {
				if match.Match(base, g) {
					// .h headers are claimed by C; hand them to C++
					// when the content says so.
					if l.Name == "c" && strings.HasSuffix(base, ".h") && looksLikeCPP(head) {
						if cpp := r.ByName("cpp"); cpp != nil {
							return cpp
						}
					}
					return l
				}
			}
		}
	}
	if l := r.byShebang(head); l != nil {
		return l
	}
	if looksLikeJSON(head) {
		return r.ByName("json")
	}
	return nil
}

// byShebang resolves "#!/usr/bin/env python3" and friends to a table.
func (r *Registry) byShebang(head []byte) *Language {
	if !bytes.HasPrefix(head, []byte("#!")) {
		return nil
	}
	line := head[2:]
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return nil
	}
	interp := filepath.Base(fields[0])
	if interp == "env" && len(fields) > 1 {
		interp = filepath.Base(fields[1])
	}
	for _, l := range r.langs {
		for _, s := range l.Shebangs {
			if interp == s || strings.HasPrefix(interp, s) && !isLetter(interp[len(s)]) {
				return l
			}
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// cppMarkers are constructs valid in C++ headers but not C ones.
var cppMarkers = []string{
	"class ", "template<", "template <", "namespace ", "::", "public:",
	"private:", "protected:", "#include <iostream>", "#include <vector>",
	"#include <string>",
}

// looksLikeCPP reports header content using C++-only constructs.
func looksLikeCPP(head []byte) bool {
	s := string(head)
	for _, m := range cppMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// looksLikeJSON reports content whose first significant byte opens an
// object or array.
func looksLikeJSON(head []byte) bool {
	trimmed := bytes.TrimLeft(head, " \t\r\n")
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// IsBinary reports content that should render as raw bytes: more than
// a tenth NUL, or less than four fifths printable, in the sampled
// head. Empty content is text.
func IsBinary(head []byte) bool {
	if len(head) == 0 {
		return false
	}
	var nul, printable int
	for _, b := range head {
		switch {
		case b == 0:
			nul++
		case b >= 32 && b <= 126, b == '\n', b == '\r', b == '\t':
			printable++
		}
	}
	if nul*10 > len(head) {
		return true
	}
	return printable*5 < len(head)*4
}
