// Package search compiles find/replace patterns and runs them against
// document content. Matching is windowed, so a pattern can walk a
// multi-gigabyte file without the file ever being loaded whole.
package search

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Mode selects how a pattern expression is interpreted.
type Mode int

const (
	// ModeLiteral matches the expression bytes exactly.
	ModeLiteral Mode = iota
	// ModeWildcard treats * as any run of bytes within a line and ? as
	// a single byte. Each wildcard captures its text for \1 backrefs.
	ModeWildcard
	// ModeRegex interprets the expression as an RE2 regular expression.
	ModeRegex
	// ModeHex matches the byte sequence written as hex digit pairs,
	// with optional spaces between pairs.
	ModeHex
)

func (m Mode) String() string {
	switch m {
	case ModeLiteral:
		return "literal"
	case ModeWildcard:
		return "wildcard"
	case ModeRegex:
		return "regex"
	case ModeHex:
		return "hex"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// PatternError reports an expression that cannot be compiled. Compile
// returns it before any document mutation can take place.
type PatternError struct {
	Expr string
	Mode Mode
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("search: invalid %s pattern %q: %v", e.Mode, e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

var (
	errEmptyPattern = errors.New("empty pattern")
	errOddHexDigits = errors.New("odd number of hex digits")
)

// matcher finds the leftmost match in data. For regex-backed matchers
// loc holds the submatch index pairs as produced by
// regexp.FindSubmatchIndex, indexed into data.
type matcher interface {
	find(data []byte) (start, end int, loc []int)
}

// byteMatcher matches an exact byte sequence. It exists because
// literal and hex patterns must match arbitrary bytes, including
// sequences that are not valid UTF-8 and so cannot be fed through the
// regexp engine.
type byteMatcher struct {
	needle []byte
}

func (m byteMatcher) find(data []byte) (int, int, []int) {
	i := bytes.Index(data, m.needle)
	if i < 0 {
		return -1, -1, nil
	}
	return i, i + len(m.needle), nil
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) find(data []byte) (int, int, []int) {
	loc := m.re.FindSubmatchIndex(data)
	if loc == nil {
		return -1, -1, nil
	}
	return loc[0], loc[1], loc
}

// Pattern is a compiled search expression, safe for concurrent use.
type Pattern struct {
	expr string
	mode Mode
	fold bool
	m    matcher
}

// CompileOption adjusts pattern compilation.
type CompileOption func(*compileConfig)

type compileConfig struct {
	fold bool
}

// IgnoreCase makes literal, wildcard, and regex patterns match
// case-insensitively. Hex patterns are unaffected.
func IgnoreCase() CompileOption {
	return func(c *compileConfig) { c.fold = true }
}

// Compile builds a Pattern from expr interpreted per mode. Invalid
// expressions come back as a *PatternError.
func Compile(expr string, mode Mode, opts ...CompileOption) (*Pattern, error) {
	var cfg compileConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Pattern{expr: expr, mode: mode, fold: cfg.fold}
	var err error
	switch mode {
	case ModeLiteral:
		switch {
		case expr == "":
			err = errEmptyPattern
		case cfg.fold:
			p.m, err = compileRegex("(?i)" + regexp.QuoteMeta(expr))
		default:
			p.m = byteMatcher{needle: []byte(expr)}
		}
	case ModeWildcard:
		if expr == "" {
			err = errEmptyPattern
		} else {
			src := wildcardToRegex(expr)
			if cfg.fold {
				src = "(?i)" + src
			}
			p.m, err = compileRegex(src)
		}
	case ModeRegex:
		if expr == "" {
			err = errEmptyPattern
		} else {
			src := expr
			if cfg.fold {
				src = "(?i)" + src
			}
			p.m, err = compileRegex(src)
		}
	case ModeHex:
		var needle []byte
		if needle, err = parseHex(expr); err == nil {
			p.m = byteMatcher{needle: needle}
		}
	default:
		err = fmt.Errorf("unknown mode %d", int(mode))
	}
	if err != nil {
		return nil, &PatternError{Expr: expr, Mode: mode, Err: err}
	}
	return p, nil
}

// Expr returns the original expression text.
func (p *Pattern) Expr() string { return p.expr }

// Mode returns the mode the pattern was compiled under.
func (p *Pattern) Mode() Mode { return p.mode }

func (p *Pattern) String() string {
	return fmt.Sprintf("%s:%q", p.mode, p.expr)
}

func compileRegex(src string) (matcher, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}
	return regexMatcher{re: re}, nil
}

// wildcardToRegex rewrites a glob-style expression into RE2 source.
// The dot metacharacter does not cross newlines, so * stays within a
// line. Wildcards become capture groups so replacements can reference
// them.
func wildcardToRegex(expr string) string {
	var b strings.Builder
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; c {
		case '*':
			b.WriteString("(.*)")
		case '?':
			b.WriteString("(.)")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// parseHex decodes an expression like "de ad be ef" into raw bytes.
// Spaces and tabs only group digits for readability.
func parseHex(expr string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, expr)
	if cleaned == "" {
		return nil, errEmptyPattern
	}
	if len(cleaned)%2 != 0 {
		return nil, errOddHexDigits
	}
	return hex.DecodeString(cleaned)
}
