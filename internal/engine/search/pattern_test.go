package search

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name string
		expr string
		mode Mode
	}{
		{"empty literal", "", ModeLiteral},
		{"empty regex", "", ModeRegex},
		{"empty wildcard", "", ModeWildcard},
		{"unclosed group", "(abc", ModeRegex},
		{"dangling repeat", "*abc", ModeRegex},
		{"odd hex digits", "abc", ModeHex},
		{"bad hex digit", "zz", ModeHex},
		{"blank hex", "   ", ModeHex},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.expr, tc.mode)
			if err == nil {
				t.Fatalf("Compile(%q, %v) succeeded", tc.expr, tc.mode)
			}
			var perr *PatternError
			if !errors.As(err, &perr) {
				t.Fatalf("error = %T %v, want *PatternError", err, err)
			}
			if perr.Mode != tc.mode || perr.Expr != tc.expr {
				t.Fatalf("PatternError carries %q/%v, want %q/%v", perr.Expr, perr.Mode, tc.expr, tc.mode)
			}
		})
	}
}

func TestCompileHexSpacing(t *testing.T) {
	p := mustCompile(t, "DE AD\tbe ef", ModeHex)
	bm, ok := p.m.(byteMatcher)
	if !ok {
		t.Fatalf("hex pattern compiled to %T", p.m)
	}
	if !bytes.Equal(bm.needle, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("needle = % x", bm.needle)
	}
}

func TestWildcardTranslation(t *testing.T) {
	got := wildcardToRegex("a.b*c?d")
	want := `a\.b(.*)c(.)d`
	if got != want {
		t.Fatalf("wildcardToRegex = %q, want %q", got, want)
	}
}

func TestLiteralUsesByteMatcher(t *testing.T) {
	p := mustCompile(t, "plain", ModeLiteral)
	if _, ok := p.m.(byteMatcher); !ok {
		t.Fatalf("exact literal compiled to %T", p.m)
	}
	p = mustCompile(t, "plain", ModeLiteral, IgnoreCase())
	if _, ok := p.m.(regexMatcher); !ok {
		t.Fatalf("folded literal compiled to %T", p.m)
	}
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{
		ModeLiteral:  "literal",
		ModeWildcard: "wildcard",
		ModeRegex:    "regex",
		ModeHex:      "hex",
		Mode(42):     "Mode(42)",
	} {
		if got := mode.String(); got != want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(mode), got, want)
		}
	}
}
