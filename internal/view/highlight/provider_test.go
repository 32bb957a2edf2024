package highlight

import "testing"

// sliceSource adapts a line slice to the provider's fetch callback and
// counts how many fetches happen.
type sliceSource struct {
	lines []string
	calls int
}

func (s *sliceSource) get(i int) (string, error) {
	s.calls++
	return s.lines[i], nil
}

func TestProviderCarriesStateAcrossLines(t *testing.T) {
	src := &sliceSource{lines: []string{
		"x /* open",
		"still inside",
		"done */ y",
	}}
	pv := NewProvider()
	pv.SetLanguage(goLang)

	tokens, err := pv.Tokens(1, src.get)
	if err != nil {
		t.Fatal(err)
	}
	if got := kindAt(tokens, 3); got != KindComment {
		t.Fatalf("line inside block comment classified %v", got)
	}

	tokens, err = pv.Tokens(2, src.get)
	if err != nil {
		t.Fatal(err)
	}
	if got := kindAt(tokens, 0); got != KindComment {
		t.Fatalf("closing line start classified %v", got)
	}
	if got := kindAt(tokens, 8); got != KindIdent {
		t.Fatalf("y after close classified %v", got)
	}
}

func TestProviderCachesEntryStates(t *testing.T) {
	src := &sliceSource{lines: []string{
		"a := 1",
		"b := 2",
		"c := 3",
	}}
	pv := NewProvider()
	pv.SetLanguage(goLang)

	if _, err := pv.Tokens(2, src.get); err != nil {
		t.Fatal(err)
	}
	warm := src.calls

	// Repainting the same line needs only that line's text.
	if _, err := pv.Tokens(2, src.get); err != nil {
		t.Fatal(err)
	}
	if src.calls != warm+1 {
		t.Fatalf("repaint fetched %d lines, want 1", src.calls-warm)
	}
}

func TestProviderInvalidateRescansFromEdit(t *testing.T) {
	src := &sliceSource{lines: []string{
		"x /* open",
		"middle",
		"tail",
	}}
	pv := NewProvider()
	pv.SetLanguage(goLang)

	tokens, err := pv.Tokens(2, src.get)
	if err != nil {
		t.Fatal(err)
	}
	if got := kindAt(tokens, 0); got != KindComment {
		t.Fatalf("before edit: tail classified %v", got)
	}

	// Close the comment on the first line and invalidate from it.
	src.lines[0] = "x /* open */"
	pv.Invalidate(0)

	tokens, err = pv.Tokens(2, src.get)
	if err != nil {
		t.Fatal(err)
	}
	if got := kindAt(tokens, 0); got == KindComment {
		t.Fatal("after edit: tail still classified as comment")
	}
}

func TestProviderNoLanguage(t *testing.T) {
	src := &sliceSource{lines: []string{"anything"}}
	pv := NewProvider()
	tokens, err := pv.Tokens(0, src.get)
	if err != nil || tokens != nil {
		t.Fatalf("tokens = %v, err = %v", tokens, err)
	}
	if src.calls != 0 {
		t.Fatalf("fetched %d lines with no language", src.calls)
	}
}
