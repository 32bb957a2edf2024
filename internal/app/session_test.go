package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/bytestorm/internal/view"
	"github.com/dshills/bytestorm/internal/view/highlight"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSession(t *testing.T, paths ...string) *Session {
	t.Helper()
	s := NewSession()
	reg := highlight.NewRegistry()
	for _, p := range paths {
		if _, err := s.Open(p, reg, "", view.DefaultHexWidth); err != nil {
			t.Fatalf("open %s: %v", p, err)
		}
	}
	t.Cleanup(func() { s.CloseAll() })
	return s
}

func TestSessionEmpty(t *testing.T) {
	s := NewSession()
	if s.Active() != nil {
		t.Error("empty session should have no active document")
	}
	if s.AnyDirty() {
		t.Error("empty session cannot be dirty")
	}
	if s.CloseActive() {
		t.Error("closing in an empty session should report false")
	}
}

func TestSessionSwitching(t *testing.T) {
	a := writeFile(t, "a.txt", "aaa\n")
	b := writeFile(t, "b.txt", "bbb\n")
	c := writeFile(t, "c.txt", "ccc\n")
	s := testSession(t, a, b, c)

	if s.Len() != 3 {
		t.Fatalf("Len = %d", s.Len())
	}
	// Add makes the last opened file active.
	if got := s.Active().Name(); got != "c.txt" {
		t.Errorf("active = %q", got)
	}
	s.Next()
	if got := s.Active().Name(); got != "a.txt" {
		t.Errorf("after Next active = %q", got)
	}
	s.Prev()
	s.Prev()
	if got := s.Active().Name(); got != "b.txt" {
		t.Errorf("after Prev Prev active = %q", got)
	}
}

func TestSessionCloseActive(t *testing.T) {
	a := writeFile(t, "a.txt", "aaa\n")
	b := writeFile(t, "b.txt", "bbb\n")
	s := testSession(t, a, b)

	if !s.CloseActive() {
		t.Fatal("CloseActive returned false")
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
	if got := s.Active().Name(); got != "a.txt" {
		t.Errorf("active = %q", got)
	}
}

func TestSessionAnyDirty(t *testing.T) {
	a := writeFile(t, "a.txt", "aaa\n")
	b := writeFile(t, "b.txt", "bbb\n")
	s := testSession(t, a, b)

	if s.AnyDirty() {
		t.Fatal("fresh session should be clean")
	}
	if err := s.Active().Eng.Insert(0, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if !s.AnyDirty() {
		t.Error("session with an edited document should be dirty")
	}
}

func TestSessionScratch(t *testing.T) {
	s := NewSession()
	d, err := s.OpenScratch(highlight.NewRegistry(), "", view.DefaultHexWidth)
	if err != nil {
		t.Fatal(err)
	}
	defer s.CloseAll()

	if d.Name() != "[no name]" {
		t.Errorf("Name = %q", d.Name())
	}
	if d.Mode != ModeText {
		t.Errorf("scratch should start in text mode")
	}
	if d.Eng.Len() != 0 {
		t.Errorf("Len = %d", d.Eng.Len())
	}
}
