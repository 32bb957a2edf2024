package app

import (
	"github.com/dshills/bytestorm/internal/engine"
	"github.com/dshills/bytestorm/internal/view/highlight"
)

// Session owns the ordered set of open documents and which one is
// active. It is plain state passed to whoever needs file access; there
// is no package-level current-file anywhere.
type Session struct {
	docs   []*Document
	active int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Add appends a document and makes it active.
func (s *Session) Add(d *Document) {
	s.docs = append(s.docs, d)
	s.active = len(s.docs) - 1
}

// Active returns the current document, nil for an empty session.
func (s *Session) Active() *Document {
	if len(s.docs) == 0 {
		return nil
	}
	return s.docs[s.active]
}

// Len returns the number of open documents.
func (s *Session) Len() int { return len(s.docs) }

// ActiveIndex returns the position of the active document.
func (s *Session) ActiveIndex() int { return s.active }

// Next cycles the active document forward.
func (s *Session) Next() {
	if len(s.docs) > 1 {
		s.active = (s.active + 1) % len(s.docs)
	}
}

// Prev cycles the active document backward.
func (s *Session) Prev() {
	if len(s.docs) > 1 {
		s.active = (s.active + len(s.docs) - 1) % len(s.docs)
	}
}

// CloseActive closes the active document and removes it. It reports
// false when the session is empty.
func (s *Session) CloseActive() bool {
	if len(s.docs) == 0 {
		return false
	}
	d := s.docs[s.active]
	_ = d.Eng.Close()
	s.docs = append(s.docs[:s.active], s.docs[s.active+1:]...)
	if s.active >= len(s.docs) && s.active > 0 {
		s.active--
	}
	return true
}

// AnyDirty reports whether any open document has unsaved changes.
func (s *Session) AnyDirty() bool {
	for _, d := range s.docs {
		if d.Eng.Dirty() {
			return true
		}
	}
	return false
}

// CloseAll closes every document, keeping the first error.
func (s *Session) CloseAll() error {
	var first error
	for _, d := range s.docs {
		if err := d.Eng.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.docs = nil
	s.active = 0
	return first
}

// Open opens path into the session. Registry and display settings come
// from the editor's configuration.
func (s *Session) Open(path string, registry *highlight.Registry, encName string, hexWidth int, engOpts ...engine.Option) (*Document, error) {
	eng, err := engine.Open(path, engOpts...)
	if err != nil {
		return nil, err
	}
	d, err := openDocument(eng, registry, encName, hexWidth)
	if err != nil {
		eng.Close()
		return nil, err
	}
	s.Add(d)
	return d, nil
}

// OpenScratch adds an unnamed empty document.
func (s *Session) OpenScratch(registry *highlight.Registry, encName string, hexWidth int, engOpts ...engine.Option) (*Document, error) {
	d, err := openDocument(engine.NewScratch(engOpts...), registry, encName, hexWidth)
	if err != nil {
		return nil, err
	}
	s.Add(d)
	return d, nil
}
