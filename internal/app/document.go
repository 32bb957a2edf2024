package app

import (
	"path/filepath"

	"github.com/dshills/bytestorm/internal/engine"
	"github.com/dshills/bytestorm/internal/engine/buffer"
	"github.com/dshills/bytestorm/internal/engine/history"
	"github.com/dshills/bytestorm/internal/engine/search"
	"github.com/dshills/bytestorm/internal/view"
	"github.com/dshills/bytestorm/internal/view/highlight"
)

// sniffLen is how much of the head of a file the open path samples for
// binary detection and language sniffing.
const sniffLen = 8 << 10

// ViewMode selects which projection a document is showing.
type ViewMode int

const (
	// ModeText shows decoded lines.
	ModeText ViewMode = iota
	// ModeHex shows the byte grid.
	ModeHex
)

func (m ViewMode) String() string {
	if m == ModeHex {
		return "HEX"
	}
	return "TEXT"
}

// Document is one open file with its projection and highlight state.
// All content access goes through Eng; everything else here is view
// bookkeeping.
type Document struct {
	Eng  *engine.Document
	Proj *view.Projector
	Prov *highlight.Provider
	Lang *highlight.Language
	Mode ViewMode

	// Binary records the open-time content sniff; binary documents
	// start in the hex view and skip highlighting.
	Binary bool

	// topLine / topRow are the scroll anchors of the two views.
	topLine int
	topRow  int64

	// wantCol keeps the goal column during vertical movement in text
	// mode; negative means "recompute from the cursor".
	wantCol int64

	// mark anchors the selection while marking is set.
	mark    int64
	marking bool

	// lowNibble is set when the next hex digit completes the byte at
	// the cursor.
	lowNibble bool
	// asciiPane focuses hex-view typing on the ASCII panel.
	asciiPane bool

	// pattern and current carry the active search between keystrokes.
	pattern *search.Pattern
	repl    []byte
	current *search.Match
}

// openDocument builds the full per-file state over an engine document.
func openDocument(eng *engine.Document, registry *highlight.Registry, encName string, hexWidth int) (*Document, error) {
	proj, err := view.New(eng, view.WithEncoding(encName), view.WithHexWidth(hexWidth))
	if err != nil {
		return nil, err
	}

	d := &Document{
		Eng:     eng,
		Proj:    proj,
		Prov:    highlight.NewProvider(),
		wantCol: -1,
	}

	head, err := d.head()
	if err != nil {
		return nil, err
	}
	d.Binary = highlight.IsBinary(head)
	if d.Binary {
		d.Mode = ModeHex
	} else {
		d.Lang = registry.Detect(eng.Path(), head)
		d.Prov.SetLanguage(d.Lang)
	}

	eng.OnChange(d.applyChange)
	return d, nil
}

// head samples the start of the content for sniffing.
func (d *Document) head() ([]byte, error) {
	n := d.Eng.Len()
	if n > sniffLen {
		n = sniffLen
	}
	if n == 0 {
		return nil, nil
	}
	return d.Eng.Read(buffer.Span(0, n))
}

// applyChange folds one applied operation into the projection and the
// highlight cache. Registered as the engine's change callback, so it
// also runs for undo and redo replays.
func (d *Document) applyChange(op history.Operation) {
	d.Proj.Apply(op)
	if pos, err := d.Proj.TextPosAt(op.Offset); err == nil {
		d.Prov.Invalidate(pos.Line)
	} else {
		d.Prov.Invalidate(0)
	}
	// An edit invalidates any in-flight match bookkeeping.
	d.current = nil
}

// Name returns a short display name for the status line.
func (d *Document) Name() string {
	if p := d.Eng.Path(); p != "" {
		return filepath.Base(p)
	}
	return "[no name]"
}

// LangName names the detected language, empty when rendering plain.
func (d *Document) LangName() string {
	if d.Lang == nil {
		return ""
	}
	return d.Lang.Name
}

// Toggle switches between the text and hex projections. The cursor
// offset is the shared coordinate, so the position carries over
// exactly.
func (d *Document) Toggle() {
	if d.Mode == ModeText {
		d.Mode = ModeHex
	} else {
		d.Mode = ModeText
	}
	d.lowNibble = false
	d.asciiPane = false
}

// lineText fetches decoded line text for the highlight provider.
func (d *Document) lineText(i int) (string, error) {
	ln, err := d.Proj.Line(i)
	if err != nil {
		return "", err
	}
	return ln.Text, nil
}

// Tokens returns highlight tokens for one visible line. Failures give
// a plain line rather than an error; classification never blocks
// rendering.
func (d *Document) Tokens(line int) []highlight.Token {
	toks, err := d.Prov.Tokens(line, d.lineText)
	if err != nil {
		return nil
	}
	return toks
}
