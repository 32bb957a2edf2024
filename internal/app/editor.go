package app

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/bytestorm/internal/config"
	"github.com/dshills/bytestorm/internal/engine"
	"github.com/dshills/bytestorm/internal/view"
	"github.com/dshills/bytestorm/internal/view/highlight"
)

// ErrQuit signals a normal user-requested exit out of Run.
var ErrQuit = errors.New("app: quit")

// Options configures a new Editor.
type Options struct {
	// Config is the resolved configuration.
	Config config.Config
	// Files are the paths to open; empty opens one scratch document.
	Files []string
	// StartHex forces every document to open in the hex view.
	StartHex bool
	// ReadOnly rejects all mutations.
	ReadOnly bool
	// Logger receives diagnostics; nil discards them.
	Logger *Logger
	// Screen overrides the tcell screen, for tests. Nil allocates the
	// real terminal.
	Screen tcell.Screen
	// State carries per-file session memory; nil disables restore.
	State *config.State
}

// Editor is the running application: one screen, one session, one
// key loop.
type Editor struct {
	screen   tcell.Screen
	cfg      config.Config
	state    *config.State
	log      *Logger
	registry *highlight.Registry
	styles   *styleSet
	sess     *Session
	readOnly bool

	width  int
	height int

	// kill is the cut/paste scratch shared across documents.
	kill []byte

	// msg is the transient message line, cleared on the next key.
	msg string

	quitting bool
}

// New builds an Editor, opening every requested file. Files that fail
// to open abort startup; an empty file list opens a scratch document.
func New(opts Options) (*Editor, error) {
	log := opts.Logger
	if log == nil {
		log = NullLogger
	}

	e := &Editor{
		cfg:      opts.Config,
		state:    opts.State,
		log:      log,
		registry: highlight.NewRegistry(),
		styles:   buildStyles(highlight.ByName(opts.Config.Theme)),
		sess:     NewSession(),
		readOnly: opts.ReadOnly,
	}

	engOpts := []engine.Option{
		engine.WithThreshold(opts.Config.StorageThreshold),
		engine.WithChunkSize(opts.Config.ChunkSize),
		engine.WithUndoCap(opts.Config.UndoCap),
	}
	if opts.ReadOnly {
		engOpts = append(engOpts, engine.WithReadOnly())
	}

	hexWidth := opts.Config.HexRowWidth
	if hexWidth == 0 {
		hexWidth = view.DefaultHexWidth
	}

	if len(opts.Files) == 0 {
		if _, err := e.sess.OpenScratch(e.registry, opts.Config.Encoding, hexWidth, engOpts...); err != nil {
			return nil, err
		}
	}
	for _, path := range opts.Files {
		d, err := e.sess.Open(path, e.registry, opts.Config.Encoding, hexWidth, engOpts...)
		if err != nil {
			e.sess.CloseAll()
			return nil, fmt.Errorf("app: open %s: %w", path, err)
		}
		if opts.StartHex {
			d.Mode = ModeHex
		}
		e.restore(d)
		log.Info("opened %s (%s, %d bytes)", path, d.Eng.Kind(), d.Eng.Len())
	}

	screen := opts.Screen
	if screen == nil {
		var err error
		screen, err = tcell.NewScreen()
		if err != nil {
			e.sess.CloseAll()
			return nil, fmt.Errorf("app: create screen: %w", err)
		}
	}
	e.screen = screen
	return e, nil
}

// restore applies remembered cursor and view mode from a previous run.
func (e *Editor) restore(d *Document) {
	if e.state == nil || d.Eng.Path() == "" {
		return
	}
	fs, ok := e.state.Lookup(d.Eng.Path())
	if !ok {
		return
	}
	d.Eng.SetCursor(fs.Offset)
	if fs.Hex && !d.Binary {
		d.Mode = ModeHex
	}
}

// remember records the active state of every document for next run.
func (e *Editor) remember() {
	if e.state == nil {
		return
	}
	for _, d := range e.sess.docs {
		if d.Eng.Path() == "" {
			continue
		}
		e.state.Set(d.Eng.Path(), config.FileState{
			Offset: d.Eng.Cursor().Pos,
			Hex:    d.Mode == ModeHex,
		})
	}
	if err := e.state.Save(); err != nil {
		e.log.Warn("save session state: %v", err)
	}
}

// Run initializes the screen and drives the event loop until quit.
// It returns ErrQuit for a normal exit.
func (e *Editor) Run() error {
	if err := e.screen.Init(); err != nil {
		return fmt.Errorf("app: init screen: %w", err)
	}
	defer e.Shutdown()

	e.width, e.height = e.screen.Size()
	e.fitHexWidth()

	for !e.quitting {
		e.draw()
		ev := e.screen.PollEvent()
		if ev == nil {
			break
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			e.width, e.height = ev.Size()
			e.fitHexWidth()
			e.screen.Sync()
		case *tcell.EventKey:
			e.msg = ""
			if err := e.handleKey(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					e.quitting = true
					break
				}
				e.report(err)
			}
		}
	}

	e.remember()
	return ErrQuit
}

// Shutdown releases the terminal and all documents. Safe to call more
// than once and from a signal handler.
func (e *Editor) Shutdown() {
	e.quitting = true
	if e.screen != nil {
		e.screen.Fini()
	}
	if err := e.sess.CloseAll(); err != nil {
		e.log.Error("close documents: %v", err)
	}
}

// fitHexWidth refits bytes-per-row when the config asks for
// terminal-width sizing.
func (e *Editor) fitHexWidth() {
	if e.cfg.HexRowWidth != 0 {
		return
	}
	// Offset column, two gutters, then 3 cells per hex pair plus one
	// ASCII cell, with a gap every eight bytes.
	avail := e.width - 12
	if avail < 32 {
		avail = 32
	}
	bytesFit := (avail * 8) / (4*8 + 1)
	for _, doc := range e.sess.docs {
		doc.Proj.SetHexWidth(bytesFit)
	}
}

// report surfaces an operation failure on the message line and in the
// log. The document is untouched by a failed action, so reporting is
// all that is left to do.
func (e *Editor) report(err error) {
	e.msg = err.Error()
	e.log.Error("%v", err)
}

// say shows a transient informational message.
func (e *Editor) say(format string, args ...any) {
	e.msg = fmt.Sprintf(format, args...)
}
