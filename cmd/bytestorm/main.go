// Package main is the entry point for the bytestorm editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/bytestorm/internal/app"
	"github.com/dshills/bytestorm/internal/config"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		logPath     string
		logLevel    string
		encoding    string
		startHex    bool
		readOnly    bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&logPath, "log", "", "Path to log file")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&encoding, "encoding", "", "Text encoding override (IANA name)")
	flag.BoolVar(&startHex, "hex", false, "Open files in the hex view")
	flag.BoolVar(&readOnly, "readonly", false, "Open files read-only")
	flag.BoolVar(&readOnly, "R", false, "Open files read-only (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bytestorm - dual text/hex terminal editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: bytestorm [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bytestorm                 Open an empty buffer\n")
		fmt.Fprintf(os.Stderr, "  bytestorm file.go         Open a file\n")
		fmt.Fprintf(os.Stderr, "  bytestorm -hex core.img   Open straight into the hex view\n")
		fmt.Fprintf(os.Stderr, "  bytestorm -R /var/log/x   Browse a file read-only\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("bytestorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: bytestorm needs a terminal")
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if logPath != "" {
		cfg.LogFile = logPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, err := app.NewLogger(cfg.LogFile, app.ParseLogLevel(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()
	logger.Info("bytestorm %s starting", version)

	editor, err := app.New(app.Options{
		Config:   cfg,
		Files:    flag.Args(),
		StartHex: startHex,
		ReadOnly: readOnly,
		Logger:   logger,
		State:    config.LoadState(""),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	// Restore the terminal on SIGINT/SIGTERM.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		editor.Shutdown()
		os.Exit(1)
	}()

	if err := editor.Run(); err != nil {
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
