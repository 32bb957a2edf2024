// Package config loads and validates editor settings. Settings come
// from a TOML file, overridden by BYTESTORM_* environment variables; a
// missing file just means defaults. The package also persists a small
// per-file session state (last cursor position and view mode) beside
// the config file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/encoding/ianaindex"
)

// envPrefix is prepended to the upper-cased option name for
// environment overrides, e.g. BYTESTORM_TAB_WIDTH=8.
const envPrefix = "BYTESTORM_"

// appDir is the directory name under the user config root.
const appDir = "bytestorm"

// Config holds every recognized option.
type Config struct {
	// Encoding overrides the text view's decoder by IANA name. Empty
	// means UTF-8.
	Encoding string `toml:"encoding"`

	// HexRowWidth is bytes per hex row. Zero fits the row to the
	// terminal width.
	HexRowWidth int `toml:"hex_row_width"`

	// StorageThreshold is the file size in bytes at which opening
	// switches from loading whole files to mapped or chunked access.
	StorageThreshold int64 `toml:"storage_threshold"`

	// ChunkSize is the chunked strategy's read granularity in bytes.
	ChunkSize int64 `toml:"chunk_size"`

	// UndoCap bounds retained undo groups. Zero keeps history
	// unbounded.
	UndoCap int `toml:"undo_cap"`

	// TabWidth is the number of spaces a Tab inserts in text mode.
	TabWidth int `toml:"tab_width"`

	// Theme names the color theme: "dark" or "mono".
	Theme string `toml:"theme"`

	// LogFile is where diagnostics go. Empty picks a file under the
	// system temp directory.
	LogFile string `toml:"log_file"`

	// LogLevel is the minimum severity written: debug, info, warn, or
	// error.
	LogLevel string `toml:"log_level"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Encoding:         "",
		HexRowWidth:      16,
		StorageThreshold: 10 << 20,
		ChunkSize:        1 << 20,
		UndoCap:          0,
		TabWidth:         4,
		Theme:            "dark",
		LogFile:          "",
		LogLevel:         "info",
	}
}

// ValidationError reports one rejected option value.
type ValidationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s = %v: %s", e.Field, e.Value, e.Msg)
}

// Dir returns the directory config and state files live in:
// $XDG_CONFIG_HOME/bytestorm, falling back to ~/.config/bytestorm.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// Load resolves the effective configuration: defaults, then the TOML
// file at path (or the default location when path is empty), then
// environment overrides, then validation. A nonexistent file is fine;
// an unreadable or malformed one is not.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("config: %s: unknown option\n%s", path, strict.String())
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnv layers BYTESTORM_* variables over cfg. getenv is injected
// so tests can feed their own environment.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv(envPrefix + "ENCODING"); v != "" {
		cfg.Encoding = v
	}
	if v := getenv(envPrefix + "THEME"); v != "" {
		cfg.Theme = v
	}
	if v := getenv(envPrefix + "LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	for _, n := range []struct {
		name string
		dst  *int
	}{
		{"HEX_ROW_WIDTH", &cfg.HexRowWidth},
		{"UNDO_CAP", &cfg.UndoCap},
		{"TAB_WIDTH", &cfg.TabWidth},
	} {
		if v := getenv(envPrefix + n.name); v != "" {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s%s=%q: %w", envPrefix, n.name, v, err)
			}
			*n.dst = i
		}
	}
	for _, n := range []struct {
		name string
		dst  *int64
	}{
		{"STORAGE_THRESHOLD", &cfg.StorageThreshold},
		{"CHUNK_SIZE", &cfg.ChunkSize},
	} {
		if v := getenv(envPrefix + n.name); v != "" {
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("config: %s%s=%q: %w", envPrefix, n.name, v, err)
			}
			*n.dst = i
		}
	}
	return nil
}

// Validate rejects option values the editor cannot honor. The first
// offending field is reported.
func (c Config) Validate() error {
	if c.Encoding != "" {
		enc, err := ianaindex.IANA.Encoding(c.Encoding)
		if err != nil || enc == nil {
			return &ValidationError{Field: "encoding", Value: c.Encoding, Msg: "unknown encoding name"}
		}
	}
	if c.HexRowWidth < 0 {
		return &ValidationError{Field: "hex_row_width", Value: c.HexRowWidth, Msg: "must be zero or positive"}
	}
	if c.StorageThreshold < 64<<10 {
		return &ValidationError{Field: "storage_threshold", Value: c.StorageThreshold, Msg: "must be at least 65536"}
	}
	if c.ChunkSize < 4<<10 {
		return &ValidationError{Field: "chunk_size", Value: c.ChunkSize, Msg: "must be at least 4096"}
	}
	if c.UndoCap < 0 {
		return &ValidationError{Field: "undo_cap", Value: c.UndoCap, Msg: "must be zero or positive"}
	}
	if c.TabWidth < 1 || c.TabWidth > 16 {
		return &ValidationError{Field: "tab_width", Value: c.TabWidth, Msg: "must be between 1 and 16"}
	}
	switch c.Theme {
	case "dark", "mono":
	default:
		return &ValidationError{Field: "theme", Value: c.Theme, Msg: `must be "dark" or "mono"`}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log_level", Value: c.LogLevel, Msg: "must be debug, info, warn, or error"}
	}
	return nil
}
