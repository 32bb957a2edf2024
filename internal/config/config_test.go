package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing config file should not fail: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
encoding = "ISO-8859-1"
hex_row_width = 24
tab_width = 8
theme = "mono"
undo_cap = 100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Encoding != "ISO-8859-1" {
		t.Errorf("encoding = %q", cfg.Encoding)
	}
	if cfg.HexRowWidth != 24 {
		t.Errorf("hex_row_width = %d", cfg.HexRowWidth)
	}
	if cfg.TabWidth != 8 {
		t.Errorf("tab_width = %d", cfg.TabWidth)
	}
	if cfg.Theme != "mono" {
		t.Errorf("theme = %q", cfg.Theme)
	}
	if cfg.UndoCap != 100 {
		t.Errorf("undo_cap = %d", cfg.UndoCap)
	}
	// Unset options keep their defaults.
	if cfg.StorageThreshold != Default().StorageThreshold {
		t.Errorf("storage_threshold = %d", cfg.StorageThreshold)
	}
}

func TestLoadRejectsUnknownOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("tob_width = 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown option")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = [unclosed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"BYTESTORM_THEME":         "mono",
		"BYTESTORM_HEX_ROW_WIDTH": "32",
		"BYTESTORM_CHUNK_SIZE":    "65536",
	}
	cfg := Default()
	if err := applyEnv(&cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Theme != "mono" {
		t.Errorf("theme = %q", cfg.Theme)
	}
	if cfg.HexRowWidth != 32 {
		t.Errorf("hex_row_width = %d", cfg.HexRowWidth)
	}
	if cfg.ChunkSize != 65536 {
		t.Errorf("chunk_size = %d", cfg.ChunkSize)
	}
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, func(k string) string {
		if k == "BYTESTORM_TAB_WIDTH" {
			return "four"
		}
		return ""
	})
	if err == nil {
		t.Error("expected error for non-numeric override")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown encoding", func(c *Config) { c.Encoding = "not-a-charset" }, "encoding"},
		{"negative row width", func(c *Config) { c.HexRowWidth = -1 }, "hex_row_width"},
		{"tiny threshold", func(c *Config) { c.StorageThreshold = 1024 }, "storage_threshold"},
		{"tiny chunk", func(c *Config) { c.ChunkSize = 16 }, "chunk_size"},
		{"negative undo cap", func(c *Config) { c.UndoCap = -5 }, "undo_cap"},
		{"zero tab", func(c *Config) { c.TabWidth = 0 }, "tab_width"},
		{"huge tab", func(c *Config) { c.TabWidth = 99 }, "tab_width"},
		{"unknown theme", func(c *Config) { c.Theme = "solarized" }, "theme"},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestValidAlternativeValues(t *testing.T) {
	cfg := Default()
	cfg.Encoding = "windows-1252"
	cfg.HexRowWidth = 0 // fit to terminal
	cfg.Theme = "mono"
	cfg.LogLevel = "debug"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
