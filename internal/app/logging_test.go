package app

import (
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	var buf strings.Builder
	log := NewLoggerTo(&buf, LogLevelWarn)

	log.Debug("quiet")
	log.Info("quiet too")
	log.Warn("first")
	log.Error("second %d", 2)

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("below-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN] first") {
		t.Errorf("missing warn line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] second 2") {
		t.Errorf("missing formatted error line: %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf strings.Builder
	log := NewLoggerTo(&buf, LogLevelInfo).WithComponent("engine").WithField("path", "/tmp/x")

	log.Info("opened")
	out := buf.String()
	if !strings.Contains(out, "component=engine") || !strings.Contains(out, "path=/tmp/x") {
		t.Errorf("fields missing: %q", out)
	}
}

func TestLoggerFieldsDoNotLeakBack(t *testing.T) {
	var buf strings.Builder
	base := NewLoggerTo(&buf, LogLevelInfo)
	_ = base.WithField("k", "v")

	base.Info("bare")
	if strings.Contains(buf.String(), "k=v") {
		t.Errorf("derived field leaked into parent: %q", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogLevelDebug,
		"INFO":    LogLevelInfo,
		"warning": LogLevelWarn,
		"error":   LogLevelError,
		"bogus":   LogLevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNullLoggerIsSilent(t *testing.T) {
	// Must not panic with no output writer.
	NullLogger.Error("into the void")
}
