package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "warn", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Info("hidden message")
	log.Warn("visible message", slog.String("name", "Apple"))

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "visible message") || !strings.Contains(out, "name=Apple") {
		t.Errorf("expected warn record with attribute, got %q", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", true); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
