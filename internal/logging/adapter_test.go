package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter returned nil")
	}
	if adapter.logger == nil {
		t.Error("adapter.logger should not be nil when created with nil")
	}
}

func TestNewSlogAdapter_WithLogger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the underlying logger")
	}
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Debug("debug message", "k", 1)
	adapter.Info("info message", "k", 2)
	adapter.Warn("warn message", "k", 3)
	adapter.Error("error message", "k", 4)

	out := buf.String()
	for _, want := range []string{"level=DEBUG", "level=INFO", "level=WARN", "level=ERROR", "k=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogAdapter_With(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))).With(KeyService, "graph")
	adapter.Info("hello")
	if !strings.Contains(buf.String(), "service=graph") {
		t.Errorf("With attributes not applied: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("dropped", "k", "v")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
