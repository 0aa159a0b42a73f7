package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	logger.Info("test message")
	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}

	// Debug is filtered at info level
	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug output should be filtered at info level")
	}
}

func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext should return the attached logger")
	}

	// Bare contexts fall back to the default logger
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext should never return nil")
	}
}

func TestConfigPathContext(t *testing.T) {
	ctx := withConfigPath(context.Background(), "custom.toml")
	if got := configPathFromContext(ctx); got != "custom.toml" {
		t.Errorf("configPathFromContext = %q, want custom.toml", got)
	}
	if got := configPathFromContext(context.Background()); got != "" {
		t.Errorf("bare context path = %q, want empty", got)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	track := newProgress(logger)
	track.done("Planned 8 items")

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("Planned 8 items")) {
		t.Errorf("progress output missing message: %q", out)
	}
}
