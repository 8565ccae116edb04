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

	logger.Info("test message")
	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug output at info level")
	}

	logger.SetLevel(log.DebugLevel)
	logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug output missing at debug level")
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext() did not return the stored logger")
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	logger := loggerFromContext(context.Background())
	if logger == nil {
		t.Fatal("loggerFromContext() returned nil without a stored logger")
	}
	// The fallback must be safe to use.
	logger.Info("discarded")
}
