package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("placed") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("placed") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("placed") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("overlap") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	sw := startStopwatch(newLogger(&buf, log.InfoLevel))

	if sw.elapsed() < 0 {
		t.Errorf("elapsed() = %v, want >= 0", sw.elapsed())
	}
	sw.done("Optimized %d generations", 4)

	out := buf.String()
	if !strings.Contains(out, "Optimized 4 generations (") {
		t.Errorf("done() output = %q, want message followed by the elapsed time", out)
	}
}

func TestCLILogger(t *testing.T) {
	c := New(io.Discard, LogInfo)

	if got := c.logger(context.Background()); got != c.Logger {
		t.Error("logger() without an attached logger should return the CLI logger")
	}

	attached := newLogger(io.Discard, log.DebugLevel)
	ctx := withLogger(context.Background(), attached)
	if got := c.logger(ctx); got != attached {
		t.Error("logger() should return the logger attached to the context")
	}
}
