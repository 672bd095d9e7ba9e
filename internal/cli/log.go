package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes to w with "15:04:05.00" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stopwatch times one stage of a command. Not safe for concurrent use.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) *stopwatch {
	return &stopwatch{logger: l, start: time.Now()}
}

// elapsed returns the time since the stopwatch started, rounded to the
// millisecond.
func (s *stopwatch) elapsed() time.Duration {
	return time.Since(s.start).Round(time.Millisecond)
}

// done logs the message followed by the elapsed time, for example
// "Optimized 12 generations: cost 31.40 after 8 iterations (1.234s)".
func (s *stopwatch) done(format string, args ...any) {
	s.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), s.elapsed())
}

type loggerKey struct{}

// withLogger attaches l to ctx for the commands run under it.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// logger returns the logger attached to ctx by Execute, falling back to the
// CLI's own logger when commands run without one.
func (c *CLI) logger(ctx context.Context) *log.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
			return l
		}
	}
	return c.Logger
}
