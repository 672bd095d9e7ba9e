package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on stderr while a command works through
// its stages. Once a stage has run for a second the elapsed time is shown
// after the message.
type spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
	start  time.Time

	mu      sync.Mutex
	message string
	width   int
	running bool
	stopped chan struct{}
}

// newSpinner creates a spinner that stops on its own when ctx ends.
func newSpinner(ctx context.Context, message string) *spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		w:       os.Stderr,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		start:   time.Now(),
		message: message,
		stopped: make(chan struct{}),
	}
}

// Start begins the animation. Calling it twice has no effect.
func (s *spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clear()
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Stage switches to the next message and restarts the elapsed timer.
func (s *spinner) Stage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.start = time.Now()
}

// Stop ends the animation and clears the line. It is safe to call more than
// once, and without Start.
func (s *spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if running {
		<-s.stopped
	}
}

// Cancelled reports whether the spinner stopped because its parent context
// ended.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := s.line(frame, time.Since(s.start))
	width := lipgloss.Width(line)
	pad := ""
	if width < s.width {
		pad = strings.Repeat(" ", s.width-width)
	}
	fmt.Fprintf(s.w, "\r%s%s", line, pad)
	s.width = width
}

func (s *spinner) line(frame string, elapsed time.Duration) string {
	msg := s.message
	if elapsed >= time.Second {
		msg = fmt.Sprintf("%s %s", msg, elapsed.Truncate(time.Second))
	}
	return styleIconSpinner.Render(frame) + " " + StyleDim.Render(msg)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		s.width = 0
	}
}
