package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinner_Stages(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), "Loading records...")
	s.w = &buf

	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stage("Laying out 5 individuals...")
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	for _, want := range []string{"Loading records...", "Laying out 5 individuals..."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if s.Cancelled() {
		t.Error("Cancelled() = true after a plain Stop")
	}
}

func TestSpinner_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Laying out...")
	s.w = &bytes.Buffer{}
	s.Start()

	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Cancelled() = false after the parent context ended")
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		s := newSpinner(context.Background(), "idle")
		s.Stop()
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop without Start blocked")
	}
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), "Rendering svg...")
	s.w = &bytes.Buffer{}
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerLine_Elapsed(t *testing.T) {
	s := newSpinner(context.Background(), "Laying out...")

	if got := s.line("⠋", 500*time.Millisecond); strings.Contains(got, "0s") {
		t.Errorf("line() = %q, want no elapsed time under a second", got)
	}
	if got := s.line("⠋", 3200*time.Millisecond); !strings.Contains(got, "Laying out... 3s") {
		t.Errorf("line() = %q, want elapsed 3s", got)
	}
}
