package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdownRunsAllHooks(t *testing.T) {
	s := NewShutdown(testLogger())

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		s.Register("hook", func(context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := ran.Load(); got != 3 {
		t.Errorf("ran %d hooks, want 3", got)
	}
}

func TestShutdownCollectsFailures(t *testing.T) {
	s := NewShutdown(testLogger())

	bad := errors.New("poller stuck")
	var ran atomic.Bool
	s.Register("bot", func(context.Context) error { return bad })
	s.Register("worker", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	err := s.Execute(context.Background())
	if !errors.Is(err, bad) {
		t.Errorf("Execute error = %v, want wrapped %v", err, bad)
	}
	if !ran.Load() {
		t.Error("a failing hook prevented the others from running")
	}
}

func TestShutdownIgnoresNilHooks(t *testing.T) {
	s := NewShutdown(testLogger())
	s.Register("noop", nil)

	if err := s.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
