package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// hook is a named teardown step: stop the poller, drain the worker, flush
// the snapshot.
type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// Shutdown runs registered teardown hooks concurrently. The hooks here are
// independent of each other (bot poller, jobs worker, cron scheduler, HTTP
// server), so ordering is not needed; the caller bounds the whole sequence
// with a context deadline.
type Shutdown struct {
	mu    sync.Mutex
	hooks []hook
	log   *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Execute runs all registered hooks concurrently and waits for completion.
// Hook failures are collected, not short-circuited, so every component gets
// its chance to stop.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs []error

	for _, h := range hooks {
		wg.Add(1)
		go func(h hook) {
			defer wg.Done()

			hookStart := time.Now()
			if err := h.fn(ctx); err != nil {
				s.log.Error("shutdown hook failed",
					slog.String("hook", h.name),
					slog.Any("error", err),
				)
				errMu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
				errMu.Unlock()
				return
			}

			s.log.Info("shutdown hook completed",
				slog.String("hook", h.name),
				slog.Duration("took", time.Since(hookStart)),
			)
		}(h)
	}

	wg.Wait()
	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(errs...)
}
