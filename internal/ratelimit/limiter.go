// Package ratelimit protects the bot from command floods.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// ErrLimitExceeded indicates the chat has used up its window.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Result captures one rate-limit evaluation. Returned alongside
// ErrLimitExceeded so callers can tell the user when to try again.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter reports how long the chat has to wait before the window frees
// up. Zero when the request was allowed or the window already reset.
func (r *Result) RetryAfter(now time.Time) time.Duration {
	if r == nil || r.Allowed || !r.ResetAt.After(now) {
		return 0
	}
	return r.ResetAt.Sub(now)
}

// Limiter enforces a sliding-window limit per key. Keys here are chat ids;
// the backend is Redis in production and in-memory when Redis is disabled.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
