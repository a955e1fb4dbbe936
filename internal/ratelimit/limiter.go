// Package ratelimit provides per-user fixed-window abuse control.
package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

const rateKeyPrefix = "rate:"

// Store is the counter backend for the fixed window. Incr increments the
// counter for key, starting a new window of the given length when the key
// did not exist, and returns the post-increment count.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter enforces a fixed-window message budget per session key.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New creates a Limiter allowing limit calls per window.
func New(store Store, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow increments the caller's window counter and reports whether the
// message may proceed. When the counter exceeds the limit it returns false
// without resetting the window early. Backend errors fail open: a broken
// limiter must never make the system unusable.
func (l *Limiter) Allow(ctx context.Context, key domain.SessionKey) bool {
	count, err := l.store.Incr(ctx, rateKeyPrefix+key.String(), l.window)
	if err != nil {
		slog.Error("rate limiter backend error, failing open", "error", err, "user_id", key.UserID)
		return true
	}

	if count > int64(l.limit) {
		slog.Warn("rate limit exceeded",
			"tenant_id", key.TenantID,
			"user_id", key.UserID,
			"count", count,
			"limit", l.limit)
		return false
	}

	return true
}

// Limit returns the configured per-window budget.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }
