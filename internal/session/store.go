// Package session provides the bounded, TTL-backed conversation history
// store keyed by (tenant, channel, user).
package session

import (
	"context"

	"github.com/zetalabs/convo/internal/domain"
)

// Store persists per-session conversation turns and short-lived pending
// state. Turns are held most-recent-first internally and capped at a fixed
// window; every write refreshes the session TTL.
type Store interface {
	// Append pushes a turn to the front of the session's sequence,
	// truncates to the configured cap and refreshes the TTL.
	Append(ctx context.Context, key domain.SessionKey, turn domain.Turn) error

	// History returns up to limit turns in chronological order (oldest
	// first). limit <= 0 returns the full retained window.
	History(ctx context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error)

	// Clear deletes the session's turns and pending state immediately.
	Clear(ctx context.Context, key domain.SessionKey) error

	// SetPendingQuery stashes the original query of a clarification
	// round so a follow-up filter choice can be composed with it.
	SetPendingQuery(ctx context.Context, key domain.SessionKey, query string) error

	// PendingQuery returns the stashed query ("" if none) and clears it.
	PendingQuery(ctx context.Context, key domain.SessionKey) (string, error)

	// Close releases backend resources.
	Close() error
}

// ContextWindow returns the longest chronological suffix of turns whose
// concatenated text length does not exceed maxChars. It scans from the most
// recent turn backward and stops before the budget would be exceeded.
func ContextWindow(turns []domain.Turn, maxChars int) []domain.Turn {
	if maxChars <= 0 {
		return nil
	}
	total := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		n := len(turns[i].Text)
		if total+n > maxChars {
			break
		}
		total += n
		start = i
	}
	return turns[start:]
}
