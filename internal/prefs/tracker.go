package prefs

import (
	"context"
	"log/slog"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

// Store persists preference records keyed by user identity.
type Store interface {
	// Get returns the stored record, or nil if none exists (not an error).
	Get(ctx context.Context, userID string) (*domain.PreferenceRecord, error)

	// Put stores the record with the configured TTL.
	Put(ctx context.Context, userID string, rec *domain.PreferenceRecord) error
}

// Tracker merges inferred preference signals into the per-user record.
// Preferences are a read-only bias for resolution; tracker failures are
// logged and never block the conversational flow.
type Tracker struct {
	store Store
	now   func() time.Time
}

// NewTracker creates a Tracker on the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Get returns the user's preference record, or nil when absent or on
// backend error (the caller proceeds without bias either way).
func (t *Tracker) Get(ctx context.Context, userID string) *domain.PreferenceRecord {
	rec, err := t.store.Get(ctx, userID)
	if err != nil {
		slog.Warn("preference read failed", "error", err, "user_id", userID)
		return nil
	}
	return rec
}

// Merge folds a partial record into the stored one: union for list fields,
// overwrite for scalars. A partial with no signal is a no-op.
func (t *Tracker) Merge(ctx context.Context, userID string, partial domain.PreferenceRecord) {
	if partial.IsZero() && partial.BudgetTier == domain.BudgetUnset && partial.Language == "" {
		return
	}

	rec, err := t.store.Get(ctx, userID)
	if err != nil {
		slog.Warn("preference read failed, skipping merge", "error", err, "user_id", userID)
		return
	}
	if rec == nil {
		rec = &domain.PreferenceRecord{}
	}

	partial.LastInteraction = t.now()
	rec.Merge(partial)

	if err := t.store.Put(ctx, userID, rec); err != nil {
		slog.Warn("preference write failed", "error", err, "user_id", userID)
	}
}

// TrackViewed records catalog candidates shown to the user so later
// recommendations can avoid repeats.
func (t *Tracker) TrackViewed(ctx context.Context, userID string, skus []string) {
	if len(skus) == 0 {
		return
	}

	rec, err := t.store.Get(ctx, userID)
	if err != nil {
		slog.Warn("preference read failed, skipping viewed update", "error", err, "user_id", userID)
		return
	}
	if rec == nil {
		rec = &domain.PreferenceRecord{}
	}

	rec.TrackViewed(skus)
	rec.LastInteraction = t.now()

	if err := t.store.Put(ctx, userID, rec); err != nil {
		slog.Warn("preference write failed", "error", err, "user_id", userID)
	}
}
