// Package escalation creates and tracks human hand-off records.
package escalation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zetalabs/convo/internal/domain"
)

// ErrInvalidTransition is returned when a status change violates the
// record lifecycle.
var ErrInvalidTransition = errors.New("invalid escalation transition")

// ErrNotFound is returned when no record exists for the given ID.
var ErrNotFound = errors.New("escalation not found")

// RecordStore persists escalation records in the admin backend.
type RecordStore interface {
	CreateRecord(ctx context.Context, e *domain.Escalation) error
	UpdateRecord(ctx context.Context, e *domain.Escalation) error
	GetRecord(ctx context.Context, id string) (*domain.Escalation, error)
}

// Manager owns the escalation lifecycle. Record creation never fails the
// conversational flow: when the backend write fails, the record is queued
// in the local journal and flushed later.
type Manager struct {
	records RecordStore
	journal *Journal
	now     func() time.Time
}

// NewManager creates a Manager. journal may be nil, in which case failed
// backend writes are only logged.
func NewManager(records RecordStore, journal *Journal) *Manager {
	return &Manager{records: records, journal: journal, now: time.Now}
}

// CreateRequest carries the conversational context for a new hand-off.
type CreateRequest struct {
	TenantID   string
	Channel    string
	UserID     string
	UserName   string
	ProductSKU string
	Reason     string
	Excerpt    string
}

// Create opens a pending escalation record. The returned record is always
// usable; backend write failures are absorbed into the journal.
func (m *Manager) Create(ctx context.Context, req CreateRequest) *domain.Escalation {
	e := &domain.Escalation{
		ID:         uuid.NewString(),
		TenantID:   req.TenantID,
		Channel:    req.Channel,
		UserID:     req.UserID,
		UserName:   req.UserName,
		ProductSKU: req.ProductSKU,
		Reason:     req.Reason,
		Excerpt:    req.Excerpt,
		Status:     domain.EscalationPending,
		CreatedAt:  m.now(),
	}

	if err := m.records.CreateRecord(ctx, e); err != nil {
		slog.Error("escalation record write failed",
			"error", err, "escalation_id", e.ID, "tenant_id", e.TenantID)
		if m.journal != nil {
			if jerr := m.journal.Enqueue(ctx, e); jerr != nil {
				slog.Error("escalation journal write failed", "error", jerr, "escalation_id", e.ID)
			}
		}
	}

	return e
}

// TransitionUpdate carries the optional fields an administrator may set
// alongside a status change.
type TransitionUpdate struct {
	AssignedTo string
	Notes      string
}

// Transition moves the record to the next status. Resolved is terminal;
// re-resolving is an idempotent no-op that leaves resolved_at untouched.
func (m *Manager) Transition(ctx context.Context, id string, next domain.EscalationStatus, update TransitionUpdate) (*domain.Escalation, error) {
	e, err := m.records.GetRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load escalation %s: %w", id, err)
	}
	if e == nil {
		return nil, ErrNotFound
	}

	if !e.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, next)
	}

	if e.Status == domain.EscalationResolved && next == domain.EscalationResolved {
		return e, nil
	}

	e.Status = next
	if update.AssignedTo != "" {
		e.AssignedTo = update.AssignedTo
	}
	if update.Notes != "" {
		e.Notes = update.Notes
	}
	if next == domain.EscalationResolved && e.ResolvedAt == nil {
		ts := m.now()
		e.ResolvedAt = &ts
	}

	if err := m.records.UpdateRecord(ctx, e); err != nil {
		return nil, fmt.Errorf("update escalation %s: %w", id, err)
	}

	slog.Info("escalation transitioned",
		"escalation_id", e.ID, "status", e.Status, "tenant_id", e.TenantID)
	return e, nil
}

// FlushJournal retries journaled records against the backend, removing
// the ones that succeed.
func (m *Manager) FlushJournal(ctx context.Context) {
	if m.journal == nil {
		return
	}

	pending, err := m.journal.Pending(ctx)
	if err != nil {
		slog.Error("escalation journal read failed", "error", err)
		return
	}

	for _, e := range pending {
		if err := m.records.CreateRecord(ctx, e); err != nil {
			slog.Warn("escalation journal flush failed, keeping entry",
				"error", err, "escalation_id", e.ID)
			if err := m.journal.MarkAttempt(ctx, e.ID); err != nil {
				slog.Warn("escalation journal attempt update failed", "error", err, "escalation_id", e.ID)
			}
			continue
		}
		if err := m.journal.Remove(ctx, e.ID); err != nil {
			slog.Warn("escalation journal remove failed", "error", err, "escalation_id", e.ID)
		}
	}
}

// StartJournalFlush runs a background goroutine that periodically retries
// journaled records until ctx is cancelled.
func (m *Manager) StartJournalFlush(ctx context.Context, every time.Duration) {
	if m.journal == nil || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		slog.Info("escalation journal flush worker started", "interval", every)

		for {
			select {
			case <-ticker.C:
				m.FlushJournal(ctx)
			case <-ctx.Done():
				slog.Info("escalation journal flush worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
