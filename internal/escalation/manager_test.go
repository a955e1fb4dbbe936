package escalation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

func TestCreateOpensPendingRecord(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)

	e := m.Create(context.Background(), CreateRequest{
		TenantID: "omsk",
		Channel:  "telegram",
		UserID:   "u1",
		Reason:   domain.ReasonUserRequest,
	})

	if e.ID == "" {
		t.Fatal("expected generated ID")
	}
	if e.Status != domain.EscalationPending {
		t.Errorf("expected pending, got %s", e.Status)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	stored, _ := store.GetRecord(context.Background(), e.ID)
	if stored == nil {
		t.Fatal("record not persisted")
	}
}

func TestTransitionLifecycle(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonNotFound})

	got, err := m.Transition(ctx, e.ID, domain.EscalationContacted, TransitionUpdate{})
	if err != nil {
		t.Fatalf("pending -> contacted: %v", err)
	}
	if got.Status != domain.EscalationContacted {
		t.Errorf("expected contacted, got %s", got.Status)
	}

	got, err = m.Transition(ctx, e.ID, domain.EscalationResolved, TransitionUpdate{})
	if err != nil {
		t.Fatalf("contacted -> resolved: %v", err)
	}
	if got.ResolvedAt == nil {
		t.Fatal("expected resolved_at to be set")
	}
}

func TestTransitionPendingDirectlyToResolved(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})

	got, err := m.Transition(ctx, e.ID, domain.EscalationResolved, TransitionUpdate{})
	if err != nil {
		t.Fatalf("pending -> resolved: %v", err)
	}
	if got.ResolvedAt == nil {
		t.Error("expected resolved_at on direct resolve")
	}
}

func TestResolvedIsTerminal(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})
	if _, err := m.Transition(ctx, e.ID, domain.EscalationResolved, TransitionUpdate{}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, next := range []domain.EscalationStatus{domain.EscalationPending, domain.EscalationContacted} {
		if _, err := m.Transition(ctx, e.ID, next, TransitionUpdate{}); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("resolved -> %s: expected ErrInvalidTransition, got %v", next, err)
		}
	}
}

func TestRepeatedResolveKeepsResolvedAt(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	m.now = func() time.Time { return now }

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})
	first, err := m.Transition(ctx, e.ID, domain.EscalationResolved, TransitionUpdate{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	now = now.Add(time.Hour)
	second, err := m.Transition(ctx, e.ID, domain.EscalationResolved, TransitionUpdate{})
	if err != nil {
		t.Fatalf("re-resolve should be idempotent, got %v", err)
	}
	if !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Errorf("resolved_at changed on re-resolve: %v vs %v", second.ResolvedAt, first.ResolvedAt)
	}
}

func TestContactedCannotGoBackToPending(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})
	if _, err := m.Transition(ctx, e.ID, domain.EscalationContacted, TransitionUpdate{}); err != nil {
		t.Fatalf("contact: %v", err)
	}

	if _, err := m.Transition(ctx, e.ID, domain.EscalationPending, TransitionUpdate{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("contacted -> pending: expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransitionAppliesAssigneeAndNotes(t *testing.T) {
	store := NewMemoryRecordStore()
	m := NewManager(store, nil)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})

	got, err := m.Transition(ctx, e.ID, domain.EscalationContacted, TransitionUpdate{
		AssignedTo: "manager-7",
		Notes:      "позвонил, перезвонит вечером",
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if got.AssignedTo != "manager-7" || got.Notes == "" {
		t.Errorf("update fields not applied: %+v", got)
	}

	stored, _ := store.GetRecord(ctx, e.ID)
	if stored.AssignedTo != "manager-7" {
		t.Errorf("assignee not persisted: %+v", stored)
	}
}

func TestTransitionUnknownRecord(t *testing.T) {
	m := NewManager(NewMemoryRecordStore(), nil)

	if _, err := m.Transition(context.Background(), "missing", domain.EscalationResolved, TransitionUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

type failingRecordStore struct {
	*MemoryRecordStore
	failCreate bool
}

func (s *failingRecordStore) CreateRecord(ctx context.Context, e *domain.Escalation) error {
	if s.failCreate {
		return errors.New("backend down")
	}
	return s.MemoryRecordStore.CreateRecord(ctx, e)
}

func TestCreateJournalsOnBackendFailure(t *testing.T) {
	journal, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()

	store := &failingRecordStore{MemoryRecordStore: NewMemoryRecordStore(), failCreate: true}
	m := NewManager(store, journal)
	ctx := context.Background()

	e := m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonComplexQuery})
	if e.ID == "" {
		t.Fatal("create must succeed even when the backend is down")
	}

	pending, err := journal.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e.ID {
		t.Fatalf("expected journaled record, got %v", pending)
	}

	// Backend recovers; flush drains the journal into it.
	store.failCreate = false
	m.FlushJournal(ctx)

	pending, _ = journal.Pending(ctx)
	if len(pending) != 0 {
		t.Errorf("journal should be empty after flush, got %d entries", len(pending))
	}
	stored, _ := store.GetRecord(ctx, e.ID)
	if stored == nil {
		t.Error("flushed record missing from backend")
	}
}

func TestFlushKeepsEntryWhileBackendDown(t *testing.T) {
	journal, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()

	store := &failingRecordStore{MemoryRecordStore: NewMemoryRecordStore(), failCreate: true}
	m := NewManager(store, journal)
	ctx := context.Background()

	m.Create(ctx, CreateRequest{TenantID: "omsk", UserID: "u1", Reason: domain.ReasonUserRequest})
	m.FlushJournal(ctx)

	pending, _ := journal.Pending(ctx)
	if len(pending) != 1 {
		t.Fatalf("entry should survive a failed flush, got %d", len(pending))
	}
}
