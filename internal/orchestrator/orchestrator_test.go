package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	openaigo "github.com/openai/openai-go/v3"

	"github.com/zetalabs/convo/internal/ai"
	"github.com/zetalabs/convo/internal/catalog"
	"github.com/zetalabs/convo/internal/domain"
	"github.com/zetalabs/convo/internal/escalation"
	"github.com/zetalabs/convo/internal/prefs"
	"github.com/zetalabs/convo/internal/ratelimit"
	"github.com/zetalabs/convo/internal/resolve"
	"github.com/zetalabs/convo/internal/session"
	"github.com/zetalabs/convo/internal/tenantcfg"
)

type stubCatalog struct {
	hits        []domain.Product
	searchCalls []string
}

func (s *stubCatalog) Search(ctx context.Context, q catalog.Query) ([]domain.Product, error) {
	s.searchCalls = append(s.searchCalls, q.Text)
	return s.hits, nil
}

func (s *stubCatalog) LookupBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error) {
	return nil, nil
}

func (s *stubCatalog) Recommend(ctx context.Context, tenantID string, seeds []string, limit int) ([]domain.Product, error) {
	return nil, nil
}

type stubProvider struct{}

func (stubProvider) Fetch(ctx context.Context, tenantID string) (*tenantcfg.Config, error) {
	return &tenantcfg.Config{
		Greeting:  "Добро пожаловать в наш магазин!",
		NoResults: "Ничего не нашлось.",
	}, nil
}

type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt string, history []openaigo.ChatCompletionMessageParamUnion, userText string, handlers ai.ToolHandlers) (string, error) {
	s.calls++
	return s.reply, s.err
}

type env struct {
	orch      *Orchestrator
	sessions  session.Store
	catalog   *stubCatalog
	records   *escalation.MemoryRecordStore
	prefStore *prefs.MemoryStore
}

func newEnv(t *testing.T, rateLimit int, completer Completer) *env {
	t.Helper()

	cat := &stubCatalog{}
	records := escalation.NewMemoryRecordStore()
	sessions := session.NewMemoryStore(20, 24*time.Hour)
	prefStore := prefs.NewMemoryStore()

	orch := New(Options{
		Limiter:     ratelimit.New(ratelimit.NewMemoryStore(), rateLimit, time.Minute),
		Sessions:    sessions,
		Prefs:       prefs.NewTracker(prefStore),
		Tenants:     tenantcfg.NewCache(stubProvider{}, 5*time.Minute),
		Pipeline:    resolve.NewPipeline(cat, nil, nil, 5),
		Escalations: escalation.NewManager(records, nil),
		Catalog:     cat,
		Completer:   completer,
	})

	return &env{orch: orch, sessions: sessions, catalog: cat, records: records, prefStore: prefStore}
}

func inbound(text string) Inbound {
	return Inbound{TenantID: "omsk", Channel: "telegram", UserID: "u1", Text: text}
}

func TestClarificationThenFilteredSearch(t *testing.T) {
	e := newEnv(t, 100, nil)
	ctx := context.Background()

	act := e.orch.Handle(ctx, inbound("диван"))
	if act.Kind != ActionClarification {
		t.Fatalf("expected clarification, got %+v", act)
	}
	if len(act.Filters) == 0 {
		t.Fatal("expected filter options")
	}
	if len(e.catalog.searchCalls) != 0 {
		t.Fatalf("vague query must not search, got %v", e.catalog.searchCalls)
	}

	e.catalog.hits = []domain.Product{
		{SKU: "ДИВ-КЛА-001", Name: "Диван Классик"},
		{SKU: "ДИВ-МОД-002", Name: "Диван Модерн"},
		{SKU: "ДИВ-ЛОФ-003", Name: "Диван Лофт"},
	}

	act = e.orch.Handle(ctx, Inbound{
		TenantID: "omsk", Channel: "telegram", UserID: "u1",
		FilterID: "home",
	})
	if act.Kind != ActionCandidateList {
		t.Fatalf("expected candidate list, got %+v", act)
	}
	if len(act.Candidates) != 3 {
		t.Errorf("expected 3 candidates, got %d", len(act.Candidates))
	}
	if len(e.catalog.searchCalls) != 1 || e.catalog.searchCalls[0] != "диван для дома" {
		t.Errorf("expected composed query 'диван для дома', got %v", e.catalog.searchCalls)
	}

	history, err := e.sessions.History(ctx, inbound("").Key(), 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var userTurns int
	for _, turn := range history {
		if turn.Role == domain.RoleUser {
			userTurns++
		}
	}
	if userTurns < 2 {
		t.Errorf("expected both user turns in history, got %d (history %v)", userTurns, history)
	}
}

func TestRateLimitCooldown(t *testing.T) {
	e := newEnv(t, 2, nil)
	ctx := context.Background()

	e.orch.Handle(ctx, inbound("привет"))
	e.orch.Handle(ctx, inbound("привет"))
	act := e.orch.Handle(ctx, inbound("привет"))

	if act.Kind != ActionReplyText || act.Text != cooldownCopy {
		t.Fatalf("expected cooldown notice, got %+v", act)
	}
}

func TestGreetingUsesTenantCopy(t *testing.T) {
	e := newEnv(t, 100, nil)

	act := e.orch.Handle(context.Background(), inbound("Привет"))

	if act.Kind != ActionReplyText {
		t.Fatalf("expected reply, got %+v", act)
	}
	if act.Text != "Добро пожаловать в наш магазин!" {
		t.Errorf("expected tenant greeting, got %q", act.Text)
	}
}

func TestResetClearsSession(t *testing.T) {
	e := newEnv(t, 100, nil)
	ctx := context.Background()

	e.catalog.hits = []domain.Product{{SKU: "X", Name: "Стол"}}
	e.orch.Handle(ctx, inbound("обеденный стол из дерева"))

	act := e.orch.Handle(ctx, inbound("сброс"))
	if act.Kind != ActionReplyText {
		t.Fatalf("expected reply, got %+v", act)
	}

	history, _ := e.sessions.History(ctx, inbound("").Key(), 0)
	if len(history) != 0 {
		t.Errorf("expected cleared history, got %v", history)
	}
}

func TestHumanRequestCreatesEscalation(t *testing.T) {
	e := newEnv(t, 100, nil)

	act := e.orch.Handle(context.Background(), inbound("позовите менеджера"))

	if act.Kind != ActionEscalationAck {
		t.Fatalf("expected escalation ack, got %+v", act)
	}
	if act.EscalationID == "" {
		t.Fatal("expected escalation id")
	}

	rec, _ := e.records.GetRecord(context.Background(), act.EscalationID)
	if rec == nil {
		t.Fatal("escalation record not persisted")
	}
	if rec.Status != domain.EscalationPending {
		t.Errorf("expected pending record, got %s", rec.Status)
	}
	if rec.Reason != domain.ReasonUserRequest {
		t.Errorf("expected user_request reason, got %s", rec.Reason)
	}
}

func TestNoResultsUsesTenantCopy(t *testing.T) {
	e := newEnv(t, 100, nil)

	act := e.orch.Handle(context.Background(), inbound("фиолетовый пуф со стразами"))

	if act.Kind != ActionReplyText {
		t.Fatalf("expected reply, got %+v", act)
	}
	if act.Text != "Ничего не нашлось." {
		t.Errorf("expected tenant no-results copy, got %q", act.Text)
	}
}

func TestQuestionGoesToCompleter(t *testing.T) {
	completer := &stubCompleter{reply: "Доставка по городу занимает 2-3 дня."}
	e := newEnv(t, 100, completer)

	act := e.orch.Handle(context.Background(), inbound("сколько стоит доставка?"))

	if act.Kind != ActionReplyText {
		t.Fatalf("expected reply, got %+v", act)
	}
	if completer.calls != 1 {
		t.Errorf("expected one completion call, got %d", completer.calls)
	}
	if act.Text != completer.reply {
		t.Errorf("unexpected reply: %q", act.Text)
	}
}

func TestCompleterFailureEscalates(t *testing.T) {
	completer := &stubCompleter{err: errors.New("model down")}
	e := newEnv(t, 100, completer)

	act := e.orch.Handle(context.Background(), inbound("сколько стоит доставка?"))

	if act.Kind != ActionEscalationAck {
		t.Fatalf("expected escalation on completion failure, got %+v", act)
	}

	rec, _ := e.records.GetRecord(context.Background(), act.EscalationID)
	if rec == nil || rec.Reason != domain.ReasonComplexQuery {
		t.Errorf("expected complex_query escalation, got %+v", rec)
	}
}

func TestCandidateListTracksViewedSKUs(t *testing.T) {
	e := newEnv(t, 100, nil)
	ctx := context.Background()

	e.catalog.hits = []domain.Product{{SKU: "СТО-ОБЕ-010", Name: "Стол"}}
	act := e.orch.Handle(ctx, inbound("обеденный стол из дерева"))
	if act.Kind != ActionCandidateList {
		t.Fatalf("expected candidates, got %+v", act)
	}

	rec, err := e.prefStore.Get(ctx, "u1")
	if err != nil || rec == nil {
		t.Fatalf("preference record missing: rec=%v err=%v", rec, err)
	}
	if len(rec.ViewedSKUs) != 1 || rec.ViewedSKUs[0] != "СТО-ОБЕ-010" {
		t.Errorf("expected viewed trail with shown SKU, got %v", rec.ViewedSKUs)
	}
	if len(rec.Materials) != 1 || rec.Materials[0] != "дерево" {
		t.Errorf("expected material preference extracted, got %v", rec.Materials)
	}
}
