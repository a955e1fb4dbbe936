package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

const (
	cooldownCopy = "Слишком много сообщений подряд. Подождите минуту и попробуйте снова."
	resetCopy    = "Начнём сначала! Опишите, какую мебель вы ищете."
	clarifyCopy  = "Уточните, пожалуйста, что именно вас интересует:"
	foundCopy    = "Вот что нашлось:"
)

// Completer produces a free-form consultation reply, optionally calling
// catalog tools along the way.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []openaigo.ChatCompletionMessageParamUnion, userText string, handlers ai.ToolHandlers) (string, error)
}

// Orchestrator sequences the conversational core for one inbound message.
type Orchestrator struct {
	limiter     *ratelimit.Limiter
	sessions    session.Store
	prefs       *prefs.Tracker
	tenants     *tenantcfg.Cache
	pipeline    *resolve.Pipeline
	escalations *escalation.Manager
	catalog     catalog.Searcher
	completer   Completer

	contextBudget int
	searchLimit   int
}

// Options wires the orchestrator's collaborators. Completer may be nil;
// question intents then fall back to product resolution.
type Options struct {
	Limiter     *ratelimit.Limiter
	Sessions    session.Store
	Prefs       *prefs.Tracker
	Tenants     *tenantcfg.Cache
	Pipeline    *resolve.Pipeline
	Escalations *escalation.Manager
	Catalog     catalog.Searcher
	Completer   Completer

	ContextBudget int
	SearchLimit   int
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = 8000
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 5
	}
	return &Orchestrator{
		limiter:       opts.Limiter,
		sessions:      opts.Sessions,
		prefs:         opts.Prefs,
		tenants:       opts.Tenants,
		pipeline:      opts.Pipeline,
		escalations:   opts.Escalations,
		catalog:       opts.Catalog,
		completer:     opts.Completer,
		contextBudget: opts.ContextBudget,
		searchLimit:   opts.SearchLimit,
	}
}

// Handle processes one inbound message and returns the outbound action.
func (o *Orchestrator) Handle(ctx context.Context, in Inbound) Action {
	action := o.handle(ctx, in)
	actionsTotal.WithLabelValues(in.TenantID, string(action.Kind)).Inc()
	return action
}

func (o *Orchestrator) handle(ctx context.Context, in Inbound) Action {
	key := in.Key()

	if !o.limiter.Allow(ctx, key) {
		rateLimitedTotal.WithLabelValues(in.TenantID).Inc()
		return Action{Kind: ActionReplyText, Text: cooldownCopy}
	}

	cfg := o.tenants.Get(ctx, in.TenantID)

	if len(in.Image) == 0 && in.FilterID == "" {
		switch detectIntent(in.Text) {
		case intentGreeting:
			greeting := cfg.GreetingOrDefault()
			o.appendExchange(ctx, key, in.Text, greeting)
			return Action{Kind: ActionReplyText, Text: greeting}

		case intentReset:
			if err := o.sessions.Clear(ctx, key); err != nil {
				slog.Warn("session clear failed", "error", err, "session", key.String())
			}
			return Action{Kind: ActionReplyText, Text: resetCopy}

		case intentHuman:
			return o.escalate(ctx, in, cfg, domain.ReasonUserRequest)

		case intentQuestion:
			if o.completer != nil {
				return o.consult(ctx, in, cfg)
			}
		}
	}

	if in.Text != "" {
		o.prefs.Merge(ctx, in.UserID, prefs.Extract(in.Text))
	}
	record := o.prefs.Get(ctx, in.UserID)

	text := in.Text
	clarified := false
	if in.FilterID != "" {
		stashed, err := o.sessions.PendingQuery(ctx, key)
		if err != nil {
			slog.Warn("pending query read failed", "error", err, "session", key.String())
		}
		if stashed != "" {
			text = resolve.ApplyFilter(stashed, in.FilterID)
			clarified = true
		}
	}

	res := o.pipeline.Resolve(ctx, resolve.Request{
		TenantID:  in.TenantID,
		Text:      text,
		Image:     in.Image,
		ImageMIME: in.ImageMIME,
		Clarified: clarified,
		Prefs:     record,
	})

	switch res.Kind {
	case resolve.KindClarify:
		if err := o.sessions.SetPendingQuery(ctx, key, text); err != nil {
			slog.Warn("pending query stash failed", "error", err, "session", key.String())
		}
		o.appendExchange(ctx, key, in.Text, clarifyCopy)
		return Action{Kind: ActionClarification, Text: clarifyCopy, Filters: res.Clarify}

	case resolve.KindCandidates:
		skus := make([]string, 0, len(res.Candidates))
		for _, p := range res.Candidates {
			skus = append(skus, p.SKU)
		}
		o.prefs.TrackViewed(ctx, in.UserID, skus)

		reply := fmt.Sprintf("%s %s", foundCopy, summarize(res.Candidates))
		o.appendExchange(ctx, key, userTurnText(in, text), reply)
		return Action{Kind: ActionCandidateList, Text: foundCopy, Candidates: res.Candidates}

	default:
		noResults := cfg.NoResultsOrDefault()
		o.appendExchange(ctx, key, userTurnText(in, text), noResults)
		return Action{Kind: ActionReplyText, Text: noResults}
	}
}

// escalate opens a hand-off record with a conversation excerpt and
// acknowledges the user. Creation never fails user-visibly.
func (o *Orchestrator) escalate(ctx context.Context, in Inbound, cfg *tenantcfg.Config, reason string) Action {
	key := in.Key()

	excerpt := ""
	if history, err := o.sessions.History(ctx, key, 0); err == nil {
		excerpt = renderExcerpt(session.ContextWindow(history, o.contextBudget))
	}

	e := o.escalations.Create(ctx, escalation.CreateRequest{
		TenantID: in.TenantID,
		Channel:  in.Channel,
		UserID:   in.UserID,
		UserName: in.UserName,
		Reason:   reason,
		Excerpt:  excerpt,
	})
	escalationsTotal.WithLabelValues(in.TenantID, reason).Inc()

	ack := cfg.EscalationCopyOrDefault()
	o.appendExchange(ctx, key, in.Text, ack)
	return Action{Kind: ActionEscalationAck, Text: ack, EscalationID: e.ID}
}

// consult answers a free-form question through the model, giving it
// catalog tools scoped to the tenant.
func (o *Orchestrator) consult(ctx context.Context, in Inbound, cfg *tenantcfg.Config) Action {
	key := in.Key()

	history, err := o.sessions.History(ctx, key, 0)
	if err != nil {
		slog.Warn("history read failed", "error", err, "session", key.String())
	}
	messages := ai.HistoryMessages(session.ContextWindow(history, o.contextBudget))

	record := o.prefs.Get(ctx, in.UserID)

	handlers := ai.ToolHandlers{
		SearchProducts: func(ctx context.Context, query string) (any, error) {
			return o.catalog.Search(ctx, catalog.Query{
				TenantID: in.TenantID,
				Text:     query,
				Limit:    o.searchLimit,
			})
		},
		GetProductDetails: func(ctx context.Context, sku string) (any, error) {
			p, err := o.catalog.LookupBySKU(ctx, in.TenantID, sku)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return map[string]any{"error": "товар не найден"}, nil
			}
			return p, nil
		},
		RecommendProducts: func(ctx context.Context) (any, error) {
			var seeds []string
			if record != nil {
				seeds = record.ViewedSKUs
			}
			return o.catalog.Recommend(ctx, in.TenantID, seeds, o.searchLimit)
		},
	}

	reply, err := o.completer.Complete(ctx, cfg.SystemPromptOrDefault(), messages, in.Text, handlers)
	if err != nil {
		slog.Error("consultation completion failed", "error", err, "session", key.String())
		return o.escalate(ctx, in, cfg, domain.ReasonComplexQuery)
	}

	o.appendExchange(ctx, key, in.Text, reply)
	return Action{Kind: ActionReplyText, Text: reply}
}

func (o *Orchestrator) appendExchange(ctx context.Context, key domain.SessionKey, userText, assistantText string) {
	now := time.Now()
	if userText != "" {
		if err := o.sessions.Append(ctx, key, domain.Turn{Role: domain.RoleUser, Text: userText, Timestamp: now}); err != nil {
			slog.Warn("session append failed", "error", err, "session", key.String())
		}
	}
	if assistantText != "" {
		if err := o.sessions.Append(ctx, key, domain.Turn{Role: domain.RoleAssistant, Text: assistantText, Timestamp: now}); err != nil {
			slog.Warn("session append failed", "error", err, "session", key.String())
		}
	}
}

func userTurnText(in Inbound, resolvedText string) string {
	if in.Text != "" {
		return in.Text
	}
	if len(in.Image) > 0 {
		return "[фото товара]"
	}
	return resolvedText
}

func summarize(products []domain.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func renderExcerpt(turns []domain.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case domain.RoleAssistant:
			b.WriteString("Бот: ")
		default:
			b.WriteString("Клиент: ")
		}
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
