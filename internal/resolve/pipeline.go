package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/zetalabs/convo/internal/catalog"
	"github.com/zetalabs/convo/internal/domain"
)

// ResultKind classifies what the pipeline produced.
type ResultKind string

const (
	// KindCandidates means one or more catalog products were resolved.
	KindCandidates ResultKind = "candidates"
	// KindClarify means the query was too vague and filter options are
	// offered instead of search results.
	KindClarify ResultKind = "clarify"
	// KindNoResults means every stage came back empty.
	KindNoResults ResultKind = "no_results"
)

// Stage names reported in results and metrics.
const (
	StageDirect   = "direct"
	StageSKU      = "sku"
	StageOCR      = "ocr_sku"
	StageVision   = "vision"
	StageFallback = "fallback"
)

// Vision turns a product photo into a searchable description.
type Vision interface {
	DescribeImage(ctx context.Context, image []byte, mime string) (string, error)
}

// TextExtractor pulls printed text out of a product photo.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// Request is one resolution attempt for a user message.
type Request struct {
	TenantID string
	Text     string

	// Image, when set, routes through the photo cascade instead of text
	// search.
	Image     []byte
	ImageMIME string

	// Clarified marks the text as already narrowed by a filter choice, so
	// the vagueness gate is skipped.
	Clarified bool

	// Prefs biases search when present; never filters hard.
	Prefs *domain.PreferenceRecord
}

// Result is the pipeline outcome.
type Result struct {
	Kind       ResultKind
	Candidates []domain.Product
	// Stage names the pipeline stage that produced the candidates.
	Stage   string
	Clarify []FilterOption
}

// Pipeline resolves user messages to catalog candidates. Each stage
// failure is absorbed as an empty result so the cascade always terminates
// with a usable outcome.
type Pipeline struct {
	catalog catalog.Searcher
	ocr     TextExtractor
	vision  Vision
	limit   int
}

// NewPipeline creates a Pipeline. ocr and vision may be nil; their stages
// are then skipped.
func NewPipeline(cat catalog.Searcher, ocr TextExtractor, vision Vision, limit int) *Pipeline {
	if limit <= 0 {
		limit = 5
	}
	return &Pipeline{catalog: cat, ocr: ocr, vision: vision, limit: limit}
}

// Resolve runs the cascade for the request.
func (p *Pipeline) Resolve(ctx context.Context, req Request) Result {
	start := time.Now()
	res := p.resolve(ctx, req)
	pipelineDuration.Observe(time.Since(start).Seconds())

	switch res.Kind {
	case KindCandidates:
		resolutionsTotal.WithLabelValues(res.Stage).Inc()
	case KindClarify:
		resolutionsTotal.WithLabelValues("clarify").Inc()
	default:
		resolutionsTotal.WithLabelValues("no_results").Inc()
	}
	return res
}

func (p *Pipeline) resolve(ctx context.Context, req Request) Result {
	if len(req.Image) > 0 {
		return p.resolveImage(ctx, req)
	}
	return p.resolveText(ctx, req)
}

func (p *Pipeline) resolveText(ctx context.Context, req Request) Result {
	// An explicit article in the message short-circuits search.
	if sku := ExtractSKU(req.Text); sku != "" {
		if product := p.lookup(ctx, req.TenantID, sku); product != nil {
			return Result{Kind: KindCandidates, Candidates: []domain.Product{*product}, Stage: StageSKU}
		}
	}

	if !req.Clarified && IsVague(req.Text) {
		return Result{Kind: KindClarify, Clarify: ClarifyOptions()}
	}

	if candidates := p.search(ctx, req, req.Text, StageDirect); len(candidates) > 0 {
		return Result{Kind: KindCandidates, Candidates: candidates, Stage: StageDirect}
	}

	return p.fallback(ctx, req)
}

// resolveImage runs the photo cascade: printed article first, then a
// vision description searched as text.
func (p *Pipeline) resolveImage(ctx context.Context, req Request) Result {
	if p.ocr != nil {
		text, err := p.ocr.ExtractText(ctx, req.Image)
		if err != nil {
			stageFailuresTotal.WithLabelValues(StageOCR).Inc()
			slog.Warn("ocr stage failed", "error", err, "tenant_id", req.TenantID)
		} else if sku := ExtractSKU(text); sku != "" {
			if product := p.lookup(ctx, req.TenantID, sku); product != nil {
				return Result{Kind: KindCandidates, Candidates: []domain.Product{*product}, Stage: StageOCR}
			}
		}
	}

	if p.vision != nil {
		description, err := p.vision.DescribeImage(ctx, req.Image, req.ImageMIME)
		if err != nil {
			stageFailuresTotal.WithLabelValues(StageVision).Inc()
			slog.Warn("vision stage failed", "error", err, "tenant_id", req.TenantID)
		} else if description != "" {
			if candidates := p.search(ctx, req, description, StageVision); len(candidates) > 0 {
				return Result{Kind: KindCandidates, Candidates: candidates, Stage: StageVision}
			}
		}
	}

	return p.fallback(ctx, req)
}

// fallback recommends from the viewed trail when every other stage came
// back empty.
func (p *Pipeline) fallback(ctx context.Context, req Request) Result {
	var seeds []string
	if req.Prefs != nil {
		seeds = req.Prefs.ViewedSKUs
	}
	if len(seeds) == 0 {
		return Result{Kind: KindNoResults}
	}

	candidates, err := p.catalog.Recommend(ctx, req.TenantID, seeds, p.limit)
	if err != nil {
		stageFailuresTotal.WithLabelValues(StageFallback).Inc()
		slog.Warn("fallback stage failed", "error", err, "tenant_id", req.TenantID)
		return Result{Kind: KindNoResults}
	}
	if len(candidates) == 0 {
		return Result{Kind: KindNoResults}
	}
	return Result{Kind: KindCandidates, Candidates: candidates, Stage: StageFallback}
}

func (p *Pipeline) search(ctx context.Context, req Request, text, stage string) []domain.Product {
	q := catalog.Query{
		TenantID: req.TenantID,
		Text:     text,
		Limit:    p.limit,
	}
	if req.Prefs != nil {
		if len(req.Prefs.Colors) > 0 {
			q.Color = req.Prefs.Colors[0]
		}
		if len(req.Prefs.Materials) > 0 {
			q.Material = req.Prefs.Materials[0]
		}
		q.BudgetTier = req.Prefs.BudgetTier
	}

	candidates, err := p.catalog.Search(ctx, q)
	if err != nil {
		stageFailuresTotal.WithLabelValues(stage).Inc()
		slog.Warn("search stage failed", "error", err, "stage", stage, "tenant_id", req.TenantID)
		return nil
	}
	return candidates
}

func (p *Pipeline) lookup(ctx context.Context, tenantID, sku string) *domain.Product {
	product, err := p.catalog.LookupBySKU(ctx, tenantID, sku)
	if err != nil {
		stageFailuresTotal.WithLabelValues(StageSKU).Inc()
		slog.Warn("sku lookup failed", "error", err, "sku", sku, "tenant_id", tenantID)
		return nil
	}
	return product
}
