package domain

import (
	"time"
)

// BudgetTier is the coarse budget preference inferred from conversation.
type BudgetTier string

const (
	BudgetUnset BudgetTier = ""
	BudgetLow   BudgetTier = "low"
	BudgetMid   BudgetTier = "mid"
	BudgetHigh  BudgetTier = "high"
)

// MaxViewedSKUs bounds the viewed-product trail kept per user.
const MaxViewedSKUs = 20

// PreferenceRecord holds long-lived, per-user preference signals inferred
// from conversation. It is a soft ranking bias for catalog search, never a
// hard filter, and its absence must not block resolution.
type PreferenceRecord struct {
	Colors          []string   `json:"colors,omitempty"`
	Materials       []string   `json:"materials,omitempty"`
	BudgetTier      BudgetTier `json:"budget_tier,omitempty"`
	Language        string     `json:"language,omitempty"`
	ViewedSKUs      []string   `json:"viewed_skus,omitempty"`
	LastInteraction time.Time  `json:"last_interaction"`
}

// IsZero reports whether the record carries no signal at all.
func (p *PreferenceRecord) IsZero() bool {
	return p == nil ||
		(len(p.Colors) == 0 && len(p.Materials) == 0 &&
			p.BudgetTier == BudgetUnset && len(p.ViewedSKUs) == 0)
}

// Merge folds a partial record into p: list-valued fields are unioned
// (deduplicated, existing order preserved), scalar fields are overwritten
// when the partial carries a value.
func (p *PreferenceRecord) Merge(partial PreferenceRecord) {
	p.Colors = unionStrings(p.Colors, partial.Colors)
	p.Materials = unionStrings(p.Materials, partial.Materials)
	if partial.BudgetTier != BudgetUnset {
		p.BudgetTier = partial.BudgetTier
	}
	if partial.Language != "" {
		p.Language = partial.Language
	}
	if !partial.LastInteraction.IsZero() {
		p.LastInteraction = partial.LastInteraction
	}
}

// TrackViewed prepends the given SKUs to the viewed trail, skipping
// duplicates and trimming to MaxViewedSKUs.
func (p *PreferenceRecord) TrackViewed(skus []string) {
	for _, sku := range skus {
		if sku == "" || containsString(p.ViewedSKUs, sku) {
			continue
		}
		p.ViewedSKUs = append([]string{sku}, p.ViewedSKUs...)
	}
	if len(p.ViewedSKUs) > MaxViewedSKUs {
		p.ViewedSKUs = p.ViewedSKUs[:MaxViewedSKUs]
	}
}

func unionStrings(existing, incoming []string) []string {
	out := existing
	for _, v := range incoming {
		if v == "" || containsString(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
