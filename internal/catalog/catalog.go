// Package catalog provides product search against the tenant's catalog
// backend.
package catalog

import (
	"context"

	"github.com/zetalabs/convo/internal/domain"
)

// Query describes one catalog search. Text is the user's phrasing; the
// remaining fields are soft ranking hints forwarded to the backend.
type Query struct {
	TenantID   string
	Text       string
	Color      string
	Material   string
	BudgetTier domain.BudgetTier
	Limit      int
}

// Searcher resolves queries against the product catalog.
type Searcher interface {
	// Search returns up to Limit products matching the query. An empty
	// result is not an error.
	Search(ctx context.Context, q Query) ([]domain.Product, error)

	// LookupBySKU returns the product with the exact SKU, or nil when the
	// catalog has no such article.
	LookupBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error)

	// Recommend returns products similar to the given SKUs, excluding the
	// SKUs themselves.
	Recommend(ctx context.Context, tenantID string, seedSKUs []string, limit int) ([]domain.Product, error)
}
