package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

const defaultSearchLimit = 5

// HTTPCatalog implements Searcher against the admin backend's product API.
type HTTPCatalog struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPCatalog creates a catalog client against the admin backend.
func NewHTTPCatalog(baseURL, apiKey string) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type searchResponse struct {
	Products []domain.Product `json:"products"`
}

// Search implements Searcher.
func (c *HTTPCatalog) Search(ctx context.Context, q Query) ([]domain.Product, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("query", buildSearchText(q))
	params.Set("city_id", q.TenantID)
	params.Set("limit", strconv.Itoa(limit))
	if q.BudgetTier != domain.BudgetUnset {
		params.Set("budget", string(q.BudgetTier))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/api/products/search?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// LookupBySKU implements Searcher.
func (c *HTTPCatalog) LookupBySKU(ctx context.Context, tenantID, sku string) (*domain.Product, error) {
	params := url.Values{}
	params.Set("city_id", tenantID)

	var p domain.Product
	err := c.getJSON(ctx, "/api/products/"+url.PathEscape(sku)+"?"+params.Encode(), &p)
	if err != nil {
		if errStatus(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Recommend implements Searcher.
func (c *HTTPCatalog) Recommend(ctx context.Context, tenantID string, seedSKUs []string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	params := url.Values{}
	params.Set("city_id", tenantID)
	params.Set("limit", strconv.Itoa(limit))
	if len(seedSKUs) > 0 {
		params.Set("seed", strings.Join(seedSKUs, ","))
	}

	var resp searchResponse
	if err := c.getJSON(ctx, "/api/products/recommendations?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// buildSearchText folds the soft hints into the query text the way a user
// would phrase them, so the backend's full-text ranking picks them up.
func buildSearchText(q Query) string {
	parts := []string{strings.TrimSpace(q.Text)}
	if q.Color != "" && !strings.Contains(strings.ToLower(q.Text), q.Color) {
		parts = append(parts, q.Color)
	}
	if q.Material != "" && !strings.Contains(strings.ToLower(q.Text), q.Material) {
		parts = append(parts, q.Material)
	}
	return strings.Join(parts, " ")
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("catalog backend: status %d", e.status)
}

func errStatus(err error) int {
	if se, ok := err.(*statusError); ok {
		return se.status
	}
	return 0
}

func (c *HTTPCatalog) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
