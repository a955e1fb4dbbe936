package tenantcfg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Provider fetches the authoritative tenant configuration.
type Provider interface {
	Fetch(ctx context.Context, tenantID string) (*Config, error)
}

// HTTPProvider fetches tenant configuration from the admin backend.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPProvider creates a provider against the admin backend base URL.
func NewHTTPProvider(baseURL, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, tenantID string) (*Config, error) {
	url := fmt.Sprintf("%s/cities/%s/bot-config", p.baseURL, tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build config request: %w", err)
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tenant config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tenant config: status %d", resp.StatusCode)
	}

	var cfg Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode tenant config: %w", err)
	}
	return &cfg, nil
}
