package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zetalabs/convo/internal/domain"
)

// HTTPRecordStore implements RecordStore against the admin backend.
type HTTPRecordStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPRecordStore creates a record store against the admin backend.
func NewHTTPRecordStore(baseURL, apiKey string) *HTTPRecordStore {
	return &HTTPRecordStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateRecord implements RecordStore.
func (s *HTTPRecordStore) CreateRecord(ctx context.Context, e *domain.Escalation) error {
	return s.send(ctx, http.MethodPost, "/api/escalations", e)
}

// UpdateRecord implements RecordStore.
func (s *HTTPRecordStore) UpdateRecord(ctx context.Context, e *domain.Escalation) error {
	return s.send(ctx, http.MethodPut, "/api/escalations/"+e.ID, e)
}

// GetRecord implements RecordStore.
func (s *HTTPRecordStore) GetRecord(ctx context.Context, id string) (*domain.Escalation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/escalations/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build escalation request: %w", err)
	}
	s.auth(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get escalation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get escalation: status %d", resp.StatusCode)
	}

	var e domain.Escalation
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode escalation: %w", err)
	}
	return &e, nil
}

func (s *HTTPRecordStore) send(ctx context.Context, method, path string, e *domain.Escalation) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode escalation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build escalation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s escalation: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s escalation: status %d", method, resp.StatusCode)
	}
	return nil
}

func (s *HTTPRecordStore) auth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}
