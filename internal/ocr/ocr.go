// Package ocr extracts text from product images via the OCR sidecar.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Extractor pulls printed text out of an image. It is the fast path for
// photos that carry a visible article label; an empty result just means
// the next resolution stage takes over.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}

// HTTPExtractor implements Extractor against the OCR sidecar service.
type HTTPExtractor struct {
	baseURL string
	client  *http.Client
}

// NewHTTPExtractor creates an extractor against the sidecar base URL.
func NewHTTPExtractor(baseURL string) *HTTPExtractor {
	return &HTTPExtractor{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

type ocrRequest struct {
	ImageBase64 string `json:"image_base64"`
	Languages   string `json:"languages"`
}

type ocrResponse struct {
	Text string `json:"text"`
}

// ExtractText implements Extractor.
func (e *HTTPExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	body, err := json.Marshal(ocrRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(image),
		Languages:   "rus+eng",
	})
	if err != nil {
		return "", fmt.Errorf("encode ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/ocr", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service: status %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	return strings.TrimSpace(out.Text), nil
}
