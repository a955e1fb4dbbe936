// Package ai wraps the OpenAI-compatible model endpoint used for free-form
// consultation replies and product image analysis.
package ai

import (
	"net/http"
	"strings"
	"time"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultModel       = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o-mini"

	maxRetries     = 2
	requestTimeout = 60 * time.Second
)

// Config holds the model endpoint settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
}

// Client calls the chat completion endpoint for consultation replies and
// vision-based product descriptions.
type Client struct {
	api         openaigo.Client
	model       string
	visionModel string
}

// NewClient creates a Client. Empty config fields fall back to the
// public endpoint and the cost-effective default models.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	visionModel := strings.TrimSpace(cfg.VisionModel)
	if visionModel == "" {
		visionModel = defaultVisionModel
	}

	api := openaigo.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: requestTimeout}),
		option.WithMaxRetries(maxRetries),
		option.WithRequestTimeout(requestTimeout),
	)

	return &Client{api: api, model: model, visionModel: visionModel}
}
