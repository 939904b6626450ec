// Package genai is the boundary to the text generation backend. The rest
// of the service treats the backend as an untrusted oracle: it gets a
// prompt string in and free text out, and every caller does its own strict
// parsing of that text.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "screener/internal/common/errors"
	"screener/internal/common/logger"
	"screener/internal/common/metrics"
	"screener/internal/common/observability"
)

// Generator is the single operation the workflow needs from the backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client calls an Ollama-compatible /api/generate endpoint. One request
// per call, no retries; the caller decides whether a failure is fatal to
// its transition or degrades a single item.
type Client struct {
	config *Config
	client *http.Client
	obs    *observability.Observability
	logger logger.Logger
}

func NewClient(config *Config, obs *observability.Observability, log logger.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			// No client-level timeout; the per-call context bounds the request.
		},
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one prompt and returns the raw generated text. Transport
// failures and non-200 statuses become GENERATION_UNAVAILABLE; a context
// deadline becomes GENERATION_TIMEOUT.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, _ := json.Marshal(generateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/generate", bytes.NewBuffer(body))
	if err != nil {
		return "", apperrors.NewGenerationUnavailableError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.record(ctx, "timeout", elapsed)
			return "", apperrors.NewGenerationTimeoutError()
		}
		c.record(ctx, "error", elapsed)
		return "", apperrors.NewGenerationUnavailableError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.record(ctx, "error", elapsed)
		return "", apperrors.NewGenerationUnavailableError(fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.record(ctx, "error", elapsed)
		return "", apperrors.NewGenerationUnavailableError(err)
	}

	var apiResponse generateResponse
	if err := json.Unmarshal(raw, &apiResponse); err != nil {
		c.record(ctx, "error", elapsed)
		return "", apperrors.NewGenerationUnavailableError(fmt.Errorf("decode error: %v", err))
	}

	c.record(ctx, "ok", elapsed)
	c.logger.Debug("generation call completed", map[string]interface{}{
		"durationMs": elapsed.Milliseconds(),
		"replyBytes": len(apiResponse.Response),
	})

	return apiResponse.Response, nil
}

func (c *Client) record(ctx context.Context, outcome string, elapsed time.Duration) {
	metrics.GenerationCalls.WithLabelValues(outcome).Inc()
	metrics.GenerationDuration.Observe(elapsed.Seconds())
	if c.obs != nil {
		c.obs.RecordGenerationCall(ctx, outcome)
		c.obs.RecordGenerationDuration(ctx, elapsed, outcome)
	}
}
