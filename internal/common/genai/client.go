// internal/common/genai/client.go
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"proposal-workers/internal/common/config"
	"proposal-workers/internal/common/logger"
)

var (
	ErrUnavailable = errors.New("GENAI_UNAVAILABLE")
	ErrTimeout     = errors.New("GENAI_TIMEOUT")
	ErrGeneration  = errors.New("GENAI_GENERATION_FAILED")
)

// Generator is the text-generation collaborator contract. The scoring engine
// depends only on this interface and tolerates an unavailable or slow backend.
type Generator interface {
	// Generate returns the raw model text for the given prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Available reports whether the backend is configured at all.
	Available() bool
	// Model identifies the model for provenance (ai_model_used).
	Model() string
}

// Client calls the GenAI HTTP gateway.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	maxRetries int
	client     *http.Client
	logger     logger.Logger
}

func NewClient(cfg *config.Config, log logger.Logger) *Client {
	return &Client{
		baseURL:    cfg.APIs.GenAI.BaseURL,
		apiKey:     cfg.APIs.GenAI.APIKey,
		model:      cfg.APIs.GenAI.Model,
		maxTokens:  cfg.APIs.GenAI.MaxTokens,
		maxRetries: cfg.APIs.GenAI.MaxRetries,
		// No HTTP client timeout, deadlines come from the caller's context.
		client: &http.Client{},
		logger: log.WithFields(map[string]interface{}{"component": "genai"}),
	}
}

func (c *Client) Available() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable
	}

	requestBody := map[string]interface{}{
		"model":      c.model,
		"system":     systemPrompt,
		"prompt":     userPrompt,
		"max_tokens": c.maxTokens,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/ai/generate", bytes.NewBuffer(body))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrGeneration, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", ErrTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrGeneration, lastErr)
	}

	if resp == nil {
		return "", fmt.Errorf("%w: no successful response after retries", ErrGeneration)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("%w: decode error: %v", ErrGeneration, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		return "", fmt.Errorf("%w: empty response text", ErrGeneration)
	}

	c.logger.Debug("generation completed", map[string]interface{}{
		"chars": len(apiResponse.Text),
	})

	return apiResponse.Text, nil
}

// StripCodeFence removes a markdown code fence around a JSON payload. Models
// routinely wrap structured answers in ```json blocks.
func StripCodeFence(text string) string {
	if strings.Contains(text, "```json") {
		parts := strings.SplitN(text, "```json", 2)
		text = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(text, "```") {
		parts := strings.SplitN(text, "```", 3)
		if len(parts) >= 2 {
			text = parts[1]
		}
	}
	return strings.TrimSpace(text)
}
