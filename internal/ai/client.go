// Package ai talks to an OpenAI-compatible backend (Ollama, LiteLLM)
// to classify study entries, propose connections and blindspots, and
// rewrite raw notes.
package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "studymap/pkg/errors"
	"studymap/pkg/logger"
)

// Client sends chat completions to the configured backend.
type Client struct {
	client      *openai.Client
	baseURL     string
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewClient creates a client for the backend at baseURL. An empty apiKey
// is replaced with a dummy value, which plain Ollama accepts.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, temperature float64) *Client {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		client:      openai.NewClientWithConfig(config),
		baseURL:     baseURL,
		model:       model,
		temperature: float32(temperature),
		logger:      logger.Get(),
	}
}

// Generate sends a single-turn prompt and returns the raw completion
// text. One attempt only, no retries.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Error("AI request failed",
			zap.Error(err),
			zap.String("model", c.model),
		)
		return "", apperrors.NewBackendUnavailable(c.baseURL, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewBackendUnavailable(c.baseURL, fmt.Errorf("no choices in response"))
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("AI response generated",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(content)),
	)
	return content, nil
}
