package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/arcline/ideascope/internal/domain"
)

// ChatClient calls one OpenAI-compatible chat completions endpoint.
// Perplexity, Groq, and similar vendors all speak this protocol; only
// the base URL and model differ.
type ChatClient struct {
	client      *openai.Client
	provider    string
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// ChatConfig holds one chat provider's settings.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Provider    string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewChatClient creates a chat completions client for one provider.
func NewChatClient(cfg *ChatConfig) *ChatClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &ChatClient{
		client:      openai.NewClientWithConfig(clientCfg),
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// ID returns the provider identifier.
func (c *ChatClient) ID() string { return c.provider }

// Complete sends the messages and returns the raw text of the first
// choice. Transient overloads surface as domain.ErrProviderOverloaded so
// the orchestrator can retry with backoff.
func (c *ChatClient) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyChatError(c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices: %w", c.provider, domain.ErrMalformedResponse)
	}

	c.logger.Debug("Chat completion succeeded",
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// classifyChatError maps transport failures onto the orchestrator's
// error taxonomy. Rate limits and 5xx are transient; everything else is
// a plain provider failure that skips straight to the next provider.
func classifyChatError(provider string, err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	if isTransientStatus(status) {
		return fmt.Errorf("provider %s returned %d: %w", provider, status, domain.ErrProviderOverloaded)
	}

	return fmt.Errorf("provider %s call failed: %w", provider, err)
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
