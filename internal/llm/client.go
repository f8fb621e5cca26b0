package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	"github.com/Belphemur/EpisodeRelay/internal/apperrors"
)

const (
	defaultHTTPTimeout    = 15 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 5 * time.Second
	defaultMaxRetries     = 2
)

// ErrNotConfigured is returned when no API key or model is configured.
var ErrNotConfigured = errors.New("llm: not configured")

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// NewClient constructs a model client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	client := &Client{
		cfg: Config{
			APIKey:     strings.TrimSpace(cfg.APIKey),
			BaseURL:    strings.TrimSpace(cfg.BaseURL),
			Model:      strings.TrimSpace(cfg.Model),
			Timeout:    timeout,
			MaxRetries: cfg.MaxRetries,
		},
		httpClient:     &http.Client{Timeout: timeout},
		retryBaseDelay: defaultRetryBaseDelay,
		retryMaxDelay:  defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return client
}

// Configured reports whether the client has enough settings to issue requests.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != "" && c.cfg.Model != ""
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		// Legacy completion-style responses.
		Text string `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a system and user prompt and returns the generated text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}

	payload := chatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: 0,
	}
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		payload.Messages = append(payload.Messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	payload.Messages = append(payload.Messages, chatMessage{Role: "user", Content: userPrompt})

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("llm complete: encode body: %w", err)
	}

	retryPolicy := retrypolicy.NewBuilder[string]().
		HandleIf(func(_ string, err error) bool { return apperrors.IsRetryable(err) }).
		WithBackoff(c.retryBaseDelay, c.retryMaxDelay).
		WithMaxRetries(c.cfg.MaxRetries).
		ReturnLastFailure().
		Build()

	return failsafe.With(retryPolicy).WithContext(ctx).Get(func() (string, error) {
		return c.completeOnce(ctx, encoded)
	})
}

func (c *Client) completeOnce(ctx context.Context, encoded []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("llm request: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewTransportError("llm request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewTransportError("llm read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", apperrors.NewStatusError("llm request", resp.StatusCode)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", apperrors.NewParseError("llm response", summarizePayloadSnippet(string(body)), err)
	}
	if completion.Error != nil {
		return "", apperrors.NewGenerationError("llm request", strings.TrimSpace(completion.Error.Message))
	}
	for _, choice := range completion.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
		if text := strings.TrimSpace(choice.Text); text != "" {
			return text, nil
		}
	}
	return "", apperrors.NewGenerationError("llm request", "empty content")
}
