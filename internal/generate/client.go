package generate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ClientConfig configures the model-backed generator.
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client generates checklists by calling an OpenAI-compatible chat endpoint.
type Client struct {
	client *openai.Client
	model  string
	hasKey bool
	now    func() time.Time
	logger *slog.Logger
}

// NewClient creates a Client. A missing API key is reported per request.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	httpClient := &http.Client{}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	config.HTTPClient = httpClient

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		hasKey: strings.TrimSpace(cfg.APIKey) != "",
		now:    time.Now,
		logger: logger,
	}
}

// Model returns the model identifier sent upstream.
func (c *Client) Model() string { return c.model }

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.hasKey }

// Generate validates the request, prompts the model and wraps its reply.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !c.hasKey {
		return nil, ErrMissingAPIKey
	}

	system, user := BuildPrompts(req)
	sdkReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(req.Config.Temperature),
		TopP:        float32(req.Config.TopP),
	}
	if req.Config.MaxTokens > 0 {
		sdkReq.MaxTokens = req.Config.MaxTokens
	}

	c.logger.Debug("requesting checklist", "model", c.model, "stage", req.ProjectStage)
	resp, err := c.client.CreateChatCompletion(ctx, sdkReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	raw := ""
	if len(resp.Choices) > 0 {
		raw = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	return NewResponse(raw, c.model, req.ProjectStage, c.now().UTC()), nil
}
