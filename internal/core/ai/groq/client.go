package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"go.uber.org/zap"

	"github.com/go-resty/resty/v2"
)

// Client talks to the Groq chat-completions API. A missing key is not an
// error at construction time; calls report it so callers can fall back to
// their deterministic estimates.
type Client struct {
	apiKey string
	client *resty.Client
	cfg    config.GroqConfig
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat-completions request body.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Choice wraps one completion alternative.
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo reports token consumption.
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the chat-completions response body.
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// NewClient creates a Groq client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.Groq.APIKey,
		client: resty.New().
			SetBaseURL(cfg.Groq.BaseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(cfg.Groq.Timeout),
		cfg: cfg.Groq,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Model returns the default completion model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// PlanModel returns the cheaper model used for meal-plan generation.
func (c *Client) PlanModel() string {
	return c.cfg.PlanModel
}

// Complete sends a system prompt plus a single user turn to the given model and
// returns the completion text.
func (c *Client) Complete(ctx context.Context, model, system, prompt string, maxTokens int, temperature float64) (string, error) {
	if !c.Enabled() {
		return "", common.ErrSourceDisabled
	}
	if model == "" {
		model = c.cfg.Model
	}

	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	req := Request{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", model),
		)
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", model),
		)
		return "", fmt.Errorf("AI service error (status %d)", resp.StatusCode())
	}

	var response Response
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		common.LogError("Failed to parse AI service response",
			zap.Error(err),
			zap.String("model", model),
		)
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		common.LogError("Empty content in AI service response",
			zap.String("model", model),
		)
		return "", fmt.Errorf("empty content in response")
	}

	common.LogDebug("AI completion succeeded",
		zap.String("model", model),
		zap.Int("content_length", len(response.Choices[0].Message.Content)),
		zap.Int("total_tokens", response.Usage.TotalTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	return response.Choices[0].Message.Content, nil
}
