// Package ai calls an OpenAI-compatible chat completions gateway.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"seeksy/pkg/apperr"
	"seeksy/pkg/upstream"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxAttempts = 3
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options tune a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
	JSON        bool
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

type Client struct {
	api   *upstream.Client
	model string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		api:   upstream.New("AI gateway", baseURL, apiKey, timeout, maxAttempts),
		model: model,
	}
}

// Model is the model name sent with every request.
func (c *Client) Model() string { return c.model }

// Complete returns the assistant's reply to messages.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: no messages", apperr.ErrInvalid)
	}
	req := chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: opts.MaxTokens,
	}
	if opts.Temperature > 0 {
		t := opts.Temperature
		req.Temperature = &t
	}
	if opts.JSON {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp chatResponse
	if err := c.api.JSON(ctx, http.MethodPost, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: AI gateway returned no choices", apperr.ErrUpstream)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: AI gateway returned an empty message", apperr.ErrUpstream)
	}
	return content, nil
}

// DecodeJSON parses a model reply into v, tolerating markdown code fences
// and prose around the JSON object.
func DecodeJSON(reply string, v any) error {
	s := strings.TrimSpace(reply)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.IndexAny(s, "{[")
	end := strings.LastIndexAny(s, "}]")
	if start < 0 || end < start {
		return fmt.Errorf("%w: AI reply contains no JSON", apperr.ErrUpstream)
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: AI reply is not valid JSON: %v", apperr.ErrUpstream, err)
	}
	return nil
}
