// Package render submits JSON video timelines to a Shotstack-style cloud
// render API and reads back render status.
package render

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"seeksy/pkg/apperr"
	"seeksy/pkg/upstream"
)

// Render states reported by the service.
const (
	StatusQueued    = "queued"
	StatusFetching  = "fetching"
	StatusRendering = "rendering"
	StatusSaving    = "saving"
	StatusDone      = "done"
	StatusFailed    = "failed"
)

type Edit struct {
	Timeline Timeline `json:"timeline"`
	Output   Output   `json:"output"`
	Callback string   `json:"callback,omitempty"`
}

type Timeline struct {
	Background string  `json:"background,omitempty"`
	Tracks     []Track `json:"tracks"`
}

// Track order matters: the first track is drawn on top.
type Track struct {
	Clips []Clip `json:"clips"`
}

type Clip struct {
	Asset    Asset   `json:"asset"`
	Start    float64 `json:"start"`
	Length   float64 `json:"length"`
	Position string  `json:"position,omitempty"`
}

type Asset struct {
	Type   string  `json:"type"`
	Src    string  `json:"src,omitempty"`
	Trim   float64 `json:"trim,omitempty"`
	Volume float64 `json:"volume,omitempty"`
	Text   string  `json:"text,omitempty"`
	Style  string  `json:"style,omitempty"`
	Size   string  `json:"size,omitempty"`
}

type Output struct {
	Format      string `json:"format"`
	Resolution  string `json:"resolution,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// Status is the state of one render.
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	URL    string `json:"url"`
	Error  string `json:"error"`
}

// Callback is the webhook body posted when a render finishes.
type Callback struct {
	Type      string `json:"type"`
	Action    string `json:"action"`
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Status    string `json:"status"`
	URL       string `json:"url"`
	Error     string `json:"error"`
	Completed string `json:"completed"`
}

type envelope[T any] struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Response T      `json:"response"`
}

type Client struct {
	api *upstream.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	api := upstream.New("render", baseURL, "", timeout, 2)
	api.Header.Set("x-api-key", apiKey)
	return &Client{api: api}
}

// Submit queues edit and returns the render ID.
func (c *Client) Submit(ctx context.Context, edit Edit) (string, error) {
	var resp envelope[struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}]
	if err := c.api.JSON(ctx, http.MethodPost, "/render", edit, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Response.ID == "" {
		return "", fmt.Errorf("%w: render submit rejected: %s", apperr.ErrUpstream, resp.Message)
	}
	return resp.Response.ID, nil
}

// Status fetches the state of a render.
func (c *Client) Status(ctx context.Context, id string) (*Status, error) {
	var resp envelope[Status]
	if err := c.api.JSON(ctx, http.MethodGet, "/render/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: render status: %s", apperr.ErrUpstream, resp.Message)
	}
	return &resp.Response, nil
}
