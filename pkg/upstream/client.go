// Package upstream is the shared HTTP plumbing for the third-party APIs the
// platform delegates to. It marshals JSON, sets auth headers, retries rate
// limits and server errors with exponential backoff, and turns non-2xx
// responses into *Error values that unwrap to apperr.ErrUpstream.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

const (
	defaultInitialDelay = 1 * time.Second
	maxErrorBody        = 512
)

// Client talks to one API rooted at BaseURL.
type Client struct {
	Name         string
	BaseURL      string
	Header       http.Header
	HTTP         *http.Client
	MaxAttempts  int
	InitialDelay time.Duration
}

// New returns a client with a bearer token and a request timeout.
func New(name, baseURL, apiKey string, timeout time.Duration, attempts int) *Client {
	h := http.Header{}
	if apiKey != "" {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return &Client{
		Name:         name,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		Header:       h,
		HTTP:         &http.Client{Timeout: timeout},
		MaxAttempts:  attempts,
		InitialDelay: defaultInitialDelay,
	}
}

// Error is a non-2xx answer from an upstream API.
type Error struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return apperr.ErrUpstream }

// JSON sends in as a JSON body (nil for none) and decodes the response
// into out (nil to discard).
func (c *Client) JSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	contentType := ""
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.Name, err)
		}
		contentType = "application/json"
	}
	return c.Do(ctx, method, path, contentType, body, out)
}

// Do sends a raw body. The body is buffered so it can be replayed on retry.
func (c *Client) Do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	attempts := max(c.MaxAttempts, 1)
	delay := c.InitialDelay
	if delay <= 0 {
		delay = defaultInitialDelay
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// 1x, 2x, 4x ...
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * delay
			logger.Sugar.Warnf("%s request failed, retrying in %s: %v", c.Name, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.once(ctx, method, path, contentType, body, out)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%s: max attempts (%d) exceeded: %w", c.Name, attempts, lastErr)
}

func (c *Client) once(ctx context.Context, method, path, contentType string, body []byte, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("create %s request: %w", c.Name, err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return true, fmt.Errorf("%s HTTP request failed: %w", c.Name, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return true, fmt.Errorf("read %s response: %w", c.Name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := &Error{Service: c.Name, StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, upErr
	}

	if out == nil || len(respBody) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", c.Name, errors.Join(apperr.ErrUpstream, err))
	}
	return false, nil
}

// errorMessage pulls a human message out of the common error envelopes:
// {"error":{"message":..}}, {"error":".."}, {"message":..}.
func errorMessage(body []byte) string {
	var env struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &env) == nil {
		var nested struct {
			Message string `json:"message"`
		}
		var flat string
		switch {
		case len(env.Error) > 0 && json.Unmarshal(env.Error, &nested) == nil && nested.Message != "":
			return nested.Message
		case len(env.Error) > 0 && json.Unmarshal(env.Error, &flat) == nil && flat != "":
			return flat
		case env.Message != "":
			return env.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}
