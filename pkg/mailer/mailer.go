// Package mailer sends transactional email through a Resend-style API.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"seeksy/pkg/apperr"
	"seeksy/pkg/upstream"
)

type Message struct {
	// FromName is shown in front of the configured sender address when
	// From is empty.
	FromName string   `json:"-"`
	From     string   `json:"from"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
	Text     string   `json:"text,omitempty"`
	ReplyTo  string   `json:"reply_to,omitempty"`
}

type Client struct {
	api  *upstream.Client
	from string
}

// NewClient never retries: a timed-out send may still have been delivered.
func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	return &Client{
		api:  upstream.New("email", baseURL, apiKey, timeout, 1),
		from: from,
	}
}

// Send delivers msg and returns the provider's message ID. An empty From
// uses the configured sender.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From == "" {
		msg.From = c.from
		if msg.FromName != "" {
			addr := c.from
			if a, err := mail.ParseAddress(c.from); err == nil {
				addr = a.Address
			}
			msg.From = (&mail.Address{Name: msg.FromName, Address: addr}).String()
		}
	}
	if len(msg.To) == 0 || msg.Subject == "" {
		return "", fmt.Errorf("%w: email needs recipients and a subject", apperr.ErrInvalid)
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.api.JSON(ctx, http.MethodPost, "/emails", msg, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
