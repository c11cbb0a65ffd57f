// Package storage uploads objects to Supabase Storage buckets and signs
// download URLs.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seeksy/pkg/upstream"
)

type Client struct {
	api     *upstream.Client
	baseURL string
}

func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	api := upstream.New("storage", baseURL, serviceKey, timeout, 2)
	api.Header.Set("apikey", serviceKey)
	api.Header.Set("x-upsert", "true")
	return &Client{api: api, baseURL: strings.TrimRight(baseURL, "/")}
}

func objectPath(bucket, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(parts, "/")
}

// Upload stores data at bucket/key, overwriting any existing object.
func (c *Client) Upload(ctx context.Context, bucket, key, contentType string, data []byte) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.api.Do(ctx, http.MethodPost, "/object/"+objectPath(bucket, key), contentType, data, nil)
}

// SignedURL returns a time-limited download URL for bucket/key.
func (c *Client) SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error) {
	var resp struct {
		SignedURL string `json:"signedURL"`
	}
	body := map[string]int{"expiresIn": int(expires.Seconds())}
	if err := c.api.JSON(ctx, http.MethodPost, "/object/sign/"+objectPath(bucket, key), body, &resp); err != nil {
		return "", err
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("storage returned no signed URL for %s/%s", bucket, key)
	}
	return c.baseURL + resp.SignedURL, nil
}
