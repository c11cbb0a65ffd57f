package model

import "time"

// Buckets users may upload into.
var Buckets = map[string]bool{
	"recordings":      true,
	"legal-templates": true,
	"ad-creatives":    true,
}

const (
	MaxUploadBytes = 100 << 20
	SignedURLTTL   = time.Hour
)

type Upload struct {
	Bucket      string    `json:"bucket"`
	Key         string    `json:"key"`
	Size        int       `json:"size"`
	ContentType string    `json:"content_type"`
	SignedURL   string    `json:"signed_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
