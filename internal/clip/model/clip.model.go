package model

import (
	"time"

	"seeksy/pkg/render"
)

// Clip states. The render service's fetching and saving phases are
// reported as rendering.
const (
	StatusQueued    = "queued"
	StatusRendering = "rendering"
	StatusDone      = "done"
	StatusFailed    = "failed"

	MaxLength          = 180.0
	DefaultAspectRatio = "16:9"
)

type Clip struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	SourceURL    string    `json:"source_url"`
	TranscriptID *string   `json:"transcript_id"`
	Start        float64   `json:"start"`
	Length       float64   `json:"length"`
	AspectRatio  string    `json:"aspect_ratio"`
	RenderID     string    `json:"render_id"`
	Status       string    `json:"status"`
	OutputURL    string    `json:"output_url"`
	Error        string    `json:"error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ClipRequest struct {
	SourceURL    string  `json:"source_url" validate:"required,url,max=2048"`
	Title        string  `json:"title" validate:"max=300"`
	Start        float64 `json:"start" validate:"gte=0"`
	Length       float64 `json:"length" validate:"gt=0,lte=180"`
	AspectRatio  string  `json:"aspect_ratio" validate:"omitempty,oneof=16:9 9:16 1:1 4:5"`
	TranscriptID string  `json:"transcript_id" validate:"omitempty,uuid"`
}

// StatusEvent is the RENDER_STATUS payload.
type StatusEvent struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	OutputURL string `json:"output_url,omitempty"`
	Error     string `json:"error,omitempty"`
}

// FromRender maps a render service state to a clip state.
func FromRender(status string) string {
	switch status {
	case render.StatusQueued:
		return StatusQueued
	case render.StatusDone:
		return StatusDone
	case render.StatusFailed:
		return StatusFailed
	default:
		return StatusRendering
	}
}
