package model

import (
	"time"

	"seeksy/pkg/captions"
)

const (
	FormatSRT = "srt"
	FormatVTT = "vtt"
)

type Transcript struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	Title     string             `json:"title"`
	AudioURL  string             `json:"audio_url"`
	Language  string             `json:"language"`
	Text      string             `json:"text"`
	Duration  float64            `json:"duration"`
	Words     []captions.Word    `json:"words"`
	Segments  []captions.Segment `json:"segments"`
	CreatedAt time.Time          `json:"created_at"`
}

// TranscribeRequest optionally overrides the caption segmentation limits.
// Zero values keep the defaults.
type TranscribeRequest struct {
	AudioURL    string  `json:"audio_url" validate:"required,url,max=2048"`
	Language    string  `json:"language" validate:"omitempty,min=2,max=5"`
	Title       string  `json:"title" validate:"max=300"`
	MaxWords    int     `json:"max_words" validate:"omitempty,min=1,max=30"`
	MaxDuration float64 `json:"max_duration" validate:"omitempty,gt=0,lte=15"`
	MaxChars    int     `json:"max_chars" validate:"omitempty,min=10,max=120"`
	PauseGap    float64 `json:"pause_gap" validate:"omitempty,gt=0,lte=5"`
}

func (r TranscribeRequest) Options() captions.Options {
	return captions.Options{
		MaxWords:    r.MaxWords,
		MaxDuration: r.MaxDuration,
		MaxChars:    r.MaxChars,
		PauseGap:    r.PauseGap,
	}
}

// Summary is the TRANSCRIPT_READY payload.
type Summary struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Segments int     `json:"segments"`
}
