package model

import "time"

const (
	StatusDraft   = "draft"
	StatusSending = "sending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

type Campaign struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Subject     string     `json:"subject"`
	FromName    string     `json:"from_name"`
	HTMLBody    string     `json:"html_body"`
	Recipients  []string   `json:"recipients"`
	Status      string     `json:"status"`
	SentCount   int        `json:"sent_count"`
	FailedCount int        `json:"failed_count"`
	SentAt      *time.Time `json:"sent_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CampaignRequest struct {
	Name       string   `json:"name" validate:"required,max=200"`
	Subject    string   `json:"subject" validate:"required,max=300"`
	FromName   string   `json:"from_name" validate:"max=100"`
	HTMLBody   string   `json:"html_body" validate:"required"`
	Recipients []string `json:"recipients" validate:"max=5000,dive,email"`
}

// SendResult summarizes one send run.
type SendResult struct {
	CampaignID string   `json:"campaign_id"`
	Status     string   `json:"status"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}
