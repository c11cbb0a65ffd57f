package model

import (
	"fmt"
	"time"
)

const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Item is one proposal line. Prices are integer cents.
type Item struct {
	Description    string `json:"description" validate:"required,max=500"`
	Quantity       int64  `json:"quantity" validate:"min=1,max=100000"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"min=0,max=100000000000"`
}

func (i Item) TotalCents() int64 {
	return i.Quantity * i.UnitPriceCents
}

type Proposal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ClientName  string     `json:"client_name"`
	ClientEmail string     `json:"client_email"`
	Title       string     `json:"title"`
	Items       []Item     `json:"items"`
	Notes       string     `json:"notes"`
	TotalCents  int64      `json:"total_cents"`
	Status      string     `json:"status"`
	ValidUntil  *string    `json:"valid_until"`
	SentAt      *time.Time `json:"sent_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ProposalRequest struct {
	ClientName  string `json:"client_name" validate:"required,max=200"`
	ClientEmail string `json:"client_email" validate:"required,email"`
	Title       string `json:"title" validate:"required,max=300"`
	Items       []Item `json:"items" validate:"max=200,dive"`
	Notes       string `json:"notes" validate:"max=10000"`
	ValidUntil  string `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

type SendRequest struct {
	Message string `json:"message" validate:"max=5000"`
}

// Total sums the line items.
func Total(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.TotalCents()
	}
	return total
}

// FormatCents renders cents as dollars with thousands separators.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := fmt.Sprintf("%d", cents/100)
	for i := len(dollars) - 3; i > 0; i -= 3 {
		dollars = dollars[:i] + "," + dollars[i:]
	}
	return fmt.Sprintf("%s$%s.%02d", sign, dollars, cents%100)
}
