package model

import "time"

const (
	StatusOpen     = "open"
	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusClosed   = "closed"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var transitions = map[string][]string{
	StatusOpen:     {StatusPending, StatusResolved, StatusClosed},
	StatusPending:  {StatusOpen, StatusResolved, StatusClosed},
	StatusResolved: {StatusOpen, StatusClosed},
	StatusClosed:   {StatusOpen},
}

// CanTransition reports whether a ticket may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Ticket struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	AssigneeID  *string   `json:"assignee_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Involves reports whether userID owns or is assigned the ticket.
func (t *Ticket) Involves(userID string) bool {
	return t.UserID == userID || (t.AssigneeID != nil && *t.AssigneeID == userID)
}

type Comment struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTicketRequest struct {
	Subject     string   `json:"subject" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=10000"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	Category    string   `json:"category" validate:"max=50"`
	Tags        []string `json:"tags" validate:"max=10,dive,required,max=30"`
}

type UpdateTicketRequest struct {
	Status   *string `json:"status" validate:"omitempty,oneof=open pending resolved closed"`
	Priority *string `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	// An empty assignee_id or assignee_email unassigns. AssigneeEmail takes
	// precedence; the service checks both formats.
	AssigneeID    *string `json:"assignee_id"`
	AssigneeEmail *string `json:"assignee_email"`
}

type CommentRequest struct {
	TicketID string `json:"ticket_id" validate:"required"`
	Body     string `json:"body" validate:"required,max=5000"`
}
