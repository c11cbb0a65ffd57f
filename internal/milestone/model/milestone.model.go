package model

import "time"

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusAtRisk     = "at_risk"
	StatusCompleted  = "completed"

	DateLayout = "2006-01-02"
)

type Milestone struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	DueDate     *string    `json:"due_date"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CreateMilestoneRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"omitempty,oneof=product revenue fundraising team operations"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=planned in_progress at_risk completed"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
}

type UpdateMilestoneRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Category    *string `json:"category" validate:"omitempty,oneof=product revenue fundraising team operations"`
	DueDate     *string `json:"due_date"` // "" clears the date; checked by the service
	Status      *string `json:"status" validate:"omitempty,oneof=planned in_progress at_risk completed"`
	Progress    *int    `json:"progress" validate:"omitempty,min=0,max=100"`
}

type BoardNotesRequest struct {
	Audience string `json:"audience" validate:"omitempty,oneof=board investors team"`
	Focus    string `json:"focus" validate:"max=500"`
}

type BoardNotes struct {
	Notes      string `json:"notes"`
	Model      string `json:"model"`
	Milestones int    `json:"milestones"`
}

// SetProgress moves the milestone to status and progress, keeping the two
// consistent: completed means 100% with a completion time, and leaving
// completed clears it.
func (m *Milestone) SetProgress(status string, progress int, now time.Time) {
	switch {
	case status == StatusCompleted:
		m.Status = StatusCompleted
		m.Progress = 100
		if m.CompletedAt == nil {
			m.CompletedAt = &now
		}
	default:
		m.Status = status
		m.Progress = min(max(progress, 0), 100)
		m.CompletedAt = nil
	}
}

// Overdue reports whether an unfinished milestone is past its due date.
func (m *Milestone) Overdue(now time.Time) bool {
	if m.DueDate == nil || m.Status == StatusCompleted {
		return false
	}
	due, err := time.Parse(DateLayout, *m.DueDate)
	if err != nil {
		return false
	}
	return now.After(due.Add(24 * time.Hour))
}
