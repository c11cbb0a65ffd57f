package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seeksy/internal/milestone/model"
	"seeksy/internal/milestone/repository"
	"seeksy/pkg/ai"
	"seeksy/pkg/apperr"
)

// Completer is the slice of the AI gateway the board notes need.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
	Model() string
}

type MilestoneService struct {
	Repo *repository.MilestoneRepository
	AI   Completer
	Now  func() time.Time
}

func NewMilestoneService(repo *repository.MilestoneRepository, completer Completer) *MilestoneService {
	return &MilestoneService{Repo: repo, AI: completer, Now: time.Now}
}

func (s *MilestoneService) Create(ctx context.Context, userID string, req model.CreateMilestoneRequest) (*model.Milestone, error) {
	m := &model.Milestone{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
	if m.Category == "" {
		m.Category = "product"
	}
	if req.DueDate != "" {
		due := req.DueDate
		m.DueDate = &due
	}
	status := req.Status
	if status == "" {
		status = model.StatusPlanned
	}
	m.SetProgress(status, req.Progress, s.Now())

	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MilestoneService) List(ctx context.Context, userID string) ([]model.Milestone, error) {
	return s.Repo.List(ctx, userID)
}

func (s *MilestoneService) Get(ctx context.Context, id, userID string) (*model.Milestone, error) {
	return s.Repo.Get(ctx, id, userID)
}

func (s *MilestoneService) Update(ctx context.Context, id, userID string, req model.UpdateMilestoneRequest) (*model.Milestone, error) {
	m, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Category != nil {
		m.Category = *req.Category
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			m.DueDate = nil
		} else {
			if _, err := time.Parse(model.DateLayout, *req.DueDate); err != nil {
				return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", apperr.ErrInvalid)
			}
			due := *req.DueDate
			m.DueDate = &due
		}
	}

	status, progress := m.Status, m.Progress
	if req.Status != nil {
		status = *req.Status
	}
	if req.Progress != nil {
		progress = *req.Progress
	}
	m.SetProgress(status, progress, s.Now())

	if err := s.Repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MilestoneService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("milestone not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}

const boardNotesPrompt = `You write concise board meeting notes for an early-stage media company.
Summarise progress against the milestones provided. Group them into
"Completed", "On track" and "Needs attention", call out overdue items,
and close with two or three suggested discussion points. Use plain
markdown headings and bullet points. Do not invent milestones.`

// BoardNotes asks the AI gateway to summarise the user's milestones.
func (s *MilestoneService) BoardNotes(ctx context.Context, userID string, req model.BoardNotesRequest) (*model.BoardNotes, error) {
	milestones, err := s.Repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return nil, fmt.Errorf("%w: add milestones before generating board notes", apperr.ErrInvalid)
	}

	audience := req.Audience
	if audience == "" {
		audience = "board"
	}
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: boardNotesPrompt},
		{Role: ai.RoleUser, Content: describeMilestones(milestones, audience, req.Focus, s.Now())},
	}
	notes, err := s.AI.Complete(ctx, messages, ai.Options{Temperature: 0.4, MaxTokens: 1200})
	if err != nil {
		return nil, fmt.Errorf("generate board notes: %w", err)
	}
	return &model.BoardNotes{Notes: notes, Model: s.AI.Model(), Milestones: len(milestones)}, nil
}

func describeMilestones(milestones []model.Milestone, audience, focus string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Audience: %s\nToday: %s\n", audience, now.Format(model.DateLayout))
	if focus != "" {
		fmt.Fprintf(&b, "Focus: %s\n", focus)
	}
	b.WriteString("\nMilestones:\n")
	for _, m := range milestones {
		due := "no due date"
		if m.DueDate != nil {
			due = "due " + *m.DueDate
		}
		fmt.Fprintf(&b, "- [%s] %s (%s, %d%%, %s)", m.Category, m.Title, m.Status, m.Progress, due)
		if m.Overdue(now) {
			b.WriteString(" OVERDUE")
		}
		if m.Description != "" {
			fmt.Fprintf(&b, ": %s", m.Description)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
