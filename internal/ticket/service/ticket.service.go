package service

import (
	"context"
	"errors"
	"fmt"

	"seeksy/internal/ticket/model"
	"seeksy/internal/ticket/repository"
	"seeksy/pkg/apperr"
	"seeksy/socket"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Notifier pushes realtime events to a user's open sockets.
type Notifier interface {
	Notify(userID, eventType string, payload any)
}

type TicketService struct {
	Repo *repository.TicketRepository
	Hub  Notifier
}

func NewTicketService(repo *repository.TicketRepository, hub Notifier) *TicketService {
	return &TicketService{Repo: repo, Hub: hub}
}

func (s *TicketService) Create(ctx context.Context, userID string, req model.CreateTicketRequest) (*model.Ticket, error) {
	t := &model.Ticket{
		UserID:      userID,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      model.StatusOpen,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNormal
	}
	if t.Category == "" {
		t.Category = "general"
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TicketService) List(ctx context.Context, userID, status string) ([]model.Ticket, error) {
	switch status {
	case "", model.StatusOpen, model.StatusPending, model.StatusResolved, model.StatusClosed:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, status)
	}
	return s.Repo.ListForUser(ctx, userID, status)
}

// Get returns the ticket if userID owns it or is assigned to it.
func (s *TicketService) Get(ctx context.Context, id, userID string) (*model.Ticket, error) {
	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Involves(userID) {
		return nil, fmt.Errorf("%w: not your ticket", apperr.ErrForbidden)
	}
	return t, nil
}

func (s *TicketService) Update(ctx context.Context, id, userID string, req model.UpdateTicketRequest) (*model.Ticket, error) {
	t, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && *req.Status != t.Status {
		if !model.CanTransition(t.Status, *req.Status) {
			return nil, fmt.Errorf("%w: cannot move ticket from %s to %s", apperr.ErrConflict, t.Status, *req.Status)
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssigneeID != nil || req.AssigneeEmail != nil {
		if t.UserID != userID {
			return nil, fmt.Errorf("%w: only the ticket owner can reassign", apperr.ErrForbidden)
		}
		assignee, err := s.resolveAssignee(ctx, req)
		if err != nil {
			return nil, err
		}
		t.AssigneeID = assignee
	}

	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.notifyOthers(t, userID, socket.TicketUpdateType, t)
	return t, nil
}

// resolveAssignee returns the new assignee, nil to unassign. An email is
// looked up among the project's auth users.
func (s *TicketService) resolveAssignee(ctx context.Context, req model.UpdateTicketRequest) (*string, error) {
	if req.AssigneeEmail != nil && *req.AssigneeEmail != "" {
		if err := validate.Var(*req.AssigneeEmail, "email"); err != nil {
			return nil, fmt.Errorf("%w: assignee_email is not an email address", apperr.ErrInvalid)
		}
		id, err := s.Repo.UserIDByEmail(ctx, *req.AssigneeEmail)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with email %s", apperr.ErrInvalid, *req.AssigneeEmail)
		}
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	if req.AssigneeID == nil || *req.AssigneeID == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(*req.AssigneeID); err != nil {
		return nil, fmt.Errorf("%w: assignee_id is not a UUID", apperr.ErrInvalid)
	}
	assignee := *req.AssigneeID
	return &assignee, nil
}

func (s *TicketService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ticket not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}

func (s *TicketService) AddComment(ctx context.Context, userID string, req model.CommentRequest) (*model.Comment, error) {
	t, err := s.Get(ctx, req.TicketID, userID)
	if err != nil {
		return nil, err
	}
	c := &model.Comment{TicketID: t.ID, UserID: userID, Body: req.Body}
	if err := s.Repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	s.notifyOthers(t, userID, socket.TicketCommentType, c)
	return c, nil
}

func (s *TicketService) ListComments(ctx context.Context, ticketID, userID string) ([]model.Comment, error) {
	if _, err := s.Get(ctx, ticketID, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListComments(ctx, ticketID)
}

func (s *TicketService) DeleteComment(ctx context.Context, commentID, userID string) error {
	_, err := s.Repo.DeleteComment(ctx, commentID, userID)
	return err
}

// notifyOthers tells the owner and assignee about a change made by actor.
func (s *TicketService) notifyOthers(t *model.Ticket, actor, eventType string, payload any) {
	if t.UserID != actor {
		s.Hub.Notify(t.UserID, eventType, payload)
	}
	if t.AssigneeID != nil && *t.AssigneeID != actor && *t.AssigneeID != t.UserID {
		s.Hub.Notify(*t.AssigneeID, eventType, payload)
	}
}
