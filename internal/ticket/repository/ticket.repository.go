package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seeksy/internal/ticket/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"

	"github.com/lib/pq"
)

type TicketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{DB: db}
}

const ticketColumns = `id, user_id, subject, description, status, priority, category, tags, assignee_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTicket(s scanner) (*model.Ticket, error) {
	var t model.Ticket
	var assignee sql.NullString
	if err := s.Scan(&t.ID, &t.UserID, &t.Subject, &t.Description, &t.Status, &t.Priority, &t.Category,
		pq.Array(&t.Tags), &assignee, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if assignee.Valid {
		t.AssigneeID = &assignee.String
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func (r *TicketRepository) Create(ctx context.Context, t *model.Ticket) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tickets (user_id, subject, description, status, priority, category, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		t.UserID, t.Subject, t.Description, t.Status, t.Priority, t.Category, pq.Array(t.Tags),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create ticket: %v", err)
	}
	return err
}

func (r *TicketRepository) Get(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := scanTicket(r.DB.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get ticket %s: %v", id, err)
		return nil, err
	}
	return t, nil
}

// ListForUser returns tickets the user opened or is assigned, newest
// activity first. An empty status matches every status.
func (r *TicketRepository) ListForUser(ctx context.Context, userID, status string) ([]model.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE (user_id = $1 OR assignee_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC`, userID, status)
	if err != nil {
		logger.Sugar.Errorf("Failed to list tickets for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	tickets := []model.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan ticket: %v", err)
			continue
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func (r *TicketRepository) Update(ctx context.Context, t *model.Ticket) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE tickets SET status = $1, priority = $2, assignee_id = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`, t.Status, t.Priority, t.AssigneeID, t.ID).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("ticket %s: %w", t.ID, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update ticket %s: %v", t.ID, err)
	}
	return err
}

func (r *TicketRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM tickets WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete ticket %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *TicketRepository) AddComment(ctx context.Context, c *model.Comment) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO ticket_comments (ticket_id, user_id, body, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at`, c.TicketID, c.UserID, c.Body).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to add comment to ticket %s: %v", c.TicketID, err)
		return err
	}
	// Comments count as ticket activity.
	if _, err := r.DB.ExecContext(ctx, `UPDATE tickets SET updated_at = NOW() WHERE id = $1`, c.TicketID); err != nil {
		logger.Sugar.Warnf("Failed to bump ticket %s activity: %v", c.TicketID, err)
	}
	return nil
}

func (r *TicketRepository) ListComments(ctx context.Context, ticketID string) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, ticket_id, user_id, body, created_at FROM ticket_comments
		WHERE ticket_id = $1 ORDER BY created_at ASC`, ticketID)
	if err != nil {
		logger.Sugar.Errorf("Failed to get comments for ticket %s: %v", ticketID, err)
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.UserID, &c.Body, &c.CreatedAt); err != nil {
			continue
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment written by userID. It returns the ticket
// the comment belonged to.
func (r *TicketRepository) DeleteComment(ctx context.Context, commentID, userID string) (string, error) {
	var ticketID string
	err := r.DB.QueryRowContext(ctx, `
		DELETE FROM ticket_comments
		WHERE id = $1 AND user_id = $2
		RETURNING ticket_id`, commentID, userID).Scan(&ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("comment %s: %w", commentID, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to delete comment %s: %v", commentID, err)
	}
	return ticketID, err
}

// UserIDByEmail looks up a Supabase auth user. The database role needs
// read access to auth.users.
func (r *TicketRepository) UserIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx, `SELECT id FROM auth.users WHERE lower(email) = lower($1)`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to look up user %s: %v", email, err)
	}
	return id, err
}
