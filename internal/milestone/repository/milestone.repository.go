package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seeksy/internal/milestone/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

type MilestoneRepository struct {
	DB *sql.DB
}

func NewMilestoneRepository(db *sql.DB) *MilestoneRepository {
	return &MilestoneRepository{DB: db}
}

const milestoneColumns = `id, user_id, title, description, category, due_date, status, progress, completed_at, created_at, updated_at`

func scanMilestone(s interface{ Scan(...any) error }) (*model.Milestone, error) {
	var m model.Milestone
	var due, completed sql.NullTime
	if err := s.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.Category, &due,
		&m.Status, &m.Progress, &completed, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time.Format(model.DateLayout)
		m.DueDate = &d
	}
	if completed.Valid {
		m.CompletedAt = &completed.Time
	}
	return &m, nil
}

// dueArg passes a nil date as SQL NULL.
func dueArg(d *string) any {
	if d == nil {
		return nil
	}
	return *d
}

func (r *MilestoneRepository) Create(ctx context.Context, m *model.Milestone) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO milestones (user_id, title, description, category, due_date, status, progress, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		m.UserID, m.Title, m.Description, m.Category, dueArg(m.DueDate), m.Status, m.Progress, m.CompletedAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create milestone: %v", err)
	}
	return err
}

func (r *MilestoneRepository) Get(ctx context.Context, id, userID string) (*model.Milestone, error) {
	m, err := scanMilestone(r.DB.QueryRowContext(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("milestone %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get milestone %s: %v", id, err)
		return nil, err
	}
	return m, nil
}

// List orders by due date with undated milestones last.
func (r *MilestoneRepository) List(ctx context.Context, userID string) ([]model.Milestone, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE user_id = $1 ORDER BY due_date ASC NULLS LAST, created_at ASC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list milestones for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	milestones := []model.Milestone{}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan milestone: %v", err)
			continue
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

func (r *MilestoneRepository) Update(ctx context.Context, m *model.Milestone) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE milestones
		SET title = $1, description = $2, category = $3, due_date = $4::date, status = $5, progress = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at`,
		m.Title, m.Description, m.Category, dueArg(m.DueDate), m.Status, m.Progress, m.CompletedAt, m.ID, m.UserID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("milestone %s: %w", m.ID, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update milestone %s: %v", m.ID, err)
	}
	return err
}

func (r *MilestoneRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM milestones WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete milestone %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
