package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"seeksy/internal/clip/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

type ClipRepository struct {
	DB *sql.DB
}

func NewClipRepository(db *sql.DB) *ClipRepository {
	return &ClipRepository{DB: db}
}

const clipColumns = `id, user_id, title, source_url, transcript_id, start_time, length, aspect_ratio, render_id, status, output_url, error, created_at, updated_at`

func scanClip(s interface{ Scan(...any) error }) (*model.Clip, error) {
	var c model.Clip
	var transcriptID sql.NullString
	if err := s.Scan(&c.ID, &c.UserID, &c.Title, &c.SourceURL, &transcriptID, &c.Start, &c.Length,
		&c.AspectRatio, &c.RenderID, &c.Status, &c.OutputURL, &c.Error, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if transcriptID.Valid {
		c.TranscriptID = &transcriptID.String
	}
	return &c, nil
}

func (r *ClipRepository) Create(ctx context.Context, c *model.Clip) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO clips (user_id, title, source_url, transcript_id, start_time, length, aspect_ratio, render_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		c.UserID, c.Title, c.SourceURL, c.TranscriptID, c.Start, c.Length, c.AspectRatio, c.RenderID, c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create clip for render %s: %v", c.RenderID, err)
	}
	return err
}

func (r *ClipRepository) Get(ctx context.Context, id, userID string) (*model.Clip, error) {
	c, err := scanClip(r.DB.QueryRowContext(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("clip %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get clip %s: %v", id, err)
		return nil, err
	}
	return c, nil
}

func (r *ClipRepository) List(ctx context.Context, userID string) ([]model.Clip, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list clips for user %s: %v", userID, err)
		return nil, err
	}
	return collect(rows)
}

// ListPending returns unfinished clips last touched before the cutoff.
// It is not scoped to a user.
func (r *ClipRepository) ListPending(ctx context.Context, before time.Time, limit int) ([]model.Clip, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+clipColumns+` FROM clips
		WHERE status IN ('queued', 'rendering') AND render_id <> '' AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`, before, limit)
	if err != nil {
		logger.Sugar.Errorf("Failed to list pending clips: %v", err)
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]model.Clip, error) {
	defer rows.Close()
	clips := []model.Clip{}
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan clip: %v", err)
			continue
		}
		clips = append(clips, *c)
	}
	return clips, rows.Err()
}

// UpdateByRender applies a render status to the clip it belongs to. It
// returns nil without error when no unfinished clip has that render ID.
func (r *ClipRepository) UpdateByRender(ctx context.Context, renderID, status, outputURL, errMsg string) (*model.Clip, error) {
	c, err := scanClip(r.DB.QueryRowContext(ctx, `
		UPDATE clips
		SET status = $1, output_url = $2, error = $3, updated_at = NOW()
		WHERE render_id = $4 AND status NOT IN ('done', 'failed')
		RETURNING `+clipColumns,
		status, outputURL, errMsg, renderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update clip for render %s: %v", renderID, err)
		return nil, err
	}
	return c, nil
}

// Touch bumps updated_at so the sync worker waits a full grace period
// before polling the clip again.
func (r *ClipRepository) Touch(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE clips SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to touch clip %s: %v", id, err)
	}
	return err
}

func (r *ClipRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM clips WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete clip %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
