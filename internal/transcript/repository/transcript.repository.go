package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"seeksy/internal/transcript/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/captions"
	"seeksy/pkg/logger"
)

type TranscriptRepository struct {
	DB *sql.DB
}

func NewTranscriptRepository(db *sql.DB) *TranscriptRepository {
	return &TranscriptRepository{DB: db}
}

const transcriptColumns = `id, user_id, title, audio_url, language, text, duration, words, segments, created_at`

func scanTranscript(s interface{ Scan(...any) error }) (*model.Transcript, error) {
	var t model.Transcript
	var words, segments []byte
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.AudioURL, &t.Language, &t.Text, &t.Duration,
		&words, &segments, &t.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(words, &t.Words); err != nil {
		return nil, fmt.Errorf("decode words of transcript %s: %w", t.ID, err)
	}
	if err := json.Unmarshal(segments, &t.Segments); err != nil {
		return nil, fmt.Errorf("decode segments of transcript %s: %w", t.ID, err)
	}
	return &t, nil
}

// Create stores the transcript. Segments are saved without their word
// lists since the words column already holds them.
func (r *TranscriptRepository) Create(ctx context.Context, t *model.Transcript) error {
	words, err := json.Marshal(t.Words)
	if err != nil {
		return err
	}
	slim := make([]captions.Segment, len(t.Segments))
	for i, s := range t.Segments {
		s.Words = nil
		slim[i] = s
	}
	segments, err := json.Marshal(slim)
	if err != nil {
		return err
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO transcripts (user_id, title, audio_url, language, text, duration, words, segments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at`,
		t.UserID, t.Title, t.AudioURL, t.Language, t.Text, t.Duration, words, segments,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to save transcript: %v", err)
	}
	return err
}

func (r *TranscriptRepository) Get(ctx context.Context, id, userID string) (*model.Transcript, error) {
	t, err := scanTranscript(r.DB.QueryRowContext(ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transcript %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get transcript %s: %v", id, err)
		return nil, err
	}
	return t, nil
}

// List omits the word and segment payloads.
func (r *TranscriptRepository) List(ctx context.Context, userID string) ([]model.Transcript, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, title, audio_url, language, text, duration, created_at
		FROM transcripts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list transcripts for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	transcripts := []model.Transcript{}
	for rows.Next() {
		var t model.Transcript
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.AudioURL, &t.Language, &t.Text, &t.Duration, &t.CreatedAt); err != nil {
			logger.Sugar.Errorf("Failed to scan transcript: %v", err)
			continue
		}
		transcripts = append(transcripts, t)
	}
	return transcripts, rows.Err()
}

func (r *TranscriptRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM transcripts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete transcript %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
