package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"seeksy/internal/proposal/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

type ProposalRepository struct {
	DB *sql.DB
}

func NewProposalRepository(db *sql.DB) *ProposalRepository {
	return &ProposalRepository{DB: db}
}

const proposalColumns = `id, user_id, client_name, client_email, title, items, notes, total_cents, status, valid_until, sent_at, created_at, updated_at`

func scanProposal(s interface{ Scan(...any) error }) (*model.Proposal, error) {
	var p model.Proposal
	var items []byte
	var validUntil, sentAt sql.NullTime
	if err := s.Scan(&p.ID, &p.UserID, &p.ClientName, &p.ClientEmail, &p.Title, &items, &p.Notes,
		&p.TotalCents, &p.Status, &validUntil, &sentAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("decode items of proposal %s: %w", p.ID, err)
	}
	if p.Items == nil {
		p.Items = []model.Item{}
	}
	if validUntil.Valid {
		d := validUntil.Time.Format("2006-01-02")
		p.ValidUntil = &d
	}
	if sentAt.Valid {
		p.SentAt = &sentAt.Time
	}
	return &p, nil
}

func dateArg(d *string) any {
	if d == nil {
		return nil
	}
	return *d
}

func (r *ProposalRepository) Create(ctx context.Context, p *model.Proposal) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return err
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO proposals (user_id, client_name, client_email, title, items, notes, total_cents, status, valid_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		p.UserID, p.ClientName, p.ClientEmail, p.Title, items, p.Notes, p.TotalCents, p.Status, dateArg(p.ValidUntil),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create proposal: %v", err)
	}
	return err
}

func (r *ProposalRepository) Get(ctx context.Context, id, userID string) (*model.Proposal, error) {
	p, err := scanProposal(r.DB.QueryRowContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("proposal %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get proposal %s: %v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *ProposalRepository) List(ctx context.Context, userID string) ([]model.Proposal, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list proposals for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	proposals := []model.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan proposal: %v", err)
			continue
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

func (r *ProposalRepository) Update(ctx context.Context, p *model.Proposal) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return err
	}
	err = r.DB.QueryRowContext(ctx, `
		UPDATE proposals
		SET client_name = $1, client_email = $2, title = $3, items = $4, notes = $5, total_cents = $6, valid_until = $7::date, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at`,
		p.ClientName, p.ClientEmail, p.Title, items, p.Notes, p.TotalCents, dateArg(p.ValidUntil), p.ID, p.UserID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("proposal %s: %w", p.ID, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to update proposal %s: %v", p.ID, err)
	}
	return err
}

// SetStatus records a status change. sent also stamps sent_at.
func (r *ProposalRepository) SetStatus(ctx context.Context, p *model.Proposal) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE proposals
		SET status = $1, sent_at = CASE WHEN $1 = 'sent' THEN NOW() ELSE sent_at END, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING sent_at, updated_at`,
		p.Status, p.ID, p.UserID,
	).Scan(&p.SentAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("proposal %s: %w", p.ID, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to set status of proposal %s: %v", p.ID, err)
	}
	return err
}

func (r *ProposalRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM proposals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete proposal %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
