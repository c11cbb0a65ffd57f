package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"seeksy/internal/campaign/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"

	"github.com/lib/pq"
)

type CampaignRepository struct {
	DB *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

const campaignColumns = `id, user_id, name, subject, from_name, html_body, recipients, status, sent_count, failed_count, sent_at, created_at, updated_at`

func scanCampaign(s interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	var sentAt sql.NullTime
	if err := s.Scan(&c.ID, &c.UserID, &c.Name, &c.Subject, &c.FromName, &c.HTMLBody, pq.Array(&c.Recipients),
		&c.Status, &c.SentCount, &c.FailedCount, &sentAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		c.SentAt = &sentAt.Time
	}
	if c.Recipients == nil {
		c.Recipients = []string{}
	}
	return &c, nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO email_campaigns (user_id, name, subject, from_name, html_body, recipients, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		c.UserID, c.Name, c.Subject, c.FromName, c.HTMLBody, pq.Array(c.Recipients), c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create campaign: %v", err)
	}
	return err
}

func (r *CampaignRepository) Get(ctx context.Context, id, userID string) (*model.Campaign, error) {
	c, err := scanCampaign(r.DB.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM email_campaigns WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("campaign %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get campaign %s: %v", id, err)
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM email_campaigns WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list campaigns for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan campaign: %v", err)
			continue
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// UpdateDraft rewrites a campaign that has not been sent yet.
func (r *CampaignRepository) UpdateDraft(ctx context.Context, c *model.Campaign) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE email_campaigns
		SET name = $1, subject = $2, from_name = $3, html_body = $4, recipients = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7 AND status = 'draft'`,
		c.Name, c.Subject, c.FromName, c.HTMLBody, pq.Array(c.Recipients), c.ID, c.UserID)
	if err != nil {
		logger.Sugar.Errorf("Failed to update campaign %s: %v", c.ID, err)
		return 0, err
	}
	return result.RowsAffected()
}

func (r *CampaignRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM email_campaigns WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete campaign %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}

// ClaimForSending flips a draft to sending. It returns false when another
// request already claimed it or it is not a draft.
func (r *CampaignRepository) ClaimForSending(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		UPDATE email_campaigns SET status = 'sending', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'draft'`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to claim campaign %s: %v", id, err)
		return false, err
	}
	n, err := result.RowsAffected()
	return n == 1, err
}

func (r *CampaignRepository) MarkSent(ctx context.Context, id, status string, sent, failed int) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE email_campaigns
		SET status = $1, sent_count = $2, failed_count = $3, sent_at = NOW(), updated_at = NOW()
		WHERE id = $4`, status, sent, failed, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to record send result for campaign %s: %v", id, err)
	}
	return err
}
