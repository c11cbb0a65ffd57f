package service

import (
	"context"
	"fmt"
	"strings"

	"seeksy/internal/campaign/model"
	"seeksy/internal/campaign/repository"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
	"seeksy/pkg/mailer"
	"seeksy/socket"
)

// Notifier pushes realtime events to a user's open sockets.
type Notifier interface {
	Notify(userID, eventType string, payload any)
}

// Mailer delivers one email and returns the provider's message ID.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

type CampaignService struct {
	Repo   *repository.CampaignRepository
	Mailer Mailer
	Hub    Notifier
}

func NewCampaignService(repo *repository.CampaignRepository, m Mailer, hub Notifier) *CampaignService {
	return &CampaignService{Repo: repo, Mailer: m, Hub: hub}
}

func (s *CampaignService) Create(ctx context.Context, userID string, req model.CampaignRequest) (*model.Campaign, error) {
	c := &model.Campaign{
		UserID:     userID,
		Name:       req.Name,
		Subject:    req.Subject,
		FromName:   req.FromName,
		HTMLBody:   req.HTMLBody,
		Recipients: dedupe(req.Recipients),
		Status:     model.StatusDraft,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, userID string) ([]model.Campaign, error) {
	return s.Repo.List(ctx, userID)
}

func (s *CampaignService) Get(ctx context.Context, id, userID string) (*model.Campaign, error) {
	return s.Repo.Get(ctx, id, userID)
}

func (s *CampaignService) Update(ctx context.Context, id, userID string, req model.CampaignRequest) (*model.Campaign, error) {
	c, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusDraft {
		return nil, fmt.Errorf("%w: campaign is %s, only drafts can be edited", apperr.ErrConflict, c.Status)
	}
	c.Name = req.Name
	c.Subject = req.Subject
	c.FromName = req.FromName
	c.HTMLBody = req.HTMLBody
	c.Recipients = dedupe(req.Recipients)

	n, err := s.Repo.UpdateDraft(ctx, c)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: campaign changed while editing", apperr.ErrConflict)
	}
	return c, nil
}

func (s *CampaignService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("campaign not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}

// Send mails every recipient once. Failures are counted, not retried, and
// the campaign ends as sent unless every recipient failed.
func (s *CampaignService) Send(ctx context.Context, id, userID string) (*model.SendResult, error) {
	c, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != model.StatusDraft {
		return nil, fmt.Errorf("%w: campaign is already %s", apperr.ErrConflict, c.Status)
	}
	if len(c.Recipients) == 0 {
		return nil, fmt.Errorf("%w: campaign has no recipients", apperr.ErrInvalid)
	}

	claimed, err := s.Repo.ClaimForSending(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: campaign is already being sent", apperr.ErrConflict)
	}

	result := &model.SendResult{CampaignID: c.ID}
	for _, to := range c.Recipients {
		msg := mailer.Message{FromName: c.FromName, To: []string{to}, Subject: c.Subject, HTML: c.HTMLBody}
		if _, err := s.Mailer.Send(ctx, msg); err != nil {
			logger.Sugar.Warnf("Campaign %s: send to %s failed: %v", c.ID, to, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", to, err))
			continue
		}
		result.Sent++
	}

	result.Status = model.StatusSent
	if result.Sent == 0 {
		result.Status = model.StatusFailed
	}
	// Record the outcome even if the caller went away mid-send.
	if err := s.Repo.MarkSent(context.WithoutCancel(ctx), c.ID, result.Status, result.Sent, result.Failed); err != nil {
		return nil, err
	}
	logger.Sugar.Infof("Campaign %s sent: %d delivered, %d failed", c.ID, result.Sent, result.Failed)
	s.Hub.Notify(userID, socket.CampaignSentType, result)
	return result, nil
}

func dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
