package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"seeksy/internal/proposal/model"
	"seeksy/internal/proposal/repository"
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

type ProposalService struct {
	Repo   *repository.ProposalRepository
	Mailer Mailer
	Hub    Notifier
}

func NewProposalService(repo *repository.ProposalRepository, m Mailer, hub Notifier) *ProposalService {
	return &ProposalService{Repo: repo, Mailer: m, Hub: hub}
}

func (s *ProposalService) Create(ctx context.Context, userID string, req model.ProposalRequest) (*model.Proposal, error) {
	p := &model.Proposal{UserID: userID, Status: model.StatusDraft}
	apply(p, req)
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProposalService) List(ctx context.Context, userID string) ([]model.Proposal, error) {
	return s.Repo.List(ctx, userID)
}

func (s *ProposalService) Get(ctx context.Context, id, userID string) (*model.Proposal, error) {
	return s.Repo.Get(ctx, id, userID)
}

func (s *ProposalService) Update(ctx context.Context, id, userID string, req model.ProposalRequest) (*model.Proposal, error) {
	p, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.StatusAccepted {
		return nil, fmt.Errorf("%w: accepted proposals cannot be edited", apperr.ErrConflict)
	}
	apply(p, req)
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStatus records the client's answer to a sent proposal.
func (s *ProposalService) SetStatus(ctx context.Context, id, userID string, req model.StatusRequest) (*model.Proposal, error) {
	p, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.StatusDraft {
		return nil, fmt.Errorf("%w: proposal has not been sent", apperr.ErrConflict)
	}
	p.Status = req.Status
	if err := s.Repo.SetStatus(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProposalService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("proposal not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}

// Send emails the proposal to the client and marks it sent. Resending a
// sent or declined proposal is allowed; an accepted one is final.
func (s *ProposalService) Send(ctx context.Context, id, userID, senderEmail string, req model.SendRequest) (*model.Proposal, error) {
	p, err := s.Repo.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p.Status == model.StatusAccepted {
		return nil, fmt.Errorf("%w: proposal was already accepted", apperr.ErrConflict)
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("%w: proposal has no line items", apperr.ErrInvalid)
	}

	html, err := Render(p, req.Message)
	if err != nil {
		return nil, err
	}
	msgID, err := s.Mailer.Send(ctx, mailer.Message{
		To:      []string{p.ClientEmail},
		Subject: "Proposal: " + p.Title,
		HTML:    html,
		ReplyTo: senderEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("send proposal %s: %w", p.ID, err)
	}
	logger.Sugar.Infof("Proposal %s sent to %s (message %s)", p.ID, p.ClientEmail, msgID)

	p.Status = model.StatusSent
	if err := s.Repo.SetStatus(context.WithoutCancel(ctx), p); err != nil {
		return nil, err
	}
	s.Hub.Notify(userID, socket.ProposalSentType, p)
	return p, nil
}

func apply(p *model.Proposal, req model.ProposalRequest) {
	p.ClientName = req.ClientName
	p.ClientEmail = req.ClientEmail
	p.Title = req.Title
	p.Items = req.Items
	if p.Items == nil {
		p.Items = []model.Item{}
	}
	p.Notes = req.Notes
	p.TotalCents = model.Total(p.Items)
	p.ValidUntil = nil
	if req.ValidUntil != "" {
		v := req.ValidUntil
		p.ValidUntil = &v
	}
}

var emailTemplate = template.Must(template.New("proposal").Funcs(template.FuncMap{
	"money": model.FormatCents,
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1a1a1a; max-width: 640px; margin: 0 auto;">
  <h2>{{.P.Title}}</h2>
  <p>Hi {{.P.ClientName}},</p>
  {{if .Message}}<p>{{.Message}}</p>{{end}}
  <table style="width: 100%; border-collapse: collapse;">
    <thead>
      <tr>
        <th align="left">Item</th><th align="right">Qty</th><th align="right">Unit price</th><th align="right">Total</th>
      </tr>
    </thead>
    <tbody>
      {{range .P.Items}}<tr>
        <td>{{.Description}}</td><td align="right">{{.Quantity}}</td><td align="right">{{money .UnitPriceCents}}</td><td align="right">{{money .TotalCents}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>{{money .P.TotalCents}}</strong></td></tr>
    </tfoot>
  </table>
  {{if .P.Notes}}<p>{{.P.Notes}}</p>{{end}}
  {{if .P.ValidUntil}}<p>This proposal is valid until {{.P.ValidUntil}}.</p>{{end}}
</body>
</html>
`))

// Render produces the proposal email body. Client-supplied text is
// escaped by html/template.
func Render(p *model.Proposal, message string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		P       *model.Proposal
		Message string
	}{p, message}
	if err := emailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render proposal email: %w", err)
	}
	return buf.String(), nil
}
