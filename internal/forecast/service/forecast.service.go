package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"seeksy/internal/forecast/model"
	"seeksy/internal/forecast/repository"
	"seeksy/pkg/ai"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

// Completer is the slice of the AI gateway forecasting needs.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, opts ai.Options) (string, error)
	Model() string
}

type ForecastService struct {
	Repo *repository.ForecastRepository
	AI   Completer
}

func NewForecastService(repo *repository.ForecastRepository, completer Completer) *ForecastService {
	return &ForecastService{Repo: repo, AI: completer}
}

const systemPrompt = `You are a financial analyst building pro forma forecasts for creator
and media businesses. Reply with a single JSON object and nothing else:
{"summary": string, "months": [{"month": int, "revenue": number, "expenses": number, "net": number}]}
Months are numbered from 1. Use plain numbers in US dollars without
currency symbols. net is revenue minus expenses.`

// Generate asks the AI gateway for a forecast and stores it next to the
// local compound-growth baseline. An unusable reply fails with ErrUpstream.
func (s *ForecastService) Generate(ctx context.Context, userID string, req model.ForecastRequest) (*model.Forecast, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	messages := []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: fmt.Sprintf("Build a %d-month forecast for this company:\n%s", req.Months, input)},
	}
	reply, err := s.AI.Complete(ctx, messages, ai.Options{Temperature: 0.2, MaxTokens: 4000, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("generate forecast: %w", err)
	}

	var parsed model.Reply
	if err := ai.DecodeJSON(reply, &parsed); err != nil {
		logger.Sugar.Warnf("Unparseable forecast reply for user %s: %.200s", userID, reply)
		return nil, err
	}
	projections, err := normalize(parsed.Months, req.Months)
	if err != nil {
		return nil, err
	}

	f := &model.Forecast{
		UserID:          userID,
		CompanyName:     req.CompanyName,
		StartingRevenue: req.StartingRevenue,
		GrowthRate:      req.GrowthRate,
		Months:          req.Months,
		Assumptions:     req.Assumptions,
		Summary:         parsed.Summary,
		Projections:     projections,
		Baseline:        model.Baseline(req.StartingRevenue, req.GrowthRate, req.Months),
		Model:           s.AI.Model(),
	}
	if err := s.Repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *ForecastService) List(ctx context.Context, userID string) ([]model.Forecast, error) {
	return s.Repo.List(ctx, userID)
}

func (s *ForecastService) Get(ctx context.Context, id, userID string) (*model.Forecast, error) {
	return s.Repo.Get(ctx, id, userID)
}

func (s *ForecastService) Delete(ctx context.Context, id, userID string) error {
	n, err := s.Repo.Delete(ctx, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("forecast not found or not owned by you: %w", apperr.ErrNotFound)
	}
	return nil
}

// normalize checks the model returned exactly the requested months in
// order, rounds to cents and recomputes net.
func normalize(months []model.Month, want int) ([]model.Month, error) {
	if len(months) != want {
		return nil, fmt.Errorf("%w: AI forecast has %d months, asked for %d", apperr.ErrUpstream, len(months), want)
	}
	out := make([]model.Month, len(months))
	for i, m := range months {
		if m.Month != i+1 {
			return nil, fmt.Errorf("%w: AI forecast month %d out of order", apperr.ErrUpstream, m.Month)
		}
		if !finite(m.Revenue) || !finite(m.Expenses) {
			return nil, fmt.Errorf("%w: AI forecast month %d has invalid numbers", apperr.ErrUpstream, m.Month)
		}
		revenue, expenses := model.Round(m.Revenue), model.Round(m.Expenses)
		out[i] = model.Month{Month: m.Month, Revenue: revenue, Expenses: expenses, Net: model.Round(revenue - expenses)}
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
