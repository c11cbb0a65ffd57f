package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"seeksy/internal/forecast/model"
	"seeksy/pkg/apperr"
	"seeksy/pkg/logger"
)

type ForecastRepository struct {
	DB *sql.DB
}

func NewForecastRepository(db *sql.DB) *ForecastRepository {
	return &ForecastRepository{DB: db}
}

const forecastColumns = `id, user_id, company_name, starting_revenue, growth_rate, months, assumptions, summary, projections, baseline, model, created_at`

func scanForecast(s interface{ Scan(...any) error }) (*model.Forecast, error) {
	var f model.Forecast
	var projections, baseline []byte
	if err := s.Scan(&f.ID, &f.UserID, &f.CompanyName, &f.StartingRevenue, &f.GrowthRate, &f.Months,
		&f.Assumptions, &f.Summary, &projections, &baseline, &f.Model, &f.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(projections, &f.Projections); err != nil {
		return nil, fmt.Errorf("decode projections of forecast %s: %w", f.ID, err)
	}
	if err := json.Unmarshal(baseline, &f.Baseline); err != nil {
		return nil, fmt.Errorf("decode baseline of forecast %s: %w", f.ID, err)
	}
	return &f, nil
}

func (r *ForecastRepository) Create(ctx context.Context, f *model.Forecast) error {
	projections, err := json.Marshal(f.Projections)
	if err != nil {
		return err
	}
	baseline, err := json.Marshal(f.Baseline)
	if err != nil {
		return err
	}
	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO proforma_forecasts (user_id, company_name, starting_revenue, growth_rate, months, assumptions, summary, projections, baseline, model, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at`,
		f.UserID, f.CompanyName, f.StartingRevenue, f.GrowthRate, f.Months, f.Assumptions, f.Summary, projections, baseline, f.Model,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to save forecast: %v", err)
	}
	return err
}

func (r *ForecastRepository) Get(ctx context.Context, id, userID string) (*model.Forecast, error) {
	f, err := scanForecast(r.DB.QueryRowContext(ctx,
		`SELECT `+forecastColumns+` FROM proforma_forecasts WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("forecast %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get forecast %s: %v", id, err)
		return nil, err
	}
	return f, nil
}

func (r *ForecastRepository) List(ctx context.Context, userID string) ([]model.Forecast, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+forecastColumns+` FROM proforma_forecasts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to list forecasts for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	forecasts := []model.Forecast{}
	for rows.Next() {
		f, err := scanForecast(rows)
		if err != nil {
			logger.Sugar.Errorf("Failed to scan forecast: %v", err)
			continue
		}
		forecasts = append(forecasts, *f)
	}
	return forecasts, rows.Err()
}

func (r *ForecastRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM proforma_forecasts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete forecast %s: %v", id, err)
		return 0, err
	}
	return result.RowsAffected()
}
