package model

import (
	"math"
	"time"
)

// Month is one projected month. Month numbers start at 1.
type Month struct {
	Month    int     `json:"month"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

type Forecast struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	CompanyName     string    `json:"company_name"`
	StartingRevenue float64   `json:"starting_revenue"`
	GrowthRate      float64   `json:"growth_rate"`
	Months          int       `json:"months"`
	Assumptions     string    `json:"assumptions"`
	Summary         string    `json:"summary"`
	Projections     []Month   `json:"projections"`
	Baseline        []Month   `json:"baseline"`
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
}

// ForecastRequest takes growth as a monthly percentage. The revenue cap
// keeps the compounded baseline finite at the largest growth and horizon.
type ForecastRequest struct {
	CompanyName     string  `json:"company_name" validate:"required,max=200"`
	StartingRevenue float64 `json:"starting_revenue" validate:"gte=0,lte=1000000000000"`
	GrowthRate      float64 `json:"growth_rate" validate:"gte=-100,lte=1000"`
	Months          int     `json:"months" validate:"required,min=1,max=60"`
	Assumptions     string  `json:"assumptions" validate:"max=5000"`
}

// Reply is the JSON shape the AI gateway is asked to return.
type Reply struct {
	Summary string  `json:"summary"`
	Months  []Month `json:"months"`
}

// Baseline compounds starting revenue by the monthly growth rate. Month 1
// is the starting revenue. Expenses are unknown locally, so net equals
// revenue.
func Baseline(startingRevenue, growthPct float64, months int) []Month {
	out := make([]Month, 0, months)
	factor := 1 + growthPct/100
	revenue := startingRevenue
	for m := 1; m <= months; m++ {
		r := Round(revenue)
		out = append(out, Month{Month: m, Revenue: r, Net: r})
		revenue *= factor
	}
	return out
}

// Round rounds to cents.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
