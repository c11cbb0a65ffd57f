package service

import (
	"context"
	"testing"
	"time"

	"seeksy/internal/forecast/model"
	"seeksy/internal/forecast/repository"
	"seeksy/pkg/ai"
	"seeksy/pkg/apperr"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	opts  ai.Options
}

func (f *fakeCompleter) Complete(_ context.Context, _ []ai.Message, opts ai.Options) (string, error) {
	f.opts = opts
	return f.reply, nil
}

func (f *fakeCompleter) Model() string { return "gpt-test" }

func setup(t *testing.T, reply string) (*ForecastService, sqlmock.Sqlmock, *fakeCompleter) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	c := &fakeCompleter{reply: reply}
	return NewForecastService(repository.NewForecastRepository(db), c), mock, c
}

var request = model.ForecastRequest{CompanyName: "Night Owl Media", StartingRevenue: 1000, GrowthRate: 10, Months: 2}

func TestGenerateStoresProjectionsAndBaseline(t *testing.T) {
	reply := "Here you go:\n```json\n" +
		`{"summary":"Steady growth","months":[{"month":1,"revenue":1000.004,"expenses":400,"net":0},{"month":2,"revenue":1150,"expenses":420.5,"net":1}]}` +
		"\n```"
	svc, mock, c := setup(t, reply)

	mock.ExpectQuery("INSERT INTO proforma_forecasts").
		WithArgs("u1", "Night Owl Media", 1000.0, 10.0, 2, "", "Steady growth", sqlmock.AnyArg(), sqlmock.AnyArg(), "gpt-test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("f1", time.Now()))

	f, err := svc.Generate(context.Background(), "u1", request)
	require.NoError(t, err)
	assert.True(t, c.opts.JSON)
	assert.Equal(t, "f1", f.ID)
	assert.Equal(t, []model.Month{
		{Month: 1, Revenue: 1000, Expenses: 400, Net: 600},
		{Month: 2, Revenue: 1150, Expenses: 420.5, Net: 729.5},
	}, f.Projections)
	assert.Equal(t, 1100.0, f.Baseline[1].Revenue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateUnparseableReplyIsUpstreamError(t *testing.T) {
	svc, mock, _ := setup(t, "Sorry, I can't help with that.")

	_, err := svc.Generate(context.Background(), "u1", request)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateRejectsWrongMonthCount(t *testing.T) {
	svc, _, _ := setup(t, `{"summary":"x","months":[{"month":1,"revenue":1,"expenses":1}]}`)

	_, err := svc.Generate(context.Background(), "u1", request)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
	assert.Contains(t, err.Error(), "has 1 months, asked for 2")
}

func TestGenerateRejectsOutOfOrderMonths(t *testing.T) {
	svc, _, _ := setup(t, `{"summary":"x","months":[{"month":2,"revenue":1,"expenses":1},{"month":1,"revenue":1,"expenses":1}]}`)

	_, err := svc.Generate(context.Background(), "u1", request)
	assert.ErrorIs(t, err, apperr.ErrUpstream)
}

func TestListDecodesJSONColumns(t *testing.T) {
	svc, mock, _ := setup(t, "")

	mock.ExpectQuery("FROM proforma_forecasts WHERE user_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "company_name", "starting_revenue", "growth_rate", "months", "assumptions", "summary", "projections", "baseline", "model", "created_at"}).
			AddRow("f1", "u1", "Acme", 10.0, 1.0, 1, "", "ok",
				[]byte(`[{"month":1,"revenue":10,"expenses":5,"net":5}]`), []byte(`[{"month":1,"revenue":10,"expenses":0,"net":10}]`), "m", time.Now()))

	forecasts, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, forecasts, 1)
	assert.Equal(t, 5.0, forecasts[0].Projections[0].Net)
	assert.Equal(t, 10.0, forecasts[0].Baseline[0].Net)
}
