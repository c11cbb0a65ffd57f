package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"seeksy/internal/campaign/model"
	"seeksy/internal/campaign/repository"
	"seeksy/pkg/apperr"
	"seeksy/pkg/mailer"
	"seeksy/socket"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	fail map[string]bool
	sent []mailer.Message
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	if f.fail[msg.To[0]] {
		return "", errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return "email-id", nil
}

type fakeNotifier struct {
	types []string
}

func (f *fakeNotifier) Notify(_ string, eventType string, _ any) {
	f.types = append(f.types, eventType)
}

var campaignCols = []string{"id", "user_id", "name", "subject", "from_name", "html_body", "recipients", "status", "sent_count", "failed_count", "sent_at", "created_at", "updated_at"}

func setup(t *testing.T, m *fakeMailer) (*CampaignService, sqlmock.Sqlmock, *fakeNotifier) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	hub := &fakeNotifier{}
	return NewCampaignService(repository.NewCampaignRepository(db), m, hub), mock, hub
}

func expectCampaign(mock sqlmock.Sqlmock, status, recipients string) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM email_campaigns WHERE id = $1 AND user_id = $2")).
		WithArgs("c1", "u1").
		WillReturnRows(sqlmock.NewRows(campaignCols).
			AddRow("c1", "u1", "Launch", "New season", "Night Owl", "<p>hi</p>", recipients, status, 0, 0, nil, now, now))
}

func TestCreateDedupesRecipients(t *testing.T) {
	svc, mock, _ := setup(t, &fakeMailer{})

	now := time.Now()
	mock.ExpectQuery("INSERT INTO email_campaigns").
		WithArgs("u1", "Launch", "New season", "", "<p>hi</p>", sqlmock.AnyArg(), model.StatusDraft).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("c1", now, now))

	c, err := svc.Create(context.Background(), "u1", model.CampaignRequest{
		Name: "Launch", Subject: "New season", HTMLBody: "<p>hi</p>",
		Recipients: []string{"a@x.io", " A@x.io", "b@x.io", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, c.Recipients)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendCountsPartialFailures(t *testing.T) {
	m := &fakeMailer{fail: map[string]bool{"b@x.io": true}}
	svc, mock, hub := setup(t, m)

	expectCampaign(mock, model.StatusDraft, "{a@x.io,b@x.io,c@x.io}")
	mock.ExpectExec("UPDATE email_campaigns SET status = 'sending'").
		WithArgs("c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE email_campaigns").
		WithArgs(model.StatusSent, 2, 1, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Send(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, model.StatusSent, res.Status)
	assert.Len(t, res.Errors, 1)
	require.Len(t, m.sent, 2)
	assert.Equal(t, "Night Owl", m.sent[0].FromName)
	assert.Equal(t, []string{socket.CampaignSentType}, hub.types)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendAllFailedMarksFailed(t *testing.T) {
	m := &fakeMailer{fail: map[string]bool{"a@x.io": true}}
	svc, mock, _ := setup(t, m)

	expectCampaign(mock, model.StatusDraft, "{a@x.io}")
	mock.ExpectExec("status = 'sending'").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE email_campaigns").
		WithArgs(model.StatusFailed, 0, 1, "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.Send(context.Background(), "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRejectsNonDraft(t *testing.T) {
	svc, mock, _ := setup(t, &fakeMailer{})

	expectCampaign(mock, model.StatusSent, "{a@x.io}")
	_, err := svc.Send(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendLosesRaceToClaim(t *testing.T) {
	m := &fakeMailer{}
	svc, mock, _ := setup(t, m)

	expectCampaign(mock, model.StatusDraft, "{a@x.io}")
	mock.ExpectExec("status = 'sending'").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Send(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Empty(t, m.sent)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	svc, mock, _ := setup(t, &fakeMailer{})

	expectCampaign(mock, model.StatusSent, "{a@x.io}")
	_, err := svc.Update(context.Background(), "c1", "u1", model.CampaignRequest{Name: "n", Subject: "s", HTMLBody: "b"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestGetMissing(t *testing.T) {
	svc, mock, _ := setup(t, &fakeMailer{})

	mock.ExpectQuery("FROM email_campaigns").WillReturnRows(sqlmock.NewRows(campaignCols))
	_, err := svc.Get(context.Background(), "c1", "u1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
