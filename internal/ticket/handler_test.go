package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seeksy/internal/ticket/repository"
	"seeksy/internal/ticket/service"
	"seeksy/middleware"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, any) {}

func newHandler(t *testing.T) (*TicketHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTicketHandler(service.NewTicketService(repository.NewTicketRepository(db), nopNotifier{})), mock
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestCreateTicketHandler(t *testing.T) {
	h, mock := newHandler(t)

	now := time.Now()
	mock.ExpectQuery("INSERT INTO tickets").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("t1", now, now))

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tickets/create",
		strings.NewReader(`{"subject":"RSS feed broken","priority":"high","tags":["rss"]}`)), "u1")
	w := httptest.NewRecorder()
	h.CreateTicket(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"t1"`)
	assert.Contains(t, w.Body.String(), `"priority":"high"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTicketValidation(t *testing.T) {
	h, _ := newHandler(t)

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/tickets/create",
		strings.NewReader(`{"subject":"","priority":"panic"}`)), "u1")
	w := httptest.NewRecorder()
	h.CreateTicket(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Subject failed required")
}

func TestTicketHandlerMethodAndParams(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.DeleteTicket(w, withUser(httptest.NewRequest(http.MethodGet, "/api/tickets/delete?id=t1", nil), "u1"))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = httptest.NewRecorder()
	h.GetTicket(w, withUser(httptest.NewRequest(http.MethodGet, "/api/tickets/get", nil), "u1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTicketConflict(t *testing.T) {
	h, mock := newHandler(t)

	now := time.Now()
	mock.ExpectQuery("FROM tickets WHERE id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "subject", "description", "status", "priority", "category", "tags", "assignee_id", "created_at", "updated_at"}).
			AddRow("t1", "u1", "s", "", "closed", "normal", "general", "{}", nil, now, now))

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/tickets/update?id=t1", strings.NewReader(`{"status":"pending"}`)), "u1")
	w := httptest.NewRecorder()
	h.UpdateTicket(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func expectOwnedTicket(mock sqlmock.Sqlmock, assignee any) {
	now := time.Now()
	mock.ExpectQuery("FROM tickets WHERE id").WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "subject", "description", "status", "priority", "category", "tags", "assignee_id", "created_at", "updated_at"}).
			AddRow("t1", "u1", "s", "", "open", "normal", "general", "{}", assignee, now, now))
}

func TestUpdateTicketUnassigns(t *testing.T) {
	h, mock := newHandler(t)

	expectOwnedTicket(mock, "11111111-1111-1111-1111-111111111111")
	mock.ExpectQuery("UPDATE tickets SET status").
		WithArgs("open", "normal", nil, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	req := withUser(httptest.NewRequest(http.MethodPut, "/api/tickets/update?id=t1", strings.NewReader(`{"assignee_id":""}`)), "u1")
	w := httptest.NewRecorder()
	h.UpdateTicket(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"assignee_id":null`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTicketRejectsMalformedAssignee(t *testing.T) {
	for _, body := range []string{`{"assignee_id":"agent-7"}`, `{"assignee_email":"not-an-email"}`} {
		h, mock := newHandler(t)
		expectOwnedTicket(mock, nil)

		req := withUser(httptest.NewRequest(http.MethodPut, "/api/tickets/update?id=t1", strings.NewReader(body)), "u1")
		w := httptest.NewRecorder()
		h.UpdateTicket(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
