package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seeksy/internal/agent/repository"
	"seeksy/internal/agent/service"
	"seeksy/middleware"
	"seeksy/pkg/ai"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct{}

func (stubCompleter) Complete(context.Context, []ai.Message, ai.Options) (string, error) {
	return "ok", nil
}

func (stubCompleter) Model() string { return "stub" }

func newHandler(t *testing.T) (*AgentHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAgentHandler(service.NewAgentService(repository.NewMessageRepository(db), stubCompleter{})), mock
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestHistoryRequiresUUID(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.History(w, withUser(httptest.NewRequest(http.MethodGet, "/api/agent/history?conversation_id=abc", nil), "u1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRejectsBadConversationID(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.Chat(w, withUser(httptest.NewRequest(http.MethodPost, "/api/agent/chat",
		strings.NewReader(`{"conversation_id":"nope","message":"hi"}`)), "u1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExplainSEO(t *testing.T) {
	h, _ := newHandler(t)

	w := httptest.NewRecorder()
	h.ExplainSEO(w, withUser(httptest.NewRequest(http.MethodPost, "/api/agent/seo",
		strings.NewReader(`{"title":"Ep 1","keywords":["indie music"]}`)), "u1"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"explanation":"ok"`)
}
