package handler

import (
	"net/http"

	"seeksy/internal/agent/model"
	"seeksy/internal/agent/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"

	"github.com/google/uuid"
)

type AgentHandler struct {
	Service *service.AgentService
}

func NewAgentHandler(service *service.AgentService) *AgentHandler {
	return &AgentHandler{Service: service}
}

func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.ChatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	resp, err := h.Service.Chat(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *AgentHandler) History(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	conversationID := r.URL.Query().Get("conversation_id")
	if _, err := uuid.Parse(conversationID); err != nil {
		http.Error(w, "Missing or invalid conversation_id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	messages, err := h.Service.History(r.Context(), conversationID, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, messages)
}

func (h *AgentHandler) ExplainSEO(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.SEORequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	resp, err := h.Service.ExplainSEO(r.Context(), req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}
