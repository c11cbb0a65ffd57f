package handler

import (
	"net/http"

	"seeksy/internal/proposal/model"
	"seeksy/internal/proposal/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

type ProposalHandler struct {
	Service *service.ProposalService
}

func NewProposalHandler(service *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{Service: service}
}

func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.ProposalRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	p, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

func (h *ProposalHandler) GetProposals(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	proposals, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, proposals)
}

func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	p, err := h.Service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *ProposalHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPut) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req model.ProposalRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	p, err := h.Service.Update(r.Context(), id, userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *ProposalHandler) SetProposalStatus(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPut) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req model.StatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	p, err := h.Service.SetStatus(r.Context(), id, userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *ProposalHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodDelete) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	if err := h.Service.Delete(r.Context(), id, userID); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Text(w, http.StatusOK, "Proposal deleted successfully")
}

func (h *ProposalHandler) SendProposal(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req model.SendRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, err)
			return
		}
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)
	email, _ := r.Context().Value(middleware.UserEmailKey).(string)

	p, err := h.Service.Send(r.Context(), id, userID, email, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}
