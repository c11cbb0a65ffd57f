package handler

import (
	"net/http"

	"seeksy/internal/milestone/model"
	"seeksy/internal/milestone/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

type MilestoneHandler struct {
	Service *service.MilestoneService
}

func NewMilestoneHandler(service *service.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{Service: service}
}

func (h *MilestoneHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.CreateMilestoneRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	m, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, m)
}

func (h *MilestoneHandler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	milestones, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, milestones)
}

func (h *MilestoneHandler) GetMilestone(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	m, err := h.Service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

func (h *MilestoneHandler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPut) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req model.UpdateMilestoneRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	m, err := h.Service.Update(r.Context(), id, userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

func (h *MilestoneHandler) DeleteMilestone(w http.ResponseWriter, r *http.Request) {
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
	respond.Text(w, http.StatusOK, "Milestone deleted successfully")
}

func (h *MilestoneHandler) BoardNotes(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.BoardNotesRequest
	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, err)
			return
		}
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	notes, err := h.Service.BoardNotes(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, notes)
}
