package handler

import (
	"net/http"

	"seeksy/internal/campaign/model"
	"seeksy/internal/campaign/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

type CampaignHandler struct {
	Service *service.CampaignService
}

func NewCampaignHandler(service *service.CampaignService) *CampaignHandler {
	return &CampaignHandler{Service: service}
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.CampaignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	c, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

func (h *CampaignHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	campaigns, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, campaigns)
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	c, err := h.Service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPut) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	var req model.CampaignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	c, err := h.Service.Update(r.Context(), id, userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CampaignHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
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
	respond.Text(w, http.StatusOK, "Campaign deleted successfully")
}

func (h *CampaignHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	result, err := h.Service.Send(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, result)
}
