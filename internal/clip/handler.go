package handler

import (
	"net/http"

	"seeksy/internal/clip/model"
	"seeksy/internal/clip/service"
	"seeksy/middleware"
	"seeksy/pkg/render"
	"seeksy/pkg/respond"
)

type ClipHandler struct {
	Service *service.ClipService
}

func NewClipHandler(service *service.ClipService) *ClipHandler {
	return &ClipHandler{Service: service}
}

func (h *ClipHandler) SubmitClip(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.ClipRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	c, err := h.Service.Submit(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, c)
}

func (h *ClipHandler) GetClips(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	clips, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, clips)
}

func (h *ClipHandler) GetClip(w http.ResponseWriter, r *http.Request) {
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

func (h *ClipHandler) DeleteClip(w http.ResponseWriter, r *http.Request) {
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
	respond.Text(w, http.StatusOK, "Clip deleted successfully")
}

// Webhook receives render callbacks. It is authenticated by the shared
// token in the query string, not by a user JWT.
func (h *ClipHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var cb render.Callback
	if err := respond.Decode(r, &cb); err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.Service.HandleCallback(r.Context(), r.URL.Query().Get("token"), cb); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Text(w, http.StatusOK, "OK")
}
