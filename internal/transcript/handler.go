package handler

import (
	"fmt"
	"net/http"

	"seeksy/internal/transcript/model"
	"seeksy/internal/transcript/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

type TranscriptHandler struct {
	Service *service.TranscriptService
}

func NewTranscriptHandler(service *service.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{Service: service}
}

func (h *TranscriptHandler) CreateTranscript(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.TranscribeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	t, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, t)
}

func (h *TranscriptHandler) GetTranscripts(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	transcripts, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, transcripts)
}

func (h *TranscriptHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	t, err := h.Service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// GetCaptions downloads the transcript as an SRT or VTT attachment.
func (h *TranscriptHandler) GetCaptions(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = model.FormatSRT
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	body, err := h.Service.Captions(r.Context(), id, userID, format)
	if err != nil {
		respond.Error(w, err)
		return
	}

	contentType := "application/x-subrip; charset=utf-8"
	if format == model.FormatVTT {
		contentType = "text/vtt; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, id, format))
	respond.Text(w, http.StatusOK, body)
}

func (h *TranscriptHandler) DeleteTranscript(w http.ResponseWriter, r *http.Request) {
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
	respond.Text(w, http.StatusOK, "Transcript deleted successfully")
}
