package handler

import (
	"net/http"

	"seeksy/internal/forecast/model"
	"seeksy/internal/forecast/service"
	"seeksy/middleware"
	"seeksy/pkg/respond"
)

type ForecastHandler struct {
	Service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{Service: service}
}

func (h *ForecastHandler) GenerateForecast(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodPost) {
		return
	}

	var req model.ForecastRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	f, err := h.Service.Generate(r.Context(), userID, req)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, f)
}

func (h *ForecastHandler) GetForecasts(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	forecasts, err := h.Service.List(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, forecasts)
}

func (h *ForecastHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	if !respond.Method(w, r, http.MethodGet) {
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id parameter", http.StatusBadRequest)
		return
	}

	userID := r.Context().Value(middleware.UserIDKey).(string)

	f, err := h.Service.Get(r.Context(), id, userID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, f)
}

func (h *ForecastHandler) DeleteForecast(w http.ResponseWriter, r *http.Request) {
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
	respond.Text(w, http.StatusOK, "Forecast deleted successfully")
}
