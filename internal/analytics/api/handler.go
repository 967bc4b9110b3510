package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservations/internal/analytics"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/utils"
)

type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

func NewHandler(service *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// GetEventSales handles GET /events/{eventId}/analytics/sales.
func (h *Handler) GetEventSales(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		utils.WriteError(w, http.StatusBadRequest, "event id is required")
		return
	}

	result, err := h.Service.GetEventSales(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventSales: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to aggregate sales")
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// GetEventCheckIns handles GET /events/{eventId}/analytics/checkins.
func (h *Handler) GetEventCheckIns(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	if eventID == "" {
		utils.WriteError(w, http.StatusBadRequest, "event id is required")
		return
	}

	result, err := h.Service.GetEventCheckIns(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEventCheckIns: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "failed to aggregate check-ins")
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}
