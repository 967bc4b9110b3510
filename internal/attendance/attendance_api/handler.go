package attendance_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservations/internal/attendance"
	"ms-reservations/internal/errs"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/utils"
)

type Handler struct {
	Service *attendance.Service
	Logger  *logger.Logger
}

func NewHandler(service *attendance.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// CheckIn handles POST /checkin.
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckIn: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := h.Service.CheckIn(r.Context(), req.DocumentNumber, req.CheckedInCount)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckIn: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"checkin_id": ev.CheckInID,
	})
}

// CheckInScan handles POST /checkin/scan with an encrypted QR pass body.
func (h *Handler) CheckInScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EncryptedPass  string `json:"encrypted_pass"`
		CheckedInCount int    `json:"checked_in_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, err := h.Service.CheckInFromPass(r.Context(), req.EncryptedPass, req.CheckedInCount)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckInScan: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"checkin_id":      ev.CheckInID,
		"document_number": ev.DocumentNumber,
		"guest_name":      ev.GuestName,
	})
}

// CreateRsvp handles POST /rsvps.
func (h *Handler) CreateRsvp(w http.ResponseWriter, r *http.Request) {
	var req models.RsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rsvp, err := h.Service.CreateRsvp(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateRsvp: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusCreated, rsvp)
	h.Logger.Info("API", fmt.Sprintf("CreateRsvp: %s created", rsvp.DocumentNumber))
}

// GetRsvp handles GET /rsvps/{documentNumber}.
func (h *Handler) GetRsvp(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "documentNumber")

	rsvp, err := h.Service.GetRsvp(r.Context(), doc)
	if err != nil {
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, rsvp)
}

// GetCheckInEvents handles GET /rsvps/{documentNumber}/checkins.
func (h *Handler) GetCheckInEvents(w http.ResponseWriter, r *http.Request) {
	doc := chi.URLParam(r, "documentNumber")

	events, err := h.Service.GetCheckInEvents(r.Context(), doc)
	if err != nil {
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, events)
}
