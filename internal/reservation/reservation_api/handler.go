package reservation_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/reservation"
	"ms-reservations/internal/utils"
)

type Handler struct {
	Service *reservation.Service
	Logger  *logger.Logger
}

func NewHandler(service *reservation.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// Reserve handles POST /tickets/reserve.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req models.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Reserve: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	purchase, err := h.Service.Reserve(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Reserve: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusCreated, models.ReserveResponse{
		PurchaseID: purchase.PurchaseID,
		LineItems:  purchase.LineItems,
	})
	h.Logger.Info("API", fmt.Sprintf("Reserve: purchase %s created", purchase.PurchaseID))
}

// Refund handles POST /tickets/refund.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Refund: failed to decode request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.Service.Refund(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Refund: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
	h.Logger.Info("API", fmt.Sprintf("Refund: purchase %s now %s", result.PurchaseID, result.Status))
}

// Availability handles GET /tickets/availability?ticketTypeId=.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	ticketTypeID := r.URL.Query().Get("ticketTypeId")

	remaining, err := h.Service.Availability(r.Context(), ticketTypeID)
	if err != nil {
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{"remaining_availability": remaining})
}

// GetPurchase handles GET /purchases/{purchaseId}.
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	purchaseID := chi.URLParam(r, "purchaseId")

	purchase, err := h.Service.GetPurchase(r.Context(), purchaseID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPurchase: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, purchase)
}

// CreateTicketType handles POST /ticket-types.
func (h *Handler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	var req models.TicketTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tt, err := h.Service.CreateTicketType(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTicketType: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusCreated, tt)
}

// GetTicketType handles GET /ticket-types/{ticketTypeId}.
func (h *Handler) GetTicketType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketTypeId")

	tt, err := h.Service.GetTicketType(r.Context(), id)
	if err != nil {
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, tt)
}

// ListTicketTypes handles GET /events/{eventId}/ticket-types.
func (h *Handler) ListTicketTypes(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	types, err := h.Service.GetTicketTypesByEvent(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, types)
}

// OpenSales handles POST /ticket-types/{ticketTypeId}/open.
func (h *Handler) OpenSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketTypeId")

	if err := h.Service.OpenSales(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("OpenSales: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("sales opened", nil))
}

// CloseSales handles POST /ticket-types/{ticketTypeId}/close.
func (h *Handler) CloseSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ticketTypeId")

	if err := h.Service.CloseSales(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CloseSales: %v", err))
		utils.WriteError(w, errs.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("sales closed", nil))
}
