package reservation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/payment"
	"ms-reservations/internal/qrpass"
	"ms-reservations/internal/utils"
)

// DBLayer is what the reservation service needs from the document store. The
// composite operations are transactional: ReservePurchase either decrements
// every line item and writes the purchase, or leaves the counters untouched.
type DBLayer interface {
	CreateTicketType(ctx context.Context, tt models.TicketType) error
	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
	GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error)
	SetLifecycleStatus(ctx context.Context, id, status string) error
	GetPurchaseByID(ctx context.Context, id string) (*models.Purchase, error)
	ReservePurchase(ctx context.Context, p models.Purchase) error
	RefundPurchase(ctx context.Context, purchaseID, ticketTypeID string, qty int) (*models.Purchase, int64, error)
}

type EventPublisher interface {
	PublishPurchaseCompleted(purchase models.Purchase) error
	PublishPurchaseRefunded(result models.RefundResult) error
}

// AvailabilityCache is the display-read snapshot; all methods are
// best-effort and never fail the business operation.
type AvailabilityCache interface {
	Get(ctx context.Context, ticketTypeID string) (int, bool)
	Set(ctx context.Context, ticketTypeID string, remaining int)
	Invalidate(ctx context.Context, ticketTypeIDs ...string)
}

type Service struct {
	DB        DBLayer
	Payments  payment.Confirmer
	Publisher EventPublisher
	Cache     AvailabilityCache
	Passes    *qrpass.Generator
	Currency  string
	logger    *logger.Logger
}

func NewService(db DBLayer, payments payment.Confirmer, publisher EventPublisher, cache AvailabilityCache, passes *qrpass.Generator, currency string, log *logger.Logger) *Service {
	return &Service{
		DB:        db,
		Payments:  payments,
		Publisher: publisher,
		Cache:     cache,
		Passes:    passes,
		Currency:  currency,
		logger:    log,
	}
}

// ---------------- TICKET TYPES ----------------

func (s *Service) CreateTicketType(ctx context.Context, req models.TicketTypeRequest) (*models.TicketType, error) {
	if strings.TrimSpace(req.EventID) == "" {
		return nil, errs.Validationf("event_id is required")
	}
	if strings.TrimSpace(req.Label) == "" {
		return nil, errs.Validationf("label is required")
	}
	if req.UnitPrice < 0 {
		return nil, errs.Validationf("unit_price must not be negative")
	}
	if req.TotalCapacity <= 0 {
		return nil, errs.Validationf("total_capacity must be positive")
	}

	tt := models.TicketType{
		TicketTypeID:          utils.GenerateTicketTypeID(),
		EventID:               req.EventID,
		Label:                 req.Label,
		UnitPrice:             req.UnitPrice,
		TotalCapacity:         req.TotalCapacity,
		RemainingAvailability: req.TotalCapacity,
		Perks:                 req.Perks,
		LifecycleStatus:       models.TicketTypeDraft,
		CreatedAt:             time.Now(),
	}
	if err := s.DB.CreateTicketType(ctx, tt); err != nil {
		return nil, err
	}
	s.logger.LogDatabase("INSERT", "ticket_types", fmt.Sprintf("created %s (%s, capacity %d)", tt.TicketTypeID, tt.Label, tt.TotalCapacity))
	return &tt, nil
}

func (s *Service) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	return s.DB.GetTicketType(ctx, id)
}

func (s *Service) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	return s.DB.GetTicketTypesByEvent(ctx, eventID)
}

// OpenSales moves a draft ticket type on sale.
func (s *Service) OpenSales(ctx context.Context, id string) error {
	tt, err := s.DB.GetTicketType(ctx, id)
	if err != nil {
		return err
	}
	if tt.LifecycleStatus != models.TicketTypeDraft {
		return errs.Validationf("ticket type %s is %s, only draft types can open sales", id, tt.LifecycleStatus)
	}
	return s.DB.SetLifecycleStatus(ctx, id, models.TicketTypeOnSale)
}

// CloseSales soft-retires a ticket type. Purchases referencing it stay valid.
func (s *Service) CloseSales(ctx context.Context, id string) error {
	tt, err := s.DB.GetTicketType(ctx, id)
	if err != nil {
		return err
	}
	if tt.LifecycleStatus == models.TicketTypeClosed {
		return nil
	}
	return s.DB.SetLifecycleStatus(ctx, id, models.TicketTypeClosed)
}

// ---------------- RESERVE ----------------

// Reserve validates the request, confirms payment, then commits the
// decrements and the purchase record in one store transaction. A failed
// commit voids the payment confirmation; a lost availability race surfaces
// as InsufficientAvailability with the counters exactly as before the call.
func (s *Service) Reserve(ctx context.Context, req models.ReserveRequest) (*models.Purchase, error) {
	if err := validateReserveRequest(req); err != nil {
		return nil, err
	}

	purchaseID := uuid.NewString()
	lineItems := make([]models.LineItem, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		tt, err := s.DB.GetTicketType(ctx, item.TicketTypeID)
		if err != nil {
			return nil, err
		}
		if tt.EventID != req.EventID {
			return nil, errs.Validationf("ticket type %s does not belong to event %s", item.TicketTypeID, req.EventID)
		}
		if tt.LifecycleStatus != models.TicketTypeOnSale {
			return nil, errs.Validationf("ticket type %s is not on sale", item.TicketTypeID)
		}
		// Price is frozen per purchase here; later price changes must not
		// touch existing purchases.
		lineItems = append(lineItems, models.LineItem{
			TicketTypeID:    item.TicketTypeID,
			UnitPriceAtSale: tt.UnitPrice,
			Quantity:        item.Quantity,
		})
	}

	purchase := models.Purchase{
		PurchaseID: purchaseID,
		EventID:    req.EventID,
		Buyer:      req.Buyer,
		LineItems:  lineItems,
		Status:     models.PurchaseCompleted,
		CreatedAt:  time.Now(),
	}

	if s.Passes != nil {
		pass, err := s.Passes.GeneratePass(qrpass.PassPayload{
			Kind:    qrpass.KindPurchase,
			ID:      purchaseID,
			EventID: req.EventID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR pass: %w", err)
		}
		purchase.QRPass = pass
	}

	paymentRef, err := s.Payments.Confirm(ctx, purchase.TotalAmount(), s.Currency, purchaseID)
	if err != nil {
		s.logger.LogReserve(purchaseID, fmt.Sprintf("payment declined: %v", err))
		return nil, fmt.Errorf("%w: %v", errs.ErrPaymentDeclined, err)
	}
	purchase.PaymentRef = paymentRef

	if err := s.DB.ReservePurchase(ctx, purchase); err != nil {
		s.logger.LogReserve(purchaseID, fmt.Sprintf("reservation failed, voiding payment %s: %v", paymentRef, err))
		if voidErr := s.Payments.Void(ctx, paymentRef); voidErr != nil {
			s.logger.Error("PAYMENT", fmt.Sprintf("Failed to void payment %s: %v", paymentRef, voidErr))
		}
		return nil, err
	}

	s.refreshCache(ctx, lineItems)
	s.logger.LogReserve(purchaseID, fmt.Sprintf("reserved %d line item(s) for event %s", len(lineItems), req.EventID))

	if s.Publisher != nil {
		if err := s.Publisher.PublishPurchaseCompleted(purchase); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (purchase completed): %v", err))
		}
	}

	return &purchase, nil
}

func validateReserveRequest(req models.ReserveRequest) error {
	if strings.TrimSpace(req.EventID) == "" {
		return errs.Validationf("event_id is required")
	}
	if len(req.LineItems) == 0 {
		return errs.Validationf("at least one line item is required")
	}
	seen := make(map[string]bool, len(req.LineItems))
	for _, item := range req.LineItems {
		if strings.TrimSpace(item.TicketTypeID) == "" {
			return errs.Validationf("ticket_type_id is required on every line item")
		}
		if item.Quantity <= 0 {
			return errs.Validationf("quantity must be positive for ticket type %s", item.TicketTypeID)
		}
		if seen[item.TicketTypeID] {
			return errs.Validationf("duplicate line item for ticket type %s", item.TicketTypeID)
		}
		seen[item.TicketTypeID] = true
	}
	if strings.TrimSpace(req.Buyer.Name) == "" ||
		strings.TrimSpace(req.Buyer.Email) == "" ||
		strings.TrimSpace(req.Buyer.Phone) == "" {
		return errs.Validationf("buyer name, email and phone are all required")
	}
	return nil
}

// ---------------- REFUND ----------------

// Refund reverses qty units of one line item. The store owns the whole
// read-validate-rewrite cycle inside one transaction, so two refunds of the
// same purchase can never both apply from a stale read. Status only ever
// moves forward: completed → partiallyRefunded → refunded.
func (s *Service) Refund(ctx context.Context, req models.RefundRequest) (*models.RefundResult, error) {
	if strings.TrimSpace(req.PurchaseID) == "" || strings.TrimSpace(req.TicketTypeID) == "" {
		return nil, errs.Validationf("purchase_id and ticket_type_id are required")
	}
	if req.Quantity < 1 {
		return nil, errs.Validationf("quantity must be at least 1")
	}

	updated, amountRefunded, err := s.DB.RefundPurchase(ctx, req.PurchaseID, req.TicketTypeID, req.Quantity)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Invalidate(ctx, req.TicketTypeID)
	}

	result := models.RefundResult{
		PurchaseID:       req.PurchaseID,
		Status:           updated.Status,
		RefundedQuantity: req.Quantity,
		AmountRefunded:   amountRefunded,
	}
	s.logger.LogRefund(req.PurchaseID, fmt.Sprintf("refunded %d x %s, status now %s", req.Quantity, req.TicketTypeID, updated.Status))

	if s.Publisher != nil {
		if err := s.Publisher.PublishPurchaseRefunded(result); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("Publish error (purchase refunded): %v", err))
		}
	}

	return &result, nil
}

// ---------------- READS ----------------

func (s *Service) GetPurchase(ctx context.Context, id string) (*models.Purchase, error) {
	return s.DB.GetPurchaseByID(ctx, id)
}

// Availability serves the dashboard read: cached snapshot when present,
// store fallback otherwise. Correctness-critical reads never come here.
func (s *Service) Availability(ctx context.Context, ticketTypeID string) (int, error) {
	if strings.TrimSpace(ticketTypeID) == "" {
		return 0, errs.Validationf("ticketTypeId is required")
	}
	if s.Cache != nil {
		if remaining, ok := s.Cache.Get(ctx, ticketTypeID); ok {
			return remaining, nil
		}
	}
	tt, err := s.DB.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return 0, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, ticketTypeID, tt.RemainingAvailability)
	}
	return tt.RemainingAvailability, nil
}

func (s *Service) refreshCache(ctx context.Context, lineItems []models.LineItem) {
	if s.Cache == nil {
		return
	}
	ids := make([]string, len(lineItems))
	for i, li := range lineItems {
		ids[i] = li.TicketTypeID
	}
	s.Cache.Invalidate(ctx, ids...)
}
