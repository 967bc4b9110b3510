package reservation_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservations/internal/errs"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/reservation"
	"ms-reservations/internal/reservation/reservation_api"
	"ms-reservations/internal/utils"
)

// memStore backs the handler tests with the same guarded-decrement contract
// as the real store.
type memStore struct {
	mu        sync.Mutex
	types     map[string]*models.TicketType
	purchases map[string]models.Purchase
}

func newMemStore() *memStore {
	return &memStore{
		types:     make(map[string]*models.TicketType),
		purchases: make(map[string]models.Purchase),
	}
}

func (s *memStore) CreateTicketType(ctx context.Context, tt models.TicketType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.types[tt.TicketTypeID] = &tt
	return nil
}

func (s *memStore) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tt, ok := s.types[id]
	if !ok {
		return nil, errs.NotFound("ticket type", id)
	}
	cp := *tt
	return &cp, nil
}

func (s *memStore) GetTicketTypesByEvent(ctx context.Context, eventID string) ([]models.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TicketType
	for _, tt := range s.types {
		if tt.EventID == eventID {
			out = append(out, *tt)
		}
	}
	return out, nil
}

func (s *memStore) SetLifecycleStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tt, ok := s.types[id]
	if !ok {
		return errs.NotFound("ticket type", id)
	}
	tt.LifecycleStatus = status
	return nil
}

func (s *memStore) GetPurchaseByID(ctx context.Context, id string) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[id]
	if !ok {
		return nil, errs.NotFound("purchase", id)
	}
	return &p, nil
}

func (s *memStore) ReservePurchase(ctx context.Context, p models.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, li := range p.LineItems {
		tt, ok := s.types[li.TicketTypeID]
		if !ok {
			return errs.NotFound("ticket type", li.TicketTypeID)
		}
		if tt.RemainingAvailability < li.Quantity {
			return &errs.InsufficientAvailabilityError{TicketTypeID: li.TicketTypeID}
		}
	}
	for _, li := range p.LineItems {
		s.types[li.TicketTypeID].RemainingAvailability -= li.Quantity
	}
	s.purchases[p.PurchaseID] = p
	return nil
}

func (s *memStore) RefundPurchase(ctx context.Context, purchaseID, ticketTypeID string, qty int) (*models.Purchase, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.purchases[purchaseID]
	if !ok {
		return nil, 0, errs.NotFound("purchase", purchaseID)
	}
	if p.Status == models.PurchaseRefunded {
		return nil, 0, errs.ErrAlreadyRefunded
	}
	idx := -1
	for i, li := range p.LineItems {
		if li.TicketTypeID == ticketTypeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, 0, errs.Validationf("purchase %s has no line item for ticket type %s", purchaseID, ticketTypeID)
	}
	if p.LineItems[idx].Quantity < qty {
		return nil, 0, errs.Validationf("cannot refund %d units, only %d remain on the line item", qty, p.LineItems[idx].Quantity)
	}
	amount := p.LineItems[idx].UnitPriceAtSale * int64(qty)

	updated := p
	updated.LineItems = make([]models.LineItem, 0, len(p.LineItems))
	for i, li := range p.LineItems {
		if i == idx {
			li.Quantity -= qty
			if li.Quantity == 0 {
				continue
			}
		}
		updated.LineItems = append(updated.LineItems, li)
	}
	if len(updated.LineItems) == 0 {
		updated.Status = models.PurchaseRefunded
	} else {
		updated.Status = models.PurchasePartiallyRefunded
	}

	if tt, ok := s.types[ticketTypeID]; ok {
		tt.RemainingAvailability += qty
		if tt.RemainingAvailability > tt.TotalCapacity {
			tt.RemainingAvailability = tt.TotalCapacity
		}
	}
	s.purchases[purchaseID] = updated
	return &updated, amount, nil
}

type approveAll struct{}

func (approveAll) Confirm(ctx context.Context, amount int64, currency, reference string) (string, error) {
	return "test-ref", nil
}

func (approveAll) Void(ctx context.Context, paymentRef string) error { return nil }

func setupRouter(store *memStore) *chi.Mux {
	log := logger.NewLogger()
	svc := reservation.NewService(store, approveAll{}, nil, nil, nil, "dkk", log)
	h := reservation_api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Post("/tickets/reserve", h.Reserve)
	r.Post("/tickets/refund", h.Refund)
	r.Get("/tickets/availability", h.Availability)
	r.Get("/purchases/{purchaseId}", h.GetPurchase)
	r.Post("/ticket-types", h.CreateTicketType)
	r.Get("/ticket-types/{ticketTypeId}", h.GetTicketType)
	r.Post("/ticket-types/{ticketTypeId}/open", h.OpenSales)
	r.Post("/ticket-types/{ticketTypeId}/close", h.CloseSales)
	return r
}

func seedOnSale(store *memStore, id string, price int64, remaining int) {
	store.types[id] = &models.TicketType{
		TicketTypeID:          id,
		EventID:               "evt-1",
		Label:                 "General",
		UnitPrice:             price,
		TotalCapacity:         100,
		RemainingAvailability: remaining,
		LifecycleStatus:       models.TicketTypeOnSale,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReserveEndpoint(t *testing.T) {
	store := newMemStore()
	seedOnSale(store, "tt-ga", 4500, 10)
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodPost, "/tickets/reserve", models.ReserveRequest{
		EventID:   "evt-1",
		LineItems: []models.ReserveLineItem{{TicketTypeID: "tt-ga", Quantity: 2}},
		Buyer:     models.BuyerDetails{Name: "Ada", Email: "ada@example.com", Phone: "+45"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp models.ReserveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PurchaseID)
	require.Len(t, resp.LineItems, 1)
	assert.Equal(t, int64(4500), resp.LineItems[0].UnitPriceAtSale)
}

func TestReserveEndpointInsufficient(t *testing.T) {
	store := newMemStore()
	seedOnSale(store, "tt-ga", 4500, 1)
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodPost, "/tickets/reserve", models.ReserveRequest{
		EventID:   "evt-1",
		LineItems: []models.ReserveLineItem{{TicketTypeID: "tt-ga", Quantity: 2}},
		Buyer:     models.BuyerDetails{Name: "Ada", Email: "ada@example.com", Phone: "+45"},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReserveEndpointBadBody(t *testing.T) {
	router := setupRouter(newMemStore())

	req := httptest.NewRequest(http.MethodPost, "/tickets/reserve", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefundEndpoint(t *testing.T) {
	store := newMemStore()
	seedOnSale(store, "tt-ga", 4500, 10)
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodPost, "/tickets/reserve", models.ReserveRequest{
		EventID:   "evt-1",
		LineItems: []models.ReserveLineItem{{TicketTypeID: "tt-ga", Quantity: 3}},
		Buyer:     models.BuyerDetails{Name: "Ada", Email: "ada@example.com", Phone: "+45"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.ReserveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodPost, "/tickets/refund", models.RefundRequest{
		PurchaseID:   created.PurchaseID,
		TicketTypeID: "tt-ga",
		Quantity:     1,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result models.RefundResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.PurchasePartiallyRefunded, result.Status)
	assert.Equal(t, int64(4500), result.AmountRefunded)
}

func TestRefundEndpointUnknownPurchase(t *testing.T) {
	router := setupRouter(newMemStore())

	w := doJSON(t, router, http.MethodPost, "/tickets/refund", models.RefundRequest{
		PurchaseID:   "missing",
		TicketTypeID: "tt-ga",
		Quantity:     1,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefundEndpointAlreadyRefunded(t *testing.T) {
	store := newMemStore()
	seedOnSale(store, "tt-ga", 4500, 10)
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodPost, "/tickets/reserve", models.ReserveRequest{
		EventID:   "evt-1",
		LineItems: []models.ReserveLineItem{{TicketTypeID: "tt-ga", Quantity: 2}},
		Buyer:     models.BuyerDetails{Name: "Ada", Email: "ada@example.com", Phone: "+45"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.ReserveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	refund := models.RefundRequest{
		PurchaseID:   created.PurchaseID,
		TicketTypeID: "tt-ga",
		Quantity:     2,
	}
	w = doJSON(t, router, http.MethodPost, "/tickets/refund", refund)
	require.Equal(t, http.StatusOK, w.Code)

	refund.Quantity = 1
	w = doJSON(t, router, http.MethodPost, "/tickets/refund", refund)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	store := newMemStore()
	seedOnSale(store, "tt-ga", 4500, 7)
	router := setupRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/tickets/availability?ticketTypeId=tt-ga", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp["remaining_availability"])
}

func TestAvailabilityEndpointMissingParam(t *testing.T) {
	router := setupRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/tickets/availability", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketTypeLifecycleEndpoints(t *testing.T) {
	store := newMemStore()
	router := setupRouter(store)

	w := doJSON(t, router, http.MethodPost, "/ticket-types", models.TicketTypeRequest{
		EventID:       "evt-1",
		Label:         "VIP",
		UnitPrice:     12000,
		TotalCapacity: 25,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tt models.TicketType
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tt))
	assert.Equal(t, models.TicketTypeDraft, tt.LifecycleStatus)

	w = doJSON(t, router, http.MethodPost, "/ticket-types/"+tt.TicketTypeID+"/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ack utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.True(t, ack.Success)
	assert.Equal(t, "sales opened", ack.Message)

	req := httptest.NewRequest(http.MethodGet, "/ticket-types/"+tt.TicketTypeID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tt))
	assert.Equal(t, models.TicketTypeOnSale, tt.LifecycleStatus)

	w = doJSON(t, router, http.MethodPost, "/ticket-types/"+tt.TicketTypeID+"/close", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetPurchaseEndpointNotFound(t *testing.T) {
	router := setupRouter(newMemStore())

	req := httptest.NewRequest(http.MethodGet, "/purchases/missing", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
