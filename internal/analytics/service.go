package analytics

import (
	"context"

	"ms-reservations/internal/models"
)

// Service aggregates the purchase ledger and the check-in audit trail for
// dashboards. Pure read side: snapshots here carry no correctness
// obligation and may lag the counters.
type Service struct {
	db *DB
}

func NewService(db *DB) *Service {
	return &Service{db: db}
}

// TypeSalesMetrics contains sales metrics for a single ticket type. Refunded
// units drop out of line items, so these figures are net of refunds.
type TypeSalesMetrics struct {
	TicketTypeID string `json:"ticket_type_id"`
	Label        string `json:"label"`
	UnitsSold    int    `json:"units_sold"`
	Revenue      int64  `json:"revenue"`
}

type EventSalesAnalytics struct {
	EventID        string             `json:"event_id"`
	TotalPurchases int                `json:"total_purchases"`
	TotalRefunded  int                `json:"fully_refunded_purchases"`
	NetRevenue     int64              `json:"net_revenue"`
	SalesByType    []TypeSalesMetrics `json:"sales_by_type"`
}

type EventCheckInAnalytics struct {
	EventID           string `json:"event_id"`
	TotalRsvps        int    `json:"total_rsvps"`
	PromisedAttendees int    `json:"promised_attendees"`
	CheckedInGuests   int    `json:"checked_in_guests"`
	CheckInActions    int    `json:"checkin_actions"`
}

// GetEventSales returns units and revenue per ticket type.
func (s *Service) GetEventSales(ctx context.Context, eventID string) (*EventSalesAnalytics, error) {
	purchases, err := s.db.GetPurchasesByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	types, err := s.db.GetTicketTypesByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	byType := make(map[string]*TypeSalesMetrics, len(types))
	order := make([]string, 0, len(types))
	for _, tt := range types {
		byType[tt.TicketTypeID] = &TypeSalesMetrics{
			TicketTypeID: tt.TicketTypeID,
			Label:        tt.Label,
		}
		order = append(order, tt.TicketTypeID)
	}

	result := &EventSalesAnalytics{EventID: eventID}
	for _, p := range purchases {
		result.TotalPurchases++
		if p.Status == models.PurchaseRefunded {
			result.TotalRefunded++
		}
		for _, li := range p.LineItems {
			m, ok := byType[li.TicketTypeID]
			if !ok {
				// Type retired or from another event's ledger; still count it.
				m = &TypeSalesMetrics{TicketTypeID: li.TicketTypeID}
				byType[li.TicketTypeID] = m
				order = append(order, li.TicketTypeID)
			}
			m.UnitsSold += li.Quantity
			m.Revenue += li.UnitPriceAtSale * int64(li.Quantity)
			result.NetRevenue += li.UnitPriceAtSale * int64(li.Quantity)
		}
	}

	for _, id := range order {
		result.SalesByType = append(result.SalesByType, *byType[id])
	}
	return result, nil
}

// GetEventCheckIns returns headcount totals for an event's RSVPs.
func (s *Service) GetEventCheckIns(ctx context.Context, eventID string) (*EventCheckInAnalytics, error) {
	rsvps, err := s.db.GetRsvpsByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	actions, err := s.db.GetCheckInEventCountByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	result := &EventCheckInAnalytics{EventID: eventID, CheckInActions: actions}
	for _, r := range rsvps {
		result.TotalRsvps++
		result.PromisedAttendees += r.NumberOfAttendees
		result.CheckedInGuests += r.CheckedInCount
	}
	return result, nil
}
