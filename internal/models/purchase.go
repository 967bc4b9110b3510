package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Purchase statuses form a one-way chain: completed → partiallyRefunded → refunded.
const (
	PurchaseCompleted         = "completed"
	PurchasePartiallyRefunded = "partiallyRefunded"
	PurchaseRefunded          = "refunded"
)

type BuyerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// LineItem is one ticket type within a purchase. Quantity is always > 0; a
// line refunded down to zero is removed from the purchase entirely.
type LineItem struct {
	TicketTypeID    string `json:"ticket_type_id"`
	UnitPriceAtSale int64  `json:"unit_price_at_sale"`
	Quantity        int    `json:"quantity"`
}

type Purchase struct {
	bun.BaseModel `bun:"table:purchases"`

	PurchaseID string       `bun:"purchase_id,pk" json:"purchase_id"`
	EventID    string       `bun:"event_id,notnull" json:"event_id"`
	Buyer      BuyerDetails `bun:"buyer" json:"buyer"`
	LineItems  []LineItem   `bun:"line_items" json:"line_items"`
	Status     string       `bun:"status,notnull" json:"status"`
	PaymentRef string       `bun:"payment_ref" json:"payment_ref,omitempty"`
	QRPass     []byte       `bun:"qr_pass" json:"qr_pass,omitempty"`
	CreatedAt  time.Time    `bun:"created_at,notnull" json:"created_at"`
}

// TotalAmount sums the purchase's current line items in minor units.
func (p *Purchase) TotalAmount() int64 {
	var total int64
	for _, li := range p.LineItems {
		total += li.UnitPriceAtSale * int64(li.Quantity)
	}
	return total
}

type ReserveLineItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

type ReserveRequest struct {
	EventID   string            `json:"event_id"`
	LineItems []ReserveLineItem `json:"line_items"`
	Buyer     BuyerDetails      `json:"buyer_details"`
}

type ReserveResponse struct {
	PurchaseID string     `json:"purchase_id"`
	LineItems  []LineItem `json:"line_items"`
}

type RefundRequest struct {
	PurchaseID   string `json:"purchase_id"`
	TicketTypeID string `json:"ticket_type_id"`
	Quantity     int    `json:"quantity"`
}

// RefundResult reports the purchase state after a refund was applied.
type RefundResult struct {
	PurchaseID       string `json:"purchase_id"`
	Status           string `json:"status"`
	RefundedQuantity int    `json:"refunded_quantity"`
	AmountRefunded   int64  `json:"amount_refunded"`
}
