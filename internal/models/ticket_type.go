package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Lifecycle statuses for a ticket type. Once any purchase references a type
// it is closed, never deleted.
const (
	TicketTypeDraft  = "draft"
	TicketTypeOnSale = "onSale"
	TicketTypeClosed = "closed"
)

type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	TicketTypeID          string    `bun:"ticket_type_id,pk" json:"ticket_type_id"`
	EventID               string    `bun:"event_id,notnull" json:"event_id"`
	Label                 string    `bun:"label,notnull" json:"label"`
	UnitPrice             int64     `bun:"unit_price,notnull" json:"unit_price"` // minor currency units
	TotalCapacity         int       `bun:"total_capacity,notnull" json:"total_capacity"`
	RemainingAvailability int       `bun:"remaining_availability,notnull" json:"remaining_availability"`
	Perks                 []string  `bun:"perks" json:"perks,omitempty"`
	LifecycleStatus       string    `bun:"lifecycle_status,notnull" json:"lifecycle_status"`
	CreatedAt             time.Time `bun:"created_at,notnull" json:"created_at"`
}

type TicketTypeRequest struct {
	EventID       string   `json:"event_id"`
	Label         string   `json:"label"`
	UnitPrice     int64    `json:"unit_price"`
	TotalCapacity int      `json:"total_capacity"`
	Perks         []string `json:"perks"`
}
