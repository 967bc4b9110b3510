package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CheckInEvent is an append-only audit record. For any document number the sum
// of CheckedInCount across its events equals the RsvpRecord's checked_in_count.
type CheckInEvent struct {
	bun.BaseModel `bun:"table:checkin_events"`

	CheckInID      string    `bun:"checkin_id,pk" json:"checkin_id"`
	DocumentNumber string    `bun:"document_number,notnull" json:"document_number"`
	CheckedInCount int       `bun:"checked_in_count,notnull" json:"checked_in_count"`
	GuestName      string    `bun:"guest_name" json:"guest_name"`
	EmailAddress   string    `bun:"email_address" json:"email_address"`
	CheckedInAt    time.Time `bun:"checked_in_at,notnull" json:"checked_in_at"`
}

type CheckInRequest struct {
	DocumentNumber string `json:"document_number"`
	CheckedInCount int    `json:"checked_in_count"`
}
