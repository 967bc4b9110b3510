package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RsvpRecord struct {
	bun.BaseModel `bun:"table:rsvps"`

	DocumentNumber    string    `bun:"document_number,pk" json:"document_number"`
	EventID           string    `bun:"event_id,notnull" json:"event_id"`
	FullName          string    `bun:"full_name,notnull" json:"full_name"`
	EmailAddress      string    `bun:"email_address,notnull" json:"email_address"`
	NumberOfAttendees int       `bun:"number_of_attendees,notnull" json:"number_of_attendees"`
	CheckedInCount    int       `bun:"checked_in_count,notnull" json:"checked_in_count"`
	LastCheckedInAt   time.Time `bun:"last_checked_in_at,nullzero" json:"last_checked_in_at,omitempty"`
	QRPass            []byte    `bun:"qr_pass" json:"qr_pass,omitempty"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Remaining is the un-admitted balance still available for check-in.
func (r *RsvpRecord) Remaining() int {
	return r.NumberOfAttendees - r.CheckedInCount
}

type RsvpRequest struct {
	EventID           string `json:"event_id"`
	FullName          string `json:"full_name"`
	EmailAddress      string `json:"email_address"`
	NumberOfAttendees int    `json:"number_of_attendees"`
}
