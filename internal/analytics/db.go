package analytics

import (
	"context"

	"github.com/uptrace/bun"

	"ms-reservations/internal/models"
)

// DB handles analytics database operations
type DB struct {
	bun bun.IDB
}

func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

func (db *DB) GetPurchasesByEventID(ctx context.Context, eventID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := db.bun.NewSelect().
		Model(&purchases).
		Where("event_id = ?", eventID).
		Scan(ctx)
	return purchases, err
}

func (db *DB) GetTicketTypesByEventID(ctx context.Context, eventID string) ([]models.TicketType, error) {
	var types []models.TicketType
	err := db.bun.NewSelect().
		Model(&types).
		Where("event_id = ?", eventID).
		Scan(ctx)
	return types, err
}

func (db *DB) GetRsvpsByEventID(ctx context.Context, eventID string) ([]models.RsvpRecord, error) {
	var rsvps []models.RsvpRecord
	err := db.bun.NewSelect().
		Model(&rsvps).
		Where("event_id = ?", eventID).
		Scan(ctx)
	return rsvps, err
}

// GetCheckInEventCountByEventID counts check-in actions recorded for an event
func (db *DB) GetCheckInEventCountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := db.bun.NewRaw(
		"SELECT COUNT(*) FROM checkin_events c JOIN rsvps r ON c.document_number = r.document_number WHERE r.event_id = ?",
		eventID).
		Scan(ctx, &count)
	return count, err
}
