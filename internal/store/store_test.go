package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-reservations/internal/models"
	"ms-reservations/internal/store"
)

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	// A single connection keeps the shared in-memory database alive for the
	// duration of the test.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { bunDB.Close() })

	ctx := context.Background()
	for _, m := range []interface{}{
		(*models.TicketType)(nil),
		(*models.Purchase)(nil),
		(*models.RsvpRecord)(nil),
		(*models.CheckInEvent)(nil),
	} {
		if err := bunDB.ResetModel(ctx, m); err != nil {
			t.Fatalf("Failed to reset model %T: %v", m, err)
		}
	}

	return store.New(bunDB)
}

func seedTicketType(t *testing.T, db *store.DB, id string, price int64, capacity, remaining int) models.TicketType {
	t.Helper()
	tt := models.TicketType{
		TicketTypeID:          id,
		EventID:               "evt-1",
		Label:                 "General",
		UnitPrice:             price,
		TotalCapacity:         capacity,
		RemainingAvailability: remaining,
		LifecycleStatus:       models.TicketTypeOnSale,
		CreatedAt:             time.Now().Round(time.Second),
	}
	if err := db.CreateTicketType(context.Background(), tt); err != nil {
		t.Fatalf("Failed to seed ticket type: %v", err)
	}
	return tt
}

func seedRsvp(t *testing.T, db *store.DB, doc string, attendees, checkedIn int) models.RsvpRecord {
	t.Helper()
	r := models.RsvpRecord{
		DocumentNumber:    doc,
		EventID:           "evt-1",
		FullName:          "Ada Guest",
		EmailAddress:      "ada@example.com",
		NumberOfAttendees: attendees,
		CheckedInCount:    checkedIn,
		CreatedAt:         time.Now().Round(time.Second),
	}
	if err := db.CreateRsvp(context.Background(), r); err != nil {
		t.Fatalf("Failed to seed rsvp: %v", err)
	}
	return r
}
