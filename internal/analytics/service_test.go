package analytics_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-reservations/internal/analytics"
	"ms-reservations/internal/models"
)

func setupAnalytics(t *testing.T) (*bun.DB, *analytics.Service) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
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

	return bunDB, analytics.NewService(analytics.NewDB(bunDB))
}

func insert(t *testing.T, db *bun.DB, model interface{}) {
	t.Helper()
	if _, err := db.NewInsert().Model(model).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to insert %T: %v", model, err)
	}
}

func TestGetEventSales(t *testing.T) {
	db, svc := setupAnalytics(t)
	ctx := context.Background()
	now := time.Now().Round(time.Second)

	insert(t, db, &models.TicketType{
		TicketTypeID: "tt-ga", EventID: "evt-1", Label: "General",
		UnitPrice: 4500, TotalCapacity: 100, RemainingAvailability: 95,
		LifecycleStatus: models.TicketTypeOnSale, CreatedAt: now,
	})
	insert(t, db, &models.TicketType{
		TicketTypeID: "tt-vip", EventID: "evt-1", Label: "VIP",
		UnitPrice: 12000, TotalCapacity: 20, RemainingAvailability: 19,
		LifecycleStatus: models.TicketTypeOnSale, CreatedAt: now,
	})

	insert(t, db, &models.Purchase{
		PurchaseID: "pur-1", EventID: "evt-1", Status: models.PurchaseCompleted,
		LineItems: []models.LineItem{
			{TicketTypeID: "tt-ga", UnitPriceAtSale: 4500, Quantity: 3},
			{TicketTypeID: "tt-vip", UnitPriceAtSale: 12000, Quantity: 1},
		},
		CreatedAt: now,
	})
	insert(t, db, &models.Purchase{
		PurchaseID: "pur-2", EventID: "evt-1", Status: models.PurchasePartiallyRefunded,
		LineItems: []models.LineItem{
			{TicketTypeID: "tt-ga", UnitPriceAtSale: 4500, Quantity: 2},
		},
		CreatedAt: now,
	})
	insert(t, db, &models.Purchase{
		PurchaseID: "pur-3", EventID: "evt-1", Status: models.PurchaseRefunded,
		LineItems: nil, CreatedAt: now,
	})
	// Another event's ledger stays out of the figures.
	insert(t, db, &models.Purchase{
		PurchaseID: "pur-other", EventID: "evt-2", Status: models.PurchaseCompleted,
		LineItems: []models.LineItem{
			{TicketTypeID: "tt-other", UnitPriceAtSale: 1000, Quantity: 5},
		},
		CreatedAt: now,
	})

	sales, err := svc.GetEventSales(ctx, "evt-1")
	require.NoError(t, err)

	assert.Equal(t, 3, sales.TotalPurchases)
	assert.Equal(t, 1, sales.TotalRefunded)
	assert.Equal(t, int64(5*4500+12000), sales.NetRevenue)

	require.Len(t, sales.SalesByType, 2)
	byID := make(map[string]analytics.TypeSalesMetrics)
	for _, m := range sales.SalesByType {
		byID[m.TicketTypeID] = m
	}
	assert.Equal(t, 5, byID["tt-ga"].UnitsSold)
	assert.Equal(t, int64(22500), byID["tt-ga"].Revenue)
	assert.Equal(t, 1, byID["tt-vip"].UnitsSold)
	assert.Equal(t, int64(12000), byID["tt-vip"].Revenue)
}

func TestGetEventSalesEmpty(t *testing.T) {
	_, svc := setupAnalytics(t)

	sales, err := svc.GetEventSales(context.Background(), "evt-empty")
	require.NoError(t, err)
	assert.Zero(t, sales.TotalPurchases)
	assert.Zero(t, sales.NetRevenue)
	assert.Empty(t, sales.SalesByType)
}

func TestGetEventCheckIns(t *testing.T) {
	db, svc := setupAnalytics(t)
	ctx := context.Background()
	now := time.Now().Round(time.Second)

	insert(t, db, &models.RsvpRecord{
		DocumentNumber: "RSVP-1", EventID: "evt-1", FullName: "Ada Guest",
		EmailAddress: "ada@example.com", NumberOfAttendees: 4, CheckedInCount: 3,
		CreatedAt: now,
	})
	insert(t, db, &models.RsvpRecord{
		DocumentNumber: "RSVP-2", EventID: "evt-1", FullName: "Grace Guest",
		EmailAddress: "grace@example.com", NumberOfAttendees: 2, CheckedInCount: 0,
		CreatedAt: now,
	})
	insert(t, db, &models.RsvpRecord{
		DocumentNumber: "RSVP-3", EventID: "evt-2", FullName: "Linus Guest",
		EmailAddress: "linus@example.com", NumberOfAttendees: 5, CheckedInCount: 5,
		CreatedAt: now,
	})

	for _, count := range []int{2, 1} {
		insert(t, db, &models.CheckInEvent{
			CheckInID: uuid.NewString(), DocumentNumber: "RSVP-1",
			CheckedInCount: count, GuestName: "Ada Guest",
			EmailAddress: "ada@example.com", CheckedInAt: now,
		})
	}
	insert(t, db, &models.CheckInEvent{
		CheckInID: uuid.NewString(), DocumentNumber: "RSVP-3",
		CheckedInCount: 5, GuestName: "Linus Guest",
		EmailAddress: "linus@example.com", CheckedInAt: now,
	})

	checkins, err := svc.GetEventCheckIns(ctx, "evt-1")
	require.NoError(t, err)

	assert.Equal(t, 2, checkins.TotalRsvps)
	assert.Equal(t, 6, checkins.PromisedAttendees)
	assert.Equal(t, 3, checkins.CheckedInGuests)
	assert.Equal(t, 2, checkins.CheckInActions)
}
