package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-reservations/internal/config"
	"ms-reservations/internal/models"
)

func main() {
	reset := flag.Bool("reset", false, "drop tables before creating them")
	seed := flag.Bool("seed", false, "insert sample data")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()

	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if *reset {
		log.Println("Dropping tables...")
		dropTables(ctx, db)
	}

	log.Println("Creating tables...")
	createTables(ctx, db)

	if *seed {
		log.Println("Seeding sample data...")
		seedData(ctx, db)
	}

	log.Println("Done.")
}

func tables() []interface{} {
	return []interface{}{
		(*models.TicketType)(nil),
		(*models.Purchase)(nil),
		(*models.RsvpRecord)(nil),
		(*models.CheckInEvent)(nil),
	}
}

func dropTables(ctx context.Context, db *bun.DB) {
	for _, m := range tables() {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	for _, m := range tables() {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	types := []models.TicketType{
		{
			TicketTypeID:          "tt_sample_general",
			EventID:               "evt_sample",
			Label:                 "General Admission",
			UnitPrice:             4500,
			TotalCapacity:         200,
			RemainingAvailability: 200,
			Perks:                 []string{"Entry"},
			LifecycleStatus:       models.TicketTypeOnSale,
			CreatedAt:             time.Now(),
		},
		{
			TicketTypeID:          "tt_sample_vip",
			EventID:               "evt_sample",
			Label:                 "VIP",
			UnitPrice:             12000,
			TotalCapacity:         25,
			RemainingAvailability: 25,
			Perks:                 []string{"Entry", "Lounge access", "Welcome drink"},
			LifecycleStatus:       models.TicketTypeOnSale,
			CreatedAt:             time.Now(),
		},
	}
	for _, tt := range types {
		if _, err := db.NewInsert().Model(&tt).Exec(ctx); err != nil {
			log.Printf("Failed to seed ticket type %s: %v", tt.TicketTypeID, err)
		}
	}

	rsvp := models.RsvpRecord{
		DocumentNumber:    "RSVP-0000000000-000001",
		EventID:           "evt_sample",
		FullName:          "Sample Guest",
		EmailAddress:      "guest@example.com",
		NumberOfAttendees: 4,
		CreatedAt:         time.Now(),
	}
	if _, err := db.NewInsert().Model(&rsvp).Exec(ctx); err != nil {
		log.Printf("Failed to seed rsvp: %v", err)
	}
}
