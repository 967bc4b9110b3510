package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-reservations/internal/analytics"
	analytics_api "ms-reservations/internal/analytics/api"
	"ms-reservations/internal/attendance"
	"ms-reservations/internal/attendance/attendance_api"
	"ms-reservations/internal/auth"
	"ms-reservations/internal/cache"
	"ms-reservations/internal/config"
	"ms-reservations/internal/kafka"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/payment"
	"ms-reservations/internal/qrpass"
	"ms-reservations/internal/reservation"
	"ms-reservations/internal/reservation/reservation_api"
	"ms-reservations/internal/store"
)

func connectDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	log.Info("DATABASE", "Postgres connection successful")

	return bun.NewDB(sqldb, pgdialect.New())
}

func newConfirmer(cfg *config.Config, log *logger.Logger) payment.Confirmer {
	if cfg.Payment.MockMode {
		log.Warn("PAYMENT", "Payment confirmation running in mock mode")
		return &payment.MockConfirmer{Logger: log}
	}
	confirmer, err := payment.NewStripeConfirmer(cfg.Payment.StripeSecretKey, log)
	if err != nil {
		log.Fatal("PAYMENT", fmt.Sprintf("Failed to initialize Stripe: %v", err))
	}
	return confirmer
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	bunDB := connectDatabase(cfg, log)
	defer bunDB.Close()
	db := store.New(bunDB)

	var availability reservation.AvailabilityCache
	if cfg.Redis.CacheEnable {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		availability = cache.NewAvailability(rdb, log, cfg.Redis.AvailTTL)
	}

	producer := kafka.NewProducer(cfg.Kafka, log)
	defer producer.Close()

	passes := qrpass.NewGenerator(cfg.QR.SecretKey)
	confirmer := newConfirmer(cfg, log)

	reservationService := reservation.NewService(db, confirmer, producer, availability, passes, cfg.Payment.Currency, log)
	attendanceService := attendance.NewService(db, producer, passes, log)
	analyticsService := analytics.NewService(analytics.NewDB(bunDB))

	reservationHandler := reservation_api.NewHandler(reservationService, log)
	attendanceHandler := attendance_api.NewHandler(attendanceService, log)
	analyticsHandler := analytics_api.NewHandler(analyticsService, log)

	staffOnly := auth.StaffOnly(cfg.Auth.StaffTokenSecret)

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Post("/reserve", reservationHandler.Reserve)
		r.Get("/availability", reservationHandler.Availability)
		r.With(staffOnly).Post("/refund", reservationHandler.Refund)
	})

	r.Route("/ticket-types", func(r chi.Router) {
		r.Get("/{ticketTypeId}", reservationHandler.GetTicketType)
		r.With(staffOnly).Post("/", reservationHandler.CreateTicketType)
		r.With(staffOnly).Post("/{ticketTypeId}/open", reservationHandler.OpenSales)
		r.With(staffOnly).Post("/{ticketTypeId}/close", reservationHandler.CloseSales)
	})

	r.Get("/purchases/{purchaseId}", reservationHandler.GetPurchase)

	r.Route("/rsvps", func(r chi.Router) {
		r.Post("/", attendanceHandler.CreateRsvp)
		r.Get("/{documentNumber}", attendanceHandler.GetRsvp)
		r.With(staffOnly).Get("/{documentNumber}/checkins", attendanceHandler.GetCheckInEvents)
	})

	r.Route("/checkin", func(r chi.Router) {
		r.Use(staffOnly)
		r.Post("/", attendanceHandler.CheckIn)
		r.Post("/scan", attendanceHandler.CheckInScan)
	})

	r.Route("/events/{eventId}", func(r chi.Router) {
		r.Get("/ticket-types", reservationHandler.ListTicketTypes)
		r.Get("/analytics/sales", analyticsHandler.GetEventSales)
		r.Get("/analytics/checkins", analyticsHandler.GetEventCheckIns)
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("API", fmt.Sprintf("Reservation service on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("API", fmt.Sprintf("HTTP error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("API", "Reservation service shutdown complete")
}
