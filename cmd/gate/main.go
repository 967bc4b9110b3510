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
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-reservations/internal/attendance"
	"ms-reservations/internal/attendance/attendance_api"
	"ms-reservations/internal/auth"
	"ms-reservations/internal/config"
	"ms-reservations/internal/kafka"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/qrpass"
	"ms-reservations/internal/store"
)

// Slim door-staff binary: only the check-in surface, for gate hardware that
// should not be able to reach the sales routes at all.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open Postgres: %v", err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	producer := kafka.NewProducer(cfg.Kafka, log)
	defer producer.Close()

	passes := qrpass.NewGenerator(cfg.QR.SecretKey)
	service := attendance.NewService(store.New(bunDB), producer, passes, log)
	handler := attendance_api.NewHandler(service, log)

	r := chi.NewRouter()
	r.Route("/checkin", func(r chi.Router) {
		r.Use(auth.StaffOnly(cfg.Auth.StaffTokenSecret))
		r.Post("/", handler.CheckIn)
		r.Post("/scan", handler.CheckInScan)
	})

	server := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Info("API", fmt.Sprintf("Gate service on %s", cfg.Server.Port))
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
	log.Info("API", "Gate service shutdown complete")
}
