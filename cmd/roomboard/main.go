package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/config"
	"github.com/dukerupert/roomboard/internal/database"
	"github.com/dukerupert/roomboard/internal/display"
	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/logging"
	"github.com/dukerupert/roomboard/internal/reservation"
	"github.com/dukerupert/roomboard/internal/server"
	"github.com/dukerupert/roomboard/internal/store"
	"github.com/dukerupert/roomboard/internal/timeline"
	ws "github.com/dukerupert/roomboard/internal/websocket"
)

const reservationRetention = 90 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to host timezone", "error", err)
	}

	rooms, err := config.LoadRooms(cfg.RoomsFile, cfg.Locale)
	if err != nil {
		logger.Error("failed to load rooms", "file", cfg.RoomsFile, "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	snapshots := store.NewSnapshotStore(db)
	audit := store.NewReservationStore(db)
	client := calendar.NewClient(cfg.APIBase, loc, logger.With("component", "calendar"))
	hub := ws.NewHub(logger)

	boards := display.NewRegistry(rooms.List(), client, display.Options{
		Hours:         timeline.Hours(cfg.DayStart, cfg.DayEnd),
		Location:      loc,
		PollSchedule:  cfg.PollSchedule,
		ClockInterval: cfg.ClockInterval,
		Store:         snapshots,
		Publisher:     hub,
		Logger:        logger,
	})

	reservations := reservation.NewService(rooms, client, audit, boards, loc, logger)
	tr := i18n.NewTranslator(cfg.Locale, logger)
	srv := server.New(cfg, rooms, boards, hub, reservations, audit, tr, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := boards.StartAll(ctx); err != nil {
		logger.Error("failed to start boards", "error", err)
		os.Exit(1)
	}

	// No WriteTimeout: /ws connections stay open.
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := audit.DeleteOlderThan(time.Now().Add(-reservationRetention)); err != nil {
					logger.Error("prune reservations", "error", err)
				} else if n > 0 {
					logger.Info("pruned reservations", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("roomboard starting", "addr", ":"+cfg.Port, "rooms", rooms.Len(), "timezone", loc.String())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stop()
	boards.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
