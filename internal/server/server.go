package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/roomboard/internal/config"
	"github.com/dukerupert/roomboard/internal/display"
	"github.com/dukerupert/roomboard/internal/handler"
	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/middleware"
	"github.com/dukerupert/roomboard/internal/reservation"
	"github.com/dukerupert/roomboard/internal/store"
	ws "github.com/dukerupert/roomboard/internal/websocket"
)

const (
	reservationLimit  = 5
	reservationWindow = time.Minute
)

type Server struct {
	rooms        *config.RoomTable
	boards       *display.Registry
	hub          *ws.Hub
	roomH        *handler.RoomHandler
	templateH    *handler.TemplateHandler
	rateLimiter  *middleware.RateLimiter
	operatorUser string
	operatorHash string
	operatorOn   bool
	logger       *slog.Logger
}

func New(cfg *config.Config, rooms *config.RoomTable, boards *display.Registry, hub *ws.Hub, reservations *reservation.Service, audit *store.ReservationStore, tr *i18n.Translator, logger *slog.Logger) *Server {
	handlerLogger := logger.With("component", "handler")
	return &Server{
		rooms:        rooms,
		boards:       boards,
		hub:          hub,
		roomH:        handler.NewRoomHandler(rooms, boards, reservations, audit, hub, handlerLogger),
		templateH:    handler.NewTemplateHandler(rooms, boards, reservations, hub, tr, cfg.Locale, handlerLogger),
		rateLimiter:  middleware.NewRateLimiter(),
		operatorUser: cfg.OperatorUser,
		operatorHash: cfg.OperatorPasswordHash,
		operatorOn:   cfg.OperatorEnabled(),
		logger:       logger,
	}
}

func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// Room screens
	mux.HandleFunc("GET /{$}", s.templateH.Home)
	mux.HandleFunc("GET /rooms/{id}", s.templateH.Room)
	mux.HandleFunc("GET /rooms/{id}/today.ics", s.roomH.TodayICS)
	mux.HandleFunc("GET /partials/rooms/{id}/timeline", s.templateH.Board)
	mux.Handle("POST /partials/rooms/{id}/reservations", s.rateLimited(s.templateH.SubmitReservation, s.templateH.ReservationLimited))
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.boards))

	// JSON API
	mux.HandleFunc("GET /api/rooms", s.roomH.List)
	mux.HandleFunc("GET /api/rooms/{id}/timeline", s.roomH.Timeline)
	mux.Handle("POST /api/rooms/{id}/reservations", s.rateLimited(s.roomH.CreateReservation, nil))
	mux.HandleFunc("GET /api/rooms/{id}/reservations", s.roomH.ListReservations)

	if s.operatorOn {
		requireOperator := middleware.RequireOperator(s.operatorUser, s.operatorHash, s.logger.With("component", "auth"))
		mux.Handle("POST /api/rooms/{id}/refresh", requireOperator(http.HandlerFunc(s.roomH.Refresh)))
	}

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"rooms":   s.rooms.Len(),
		"screens": s.hub.ClientCount(),
	})
}

func (s *Server) rateLimited(h http.HandlerFunc, onLimited http.HandlerFunc) http.Handler {
	var limited http.Handler
	if onLimited != nil {
		limited = onLimited
	}
	return middleware.RateLimit(s.rateLimiter, middleware.ByRoomAndIP, reservationLimit, reservationWindow, limited)(h)
}
