package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/roomboard/internal/config"
	"github.com/dukerupert/roomboard/internal/database"
	"github.com/dukerupert/roomboard/internal/display"
	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/reservation"
	"github.com/dukerupert/roomboard/internal/store"
	ws "github.com/dukerupert/roomboard/internal/websocket"
)

type staticFetcher []model.Event

func (f staticFetcher) FetchEvents(ctx context.Context, room model.Room) ([]model.Event, error) {
	return f, nil
}

func setupServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rooms, err := config.NewRoomTable([]model.Room{
		{ID: "creativity", Name: "Creativity", Mailbox: "creativity@example.edu", Tenant: "t1"},
	}, "es")
	if err != nil {
		t.Fatalf("rooms: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := &config.Config{Locale: "es", OperatorUser: "ops", OperatorPasswordHash: string(hash)}

	now := time.Now()
	events := staticFetcher{{ID: "1", Title: "Standup", Start: now.Add(-10 * time.Minute), End: now.Add(20 * time.Minute)}}

	hub := ws.NewHub(logger)
	boards := display.NewRegistry(rooms.List(), events, display.Options{
		Location:  time.Local,
		Publisher: hub,
		Logger:    logger,
	})
	audit := store.NewReservationStore(db)
	svc := reservation.NewService(rooms, nil, audit, boards, time.Local, logger)

	srv := New(cfg, rooms, boards, hub, svc, audit, i18n.NewTranslator("es", logger), logger)
	return srv.Router()
}

func TestHealth(t *testing.T) {
	router := setupServer(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	json.NewDecoder(rec.Body).Decode(&body)
	if body["status"] != "ok" || body["rooms"] != float64(1) {
		t.Errorf("body = %v", body)
	}
}

func TestRoutes(t *testing.T) {
	router := setupServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/", http.StatusOK},
		{"GET", "/rooms/creativity", http.StatusOK},
		{"GET", "/rooms/nowhere", http.StatusNotFound},
		{"GET", "/partials/rooms/creativity/timeline", http.StatusOK},
		{"GET", "/rooms/creativity/today.ics", http.StatusOK},
		{"GET", "/api/rooms", http.StatusOK},
		{"GET", "/api/rooms/creativity/timeline", http.StatusOK},
		{"GET", "/api/rooms/creativity/reservations", http.StatusOK},
		{"GET", "/api/rooms/nowhere/reservations", http.StatusNotFound},
		{"POST", "/api/rooms/creativity/refresh", http.StatusUnauthorized},
		{"GET", "/ws?room=nowhere", http.StatusNotFound},
		{"GET", "/does-not-exist", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestOperatorRefresh(t *testing.T) {
	router := setupServer(t)

	req := httptest.NewRequest("POST", "/api/rooms/creativity/refresh", nil)
	req.SetBasicAuth("ops", "secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var snap model.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Current == nil || snap.Current.Title != "Standup" || snap.Stale {
		t.Errorf("snapshot after refresh = %+v", snap)
	}
}

func TestReservationFormRateLimited(t *testing.T) {
	router := setupServer(t)

	form := url.Values{"subject": {"Ana"}}
	var last *httptest.ResponseRecorder
	for i := 0; i <= reservationLimit; i++ {
		req := httptest.NewRequest("POST", "/partials/rooms/creativity/reservations", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		last = httptest.NewRecorder()
		router.ServeHTTP(last, req)
	}

	body := last.Body.String()
	if !strings.Contains(body, "Demasiados intentos") {
		t.Errorf("expected localized rate limit notice, got %s", body)
	}
	if !strings.Contains(body, `value="Ana"`) {
		t.Error("form values not preserved when limited")
	}
}
