package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/config"
	"github.com/dukerupert/roomboard/internal/database"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/store"
)

var bogota = time.FixedZone("-05", -5*60*60)

type refreshRecorder struct {
	rooms []string
}

func (r *refreshRecorder) RefreshAsync(roomID string) {
	r.rooms = append(r.rooms, roomID)
}

type fixture struct {
	svc    *Service
	audit  *store.ReservationStore
	boards *refreshRecorder
	hits   *atomic.Int32
	bodies chan map[string]string
}

func setup(t *testing.T, status int, body string) *fixture {
	t.Helper()

	f := &fixture{
		hits:   &atomic.Int32{},
		boards: &refreshRecorder{},
		bodies: make(chan map[string]string, 4),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		var reqBody map[string]string
		json.NewDecoder(r.Body).Decode(&reqBody)
		f.bodies <- reqBody
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

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

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.audit = store.NewReservationStore(db)
	f.svc = NewService(rooms, calendar.NewClient(srv.URL, bogota, logger), f.audit, f.boards, bogota, logger)
	return f
}

func TestSubmitMissingFieldsSkipsNetwork(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"no subject", Request{Start: "2026-03-10T14:00", End: "2026-03-10T15:00"}},
		{"blank subject", Request{Subject: "   ", Start: "2026-03-10T14:00", End: "2026-03-10T15:00"}},
		{"no start", Request{Subject: "Ana", End: "2026-03-10T15:00"}},
		{"no end", Request{Subject: "Ana", Start: "2026-03-10T14:00"}},
	}

	f := setup(t, http.StatusCreated, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), "creativity", tt.req)
			if !errors.Is(err, ErrMissingFields) {
				t.Errorf("err = %v, want ErrMissingFields", err)
			}
		})
	}
	if f.hits.Load() != 0 {
		t.Errorf("backend called %d times", f.hits.Load())
	}
}

func TestSubmitValidation(t *testing.T) {
	f := setup(t, http.StatusCreated, "")

	_, err := f.svc.Submit(context.Background(), "nowhere", Request{Subject: "x", Start: "a", End: "b"})
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown room err = %v", err)
	}

	_, err = f.svc.Submit(context.Background(), "creativity", Request{Subject: "x", Start: "tomorrow", End: "2026-03-10T15:00"})
	if !errors.Is(err, ErrInvalidTime) {
		t.Errorf("bad start err = %v", err)
	}

	_, err = f.svc.Submit(context.Background(), "creativity", Request{Subject: "x", Start: "2026-03-10T15:00", End: "2026-03-10T15:00"})
	if !errors.Is(err, ErrEndBeforeStart) {
		t.Errorf("zero length err = %v", err)
	}

	if f.hits.Load() != 0 {
		t.Errorf("backend called %d times", f.hits.Load())
	}
}

func TestSubmitCreated(t *testing.T) {
	f := setup(t, http.StatusCreated, `{"id":"abc"}`)

	res, err := f.svc.Submit(context.Background(), "creativity", Request{
		Subject:  " Ana ",
		Start:    "2026-03-10T14:00",
		End:      "2026-03-10T15:30",
		RemoteIP: "10.0.0.9",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.ID == 0 || res.Status != model.ReservationCreated {
		t.Errorf("reservation = %+v", res)
	}
	sent := <-f.bodies
	if sent["subject"] != "Ana" {
		t.Errorf("subject sent = %q", sent["subject"])
	}
	if sent["start"] != "2026-03-10T14:00:00" || sent["end"] != "2026-03-10T15:30:00" {
		t.Errorf("times sent = %q - %q", sent["start"], sent["end"])
	}
	if len(f.boards.rooms) != 1 || f.boards.rooms[0] != "creativity" {
		t.Errorf("refreshed = %v", f.boards.rooms)
	}
}

func TestSubmitBackendRejection(t *testing.T) {
	f := setup(t, http.StatusConflict, "slot already booked")

	_, err := f.svc.Submit(context.Background(), "creativity", Request{
		Subject: "Ana",
		Start:   "2026-03-10T14:00",
		End:     "2026-03-10T15:00",
	})
	var apiErr *calendar.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *calendar.APIError", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Body != "slot already booked" {
		t.Errorf("api error = %+v", apiErr)
	}

	rows, _ := f.audit.ListByRoom("creativity", 10)
	if len(rows) != 1 || rows[0].Status != model.ReservationFailed {
		t.Errorf("audit rows = %+v", rows)
	}
	if len(f.boards.rooms) != 0 {
		t.Error("board refreshed after failure")
	}
}

func TestParseTime(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, bogota, nil)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-10T14:00", time.Date(2026, 3, 10, 14, 0, 0, 0, bogota)},
		{"2026-03-10T14:00:30", time.Date(2026, 3, 10, 14, 0, 30, 0, bogota)},
		{"2026-03-10 14:00", time.Date(2026, 3, 10, 14, 0, 0, 0, bogota)},
		{"2026-03-10T19:00:00Z", time.Date(2026, 3, 10, 14, 0, 0, 0, bogota)},
	}
	for _, tt := range tests {
		got, err := svc.ParseTime(tt.in)
		if err != nil {
			t.Errorf("ParseTime(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) || got.Hour() != tt.want.Hour() {
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
