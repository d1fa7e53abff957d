package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/reservation"
	"github.com/dukerupert/roomboard/internal/websocket"
)

// RoomSource is the read-only room table.
type RoomSource interface {
	List() []model.Room
	Lookup(id string) (model.Room, bool)
}

// BoardSource exposes the live boards.
type BoardSource interface {
	RoomSnapshot(roomID string) (model.Snapshot, bool)
	TodayEvents(roomID string) ([]model.Event, bool)
	Refresh(ctx context.Context, roomID string) error
}

type ReservationSubmitter interface {
	Submit(ctx context.Context, roomID string, req reservation.Request) (*model.Reservation, error)
}

type ReservationLister interface {
	ListByRoom(roomID string, limit int) ([]model.Reservation, error)
}

// Notifier pushes a message to a room's connected screens.
type Notifier interface {
	BroadcastRoom(roomID string, msg websocket.Message)
}

// reservationOutcome maps a Submit error to an HTTP status, a message key
// and template data for that key.
func reservationOutcome(err error) (int, string, map[string]any) {
	var apiErr *calendar.APIError
	switch {
	case errors.Is(err, reservation.ErrRoomNotFound):
		return http.StatusNotFound, "room_not_found", nil
	case errors.Is(err, reservation.ErrMissingFields):
		return http.StatusBadRequest, "missing_fields", nil
	case errors.Is(err, reservation.ErrInvalidTime):
		return http.StatusBadRequest, "invalid_time", nil
	case errors.Is(err, reservation.ErrEndBeforeStart):
		return http.StatusBadRequest, "end_before_start", nil
	case errors.As(err, &apiErr):
		detail := apiErr.Body
		if detail == "" {
			detail = http.StatusText(apiErr.StatusCode)
		}
		return http.StatusBadGateway, "reservation_failed", map[string]any{"Error": detail}
	default:
		return http.StatusBadGateway, "reservation_failed", map[string]any{"Error": err.Error()}
	}
}

func notifyReservation(n Notifier, res *model.Reservation) {
	if n == nil || res == nil {
		return
	}
	n.BroadcastRoom(res.RoomID, websocket.NewMessage(websocket.TypeReservation, res.RoomID, map[string]any{
		"subject": res.Subject,
		"start":   res.Start,
		"end":     res.End,
	}))
}
