// Package reservation validates walk-up bookings made on a room screen
// and forwards them to the backend calendar.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMissingFields  = errors.New("subject, start and end are required")
	ErrInvalidTime    = errors.New("invalid date/time")
	ErrEndBeforeStart = errors.New("end must be after start")
)

var inputLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// Backend creates the booking in the room's calendar.
type Backend interface {
	CreateReservation(ctx context.Context, tenant, mailbox, subject string, start, end time.Time) error
}

type RoomLookup interface {
	Lookup(id string) (model.Room, bool)
}

// AuditLog records every forwarded reservation, successful or not.
type AuditLog interface {
	Create(roomID, subject string, start, end time.Time, status, errMsg, remoteIP string) (*model.Reservation, error)
}

type Refresher interface {
	RefreshAsync(roomID string)
}

// Request is the raw form input.
type Request struct {
	Subject  string `json:"subject"`
	Start    string `json:"start"`
	End      string `json:"end"`
	RemoteIP string `json:"-"`
}

type Service struct {
	rooms   RoomLookup
	backend Backend
	audit   AuditLog
	boards  Refresher
	loc     *time.Location
	logger  *slog.Logger
}

func NewService(rooms RoomLookup, backend Backend, audit AuditLog, boards Refresher, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		rooms:   rooms,
		backend: backend,
		audit:   audit,
		boards:  boards,
		loc:     loc,
		logger:  logger.With("component", "reservation"),
	}
}

// Submit validates req and forwards it to the backend. Validation errors
// never reach the network. Backend failures are returned wrapped, so a
// *calendar.APIError stays reachable through errors.As.
func (s *Service) Submit(ctx context.Context, roomID string, req Request) (*model.Reservation, error) {
	room, ok := s.rooms.Lookup(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	subject := strings.TrimSpace(req.Subject)
	startRaw := strings.TrimSpace(req.Start)
	endRaw := strings.TrimSpace(req.End)
	if subject == "" || startRaw == "" || endRaw == "" {
		return nil, ErrMissingFields
	}

	start, err := s.ParseTime(startRaw)
	if err != nil {
		return nil, err
	}
	end, err := s.ParseTime(endRaw)
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, ErrEndBeforeStart
	}

	logger := s.logger.With("room", room.ID)

	if err := s.backend.CreateReservation(ctx, room.Tenant, room.Mailbox, subject, start, end); err != nil {
		logger.Warn("reservation rejected", "error", err)
		s.record(logger, room.ID, subject, start, end, model.ReservationFailed, err.Error(), req.RemoteIP)
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	logger.Info("reservation created", "start", start, "end", end)
	res := s.record(logger, room.ID, subject, start, end, model.ReservationCreated, "", req.RemoteIP)
	if res == nil {
		res = &model.Reservation{
			RoomID:  room.ID,
			Subject: subject,
			Start:   start,
			End:     end,
			Status:  model.ReservationCreated,
		}
	}

	if s.boards != nil {
		s.boards.RefreshAsync(room.ID)
	}
	return res, nil
}

// ParseTime reads a form date/time in the display timezone. Values with an
// explicit offset are accepted and converted.
func (s *Service) ParseTime(v string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, v, s.loc); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(s.loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, v)
}

func (s *Service) record(logger *slog.Logger, roomID, subject string, start, end time.Time, status, errMsg, remoteIP string) *model.Reservation {
	if s.audit == nil {
		return nil
	}
	res, err := s.audit.Create(roomID, subject, start, end, status, errMsg, remoteIP)
	if err != nil {
		logger.Error("record reservation", "error", err)
		return nil
	}
	return res
}
