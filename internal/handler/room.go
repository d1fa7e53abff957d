package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/roomboard/internal/auth"
	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/middleware"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/reservation"
)

// RoomHandler serves the JSON API.
type RoomHandler struct {
	rooms        RoomSource
	boards       BoardSource
	reservations ReservationSubmitter
	audit        ReservationLister
	notifier     Notifier
	logger       *slog.Logger
}

func NewRoomHandler(rooms RoomSource, boards BoardSource, reservations ReservationSubmitter, audit ReservationLister, notifier Notifier, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		rooms:        rooms,
		boards:       boards,
		reservations: reservations,
		audit:        audit,
		notifier:     notifier,
		logger:       logger,
	}
}

type roomSummary struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Campus    string       `json:"campus,omitempty"`
	Locale    string       `json:"locale"`
	Theme     model.Theme  `json:"theme"`
	Available bool         `json:"available"`
	Current   *model.Event `json:"current,omitempty"`
	Stale     bool         `json:"stale"`
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms := h.rooms.List()
	out := make([]roomSummary, 0, len(rooms))
	for _, room := range rooms {
		s := roomSummary{
			ID:        room.ID,
			Name:      room.Name,
			Campus:    room.Campus,
			Locale:    room.Locale,
			Theme:     room.Theme,
			Available: true,
		}
		if snap, ok := h.boards.RoomSnapshot(room.ID); ok {
			s.Available = snap.Available
			s.Current = snap.Current
			s.Stale = snap.Stale
		}
		out = append(out, s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RoomHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.boards.RoomSnapshot(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *RoomHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservation.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.RemoteIP = middleware.RealIP(r)

	res, err := h.reservations.Submit(r.Context(), r.PathValue("id"), req)
	if err != nil {
		status, _, _ := reservationOutcome(err)
		body := map[string]any{"error": err.Error()}
		var apiErr *calendar.APIError
		if errors.As(err, &apiErr) {
			body["backend_status"] = apiErr.StatusCode
			body["backend_body"] = apiErr.Body
		}
		writeJSON(w, status, body)
		return
	}

	notifyReservation(h.notifier, res)
	writeJSON(w, http.StatusCreated, res)
}

func (h *RoomHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if _, ok := h.rooms.Lookup(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list, err := h.audit.ListByRoom(roomID, limit)
	if err != nil {
		h.logger.Error("list reservations", "room", roomID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list reservations")
		return
	}
	if list == nil {
		list = []model.Reservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Refresh forces an immediate fetch for an operator.
func (h *RoomHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	if _, ok := h.rooms.Lookup(roomID); !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	h.logger.Info("operator refresh", "room", roomID, "operator", auth.OperatorName(r.Context()))
	if err := h.boards.Refresh(r.Context(), roomID); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	snap, _ := h.boards.RoomSnapshot(roomID)
	writeJSON(w, http.StatusOK, snap)
}
