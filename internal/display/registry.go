package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukerupert/roomboard/internal/model"
)

var ErrUnknownRoom = errors.New("unknown room")

// Registry holds one Board per configured room.
type Registry struct {
	boards map[string]*Board
	order  []string
}

func NewRegistry(rooms []model.Room, fetcher Fetcher, opts Options) *Registry {
	r := &Registry{boards: make(map[string]*Board, len(rooms))}
	for _, room := range rooms {
		r.boards[room.ID] = NewBoard(room, fetcher, opts)
		r.order = append(r.order, room.ID)
	}
	return r
}

func (r *Registry) Get(roomID string) (*Board, bool) {
	b, ok := r.boards[roomID]
	return b, ok
}

// Boards returns the boards in room table order.
func (r *Registry) Boards() []*Board {
	out := make([]*Board, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.boards[id])
	}
	return out
}

// StartAll starts every board. On failure the boards already started are
// stopped again.
func (r *Registry) StartAll(ctx context.Context) error {
	for i, id := range r.order {
		if err := r.boards[id].Start(ctx); err != nil {
			for _, started := range r.order[:i] {
				r.boards[started].Stop()
			}
			return fmt.Errorf("start board %s: %w", id, err)
		}
	}
	return nil
}

func (r *Registry) StopAll() {
	for _, b := range r.boards {
		b.Stop()
	}
}

// RefreshAsync asks the room's board for an immediate fetch. Unknown
// rooms are ignored.
func (r *Registry) RefreshAsync(roomID string) {
	if b, ok := r.boards[roomID]; ok {
		b.RefreshAsync()
	}
}

// RoomSnapshot returns the current snapshot of roomID.
func (r *Registry) RoomSnapshot(roomID string) (model.Snapshot, bool) {
	b, ok := r.boards[roomID]
	if !ok {
		return model.Snapshot{}, false
	}
	return b.Snapshot(), true
}

// Refresh fetches roomID's events now and returns the fetch error.
func (r *Registry) Refresh(ctx context.Context, roomID string) error {
	b, ok := r.boards[roomID]
	if !ok {
		return ErrUnknownRoom
	}
	return b.Refresh(ctx)
}

// TodayEvents returns roomID's events overlapping the board's current day.
func (r *Registry) TodayEvents(roomID string) ([]model.Event, bool) {
	b, ok := r.boards[roomID]
	if !ok {
		return nil, false
	}
	return b.Today(), true
}
