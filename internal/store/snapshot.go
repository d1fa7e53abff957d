package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

// SnapshotStore keeps the last successfully fetched event list per room,
// so a restarted display has something to show before the first poll.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Save replaces the stored list for roomID.
func (s *SnapshotStore) Save(roomID string, events []model.Event, fetchedAt time.Time) error {
	if events == nil {
		events = []model.Event{}
	}
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO event_snapshots (room_id, payload, fetched_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(room_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at, updated_at = excluded.updated_at`,
		roomID, string(payload), fetchedAt.UTC().Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert event snapshot: %w", err)
	}
	return nil
}

// Load returns the stored list for roomID. A room never saved yields
// nil events, a zero time and no error.
func (s *SnapshotStore) Load(roomID string) ([]model.Event, time.Time, error) {
	var payload, fetchedAt string
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM event_snapshots WHERE room_id = ?`,
		roomID,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query event snapshot: %w", err)
	}

	var events []model.Event
	if err := json.Unmarshal([]byte(payload), &events); err != nil {
		return nil, time.Time{}, fmt.Errorf("decode event snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse fetched_at: %w", err)
	}
	return events, ts, nil
}

// Delete removes the stored list for roomID.
func (s *SnapshotStore) Delete(roomID string) error {
	if _, err := s.db.Exec("DELETE FROM event_snapshots WHERE room_id = ?", roomID); err != nil {
		return fmt.Errorf("delete event snapshot: %w", err)
	}
	return nil
}
