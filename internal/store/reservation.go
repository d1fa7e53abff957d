package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

// ReservationStore is the audit log of bookings made from room screens.
type ReservationStore struct {
	db *sql.DB
}

func NewReservationStore(db *sql.DB) *ReservationStore {
	return &ReservationStore{db: db}
}

func (s *ReservationStore) Create(roomID, subject string, start, end time.Time, status, errMsg, remoteIP string) (*model.Reservation, error) {
	result, err := s.db.Exec(
		`INSERT INTO reservations (room_id, subject, start_time, end_time, status, error, remote_ip, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		roomID, subject, formatTime(start), formatTime(end), status, errMsg, remoteIP, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *ReservationStore) GetByID(id int64) (*model.Reservation, error) {
	row := s.db.QueryRow(
		`SELECT id, room_id, subject, start_time, end_time, status, error, remote_ip, created_at
		 FROM reservations WHERE id = ?`,
		id,
	)
	r, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query reservation: %w", err)
	}
	return r, nil
}

// ListByRoom returns the most recent reservations for a room, newest first.
func (s *ReservationStore) ListByRoom(roomID string, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, room_id, subject, start_time, end_time, status, error, remote_ip, created_at
		 FROM reservations
		 WHERE room_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		roomID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// DeleteOlderThan prunes audit rows created before cutoff.
func (s *ReservationStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec("DELETE FROM reservations WHERE created_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete reservations: %w", err)
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(sc scanner) (*model.Reservation, error) {
	var (
		r                   model.Reservation
		start, end, created string
	)
	if err := sc.Scan(&r.ID, &r.RoomID, &r.Subject, &start, &end, &r.Status, &r.Error, &r.RemoteIP, &created); err != nil {
		return nil, err
	}
	var err error
	if r.Start, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return nil, err
	}
	if r.End, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, err
	}
	return &r, nil
}

// Fixed-width UTC timestamps sort lexically, which the ORDER BY relies on.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
