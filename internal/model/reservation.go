package model

import "time"

const (
	ReservationCreated = "created"
	ReservationFailed  = "failed"
)

// Reservation is an audit row for a booking submitted from a room screen.
type Reservation struct {
	ID        int64     `json:"id"`
	RoomID    string    `json:"room_id"`
	Subject   string    `json:"subject"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	RemoteIP  string    `json:"remote_ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
