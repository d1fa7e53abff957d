package model

import "time"

// Snapshot is everything a room screen renders at one instant.
type Snapshot struct {
	RoomID      string     `json:"room_id"`
	Now         time.Time  `json:"now"`
	CurrentHour int        `json:"current_hour"`
	Slots       []HourSlot `json:"slots"`
	Current     *Event     `json:"current,omitempty"`
	Next        *Event     `json:"next,omitempty"`
	Available   bool       `json:"available"`
	EventCount  int        `json:"event_count"`
	FetchedAt   time.Time  `json:"fetched_at"`
	Stale       bool       `json:"stale"`
	LastError   string     `json:"last_error,omitempty"`
}
