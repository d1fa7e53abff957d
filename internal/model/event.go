package model

import "time"

// Event is a single room booking as delivered by the backend calendar,
// after timestamp normalization. Start and End are in the display timezone.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Organizer string    `json:"organizer"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Attendees int       `json:"attendees"`
}

// Contains reports whether t lies strictly between Start and End.
func (e Event) Contains(t time.Time) bool {
	return t.After(e.Start) && t.Before(e.End)
}

// HasTimes reports whether both timestamps were parsed.
func (e Event) HasTimes() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// SlotEvent is the compact form of an Event listed inside an HourSlot.
type SlotEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Organizer string `json:"organizer"`
	Start     string `json:"start"`
	End       string `json:"end"`
}

// HourSlot is one row of the day timeline.
type HourSlot struct {
	Hour   int         `json:"hour"`
	Label  string      `json:"label"`
	Events []SlotEvent `json:"events"`
	Active bool        `json:"active"`
}
