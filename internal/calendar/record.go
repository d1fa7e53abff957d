package calendar

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

// ErrBadTimestamp is returned when an event time cannot be parsed.
var ErrBadTimestamp = errors.New("bad timestamp")

// Record is an event as the backend returns it. The backend proxies a
// Graph-style mailbox calendar, so most fields are nested.
type Record struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Organizer Organizer `json:"organizer"`
	Start     Timestamp `json:"start"`
	End       Timestamp `json:"end"`

	Attendees     []json.RawMessage `json:"attendees"`
	AttendeeCount *int              `json:"attendeeCount,omitempty"`
}

type Organizer struct {
	EmailAddress struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	} `json:"emailAddress"`
}

// Timestamp accepts either a bare string or a {dateTime, timeZone} object.
type Timestamp struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Timestamp{DateTime: s}
		return nil
	}
	type plain Timestamp
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Timestamp(p)
	return nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp truncates sub-second precision and parses ts. Values with
// an explicit offset keep it; others are read in ts.TimeZone when that is
// a known IANA zone, else in loc. The result is converted to loc.
func ParseTimestamp(ts Timestamp, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := truncateFraction(strings.TrimSpace(ts.DateTime))
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrBadTimestamp)
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}

	in := loc
	if ts.TimeZone != "" {
		if zone, err := time.LoadLocation(ts.TimeZone); err == nil {
			in = zone
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, in); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, ts.DateTime)
}

// truncateFraction drops the digits after the seconds separator while
// keeping any zone suffix: "09:00:00.1234567Z" becomes "09:00:00Z".
func truncateFraction(v string) string {
	head, tail, ok := strings.Cut(v, ".")
	if !ok {
		return v
	}
	i := 0
	for i < len(tail) && tail[i] >= '0' && tail[i] <= '9' {
		i++
	}
	return head + tail[i:]
}

// Normalize converts backend records into events in loc. Records with
// unparseable times are dropped and reported in errs; the rest proceed.
func Normalize(records []Record, loc *time.Location) (events []model.Event, errs []error) {
	events = make([]model.Event, 0, len(records))
	for _, r := range records {
		ev, err := r.toEvent(loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		events = append(events, ev)
	}
	return events, errs
}

func (r Record) toEvent(loc *time.Location) (model.Event, error) {
	start, err := ParseTimestamp(r.Start, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %q start: %w", r.Subject, err)
	}
	end, err := ParseTimestamp(r.End, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %q end: %w", r.Subject, err)
	}

	organizer := strings.TrimSpace(r.Organizer.EmailAddress.Name)
	title := strings.TrimSpace(r.Subject)
	if title == "" {
		title = organizer
	}

	attendees := len(r.Attendees)
	if r.AttendeeCount != nil {
		attendees = *r.AttendeeCount
	}

	id := r.ID
	if id == "" {
		id = derivedID(r.Subject, r.Start.DateTime)
	}

	return model.Event{
		ID:        id,
		Title:     title,
		Organizer: organizer,
		Start:     start,
		End:       end,
		Attendees: attendees,
	}, nil
}

// derivedID gives id-less records a key that survives re-polling.
func derivedID(subject, start string) string {
	sum := sha256.Sum256([]byte(subject + "|" + start))
	return "evt-" + hex.EncodeToString(sum[:8])
}

// FilterDay keeps the events that overlap the calendar day containing now.
func FilterDay(events []model.Event, now time.Time) []model.Event {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	next := midnight.AddDate(0, 0, 1)

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.HasTimes() {
			continue
		}
		if ev.Start.Before(next) && ev.End.After(midnight) {
			out = append(out, ev)
		}
	}
	return out
}
