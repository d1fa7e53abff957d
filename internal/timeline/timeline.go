// Package timeline projects a day's room events onto hourly slots and
// resolves which event, if any, is running right now.
//
// Everything here is a pure function of its inputs. Callers re-run the
// projection whenever the clock or the event list changes.
package timeline

import (
	"fmt"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

// Default display window of the room screen: 07:00 through 18:00.
const (
	DefaultFirstHour = 7
	DefaultLastHour  = 18
)

// Projection bundles the slot list with the current and next events.
type Projection struct {
	Slots   []model.HourSlot
	Current *model.Event
	Next    *model.Event
}

// Hours returns first..last inclusive. An inverted range yields nil.
func Hours(first, last int) []int {
	if last < first {
		return nil
	}
	hours := make([]int, 0, last-first+1)
	for h := first; h <= last; h++ {
		hours = append(hours, h)
	}
	return hours
}

// DefaultHours is Hours(DefaultFirstHour, DefaultLastHour).
func DefaultHours() []int {
	return Hours(DefaultFirstHour, DefaultLastHour)
}

// HourLabel formats an hour of day as "HH:00".
func HourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

// BuildHourSlots returns one slot per entry of hours, in the same order.
//
// An event is listed under hour h when it spans across h
// (start hour <= h and end hour > h) or when it starts inside h before
// minute 59. Events without parsed timestamps are skipped.
func BuildHourSlots(now time.Time, events []model.Event, hours []int) []model.HourSlot {
	slots := make([]model.HourSlot, 0, len(hours))
	for _, h := range hours {
		slot := model.HourSlot{
			Hour:   h,
			Label:  HourLabel(h),
			Events: []model.SlotEvent{},
		}
		for _, ev := range events {
			if !ev.HasTimes() || !inHour(ev, h) {
				continue
			}
			slot.Events = append(slot.Events, model.SlotEvent{
				ID:        ev.ID,
				Title:     ev.Title,
				Organizer: ev.Organizer,
				Start:     ev.Start.Format("15:04"),
				End:       ev.End.Format("15:04"),
			})
			if ev.Contains(now) {
				slot.Active = true
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// Minute 59 is excluded from the "starts in this hour" rule. The room
// screens have always bucketed this way, so it stays.
func inHour(ev model.Event, h int) bool {
	sh, eh := ev.Start.Hour(), ev.End.Hour()
	if sh <= h && eh > h {
		return true
	}
	return sh == h && ev.Start.Minute() < 59
}

// FindActiveEvent returns the event running at now, bounds exclusive.
// When several overlap, the earliest start wins; equal starts keep input order.
func FindActiveEvent(now time.Time, events []model.Event) (model.Event, bool) {
	var (
		best  model.Event
		found bool
	)
	for _, ev := range events {
		if !ev.HasTimes() || !ev.Contains(now) {
			continue
		}
		if !found || ev.Start.Before(best.Start) {
			best = ev
			found = true
		}
	}
	return best, found
}

// FindNextEvent returns the earliest event starting after now.
func FindNextEvent(now time.Time, events []model.Event) (model.Event, bool) {
	var (
		best  model.Event
		found bool
	)
	for _, ev := range events {
		if !ev.HasTimes() || !ev.Start.After(now) {
			continue
		}
		if !found || ev.Start.Before(best.Start) {
			best = ev
			found = true
		}
	}
	return best, found
}

// Project runs BuildHourSlots, FindActiveEvent and FindNextEvent together.
func Project(now time.Time, events []model.Event, hours []int) Projection {
	p := Projection{Slots: BuildHourSlots(now, events, hours)}
	if ev, ok := FindActiveEvent(now, events); ok {
		p.Current = &ev
	}
	if ev, ok := FindNextEvent(now, events); ok {
		p.Next = &ev
	}
	return p
}
