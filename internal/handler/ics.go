package handler

import (
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
)

// TodayICS exports the room's events of the current day as iCalendar.
func (h *RoomHandler) TodayICS(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	room, ok := h.rooms.Lookup(roomID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	events, _ := h.boards.TodayEvents(roomID)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//roomboard//" + room.ID + "//EN")
	cal.SetXWRCalName(room.Name)

	stamp := time.Now()
	for _, ev := range events {
		if !ev.HasTimes() {
			continue
		}
		vev := cal.AddEvent(fmt.Sprintf("%s@%s", ev.ID, room.ID))
		vev.SetDtStampTime(stamp)
		vev.SetStartAt(ev.Start)
		vev.SetEndAt(ev.End)
		vev.SetSummary(ev.Title)
		vev.SetLocation(room.Name)
		if ev.Organizer != "" {
			vev.SetDescription(ev.Organizer)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s-today.ics"`, room.ID))
	if err := cal.SerializeTo(w); err != nil {
		h.logger.Error("serialize calendar", "room", roomID, "error", err)
	}
}
