package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/middleware"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/reservation"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateHandler serves the room screens and their HTMX partials.
type TemplateHandler struct {
	rooms         RoomSource
	boards        BoardSource
	reservations  ReservationSubmitter
	notifier      Notifier
	tr            *i18n.Translator
	defaultLocale string
	templates     *template.Template
	logger        *slog.Logger
}

func NewTemplateHandler(rooms RoomSource, boards BoardSource, reservations ReservationSubmitter, notifier Notifier, tr *i18n.Translator, defaultLocale string, logger *slog.Logger) *TemplateHandler {
	funcs := template.FuncMap{
		"t": func(locale, key string) string {
			return tr.T(locale, key, nil)
		},
		"date": tr.Date,
		"clock": func(t time.Time) string {
			return t.Format("15:04")
		},
		"title": func(locale, title string) string {
			if strings.TrimSpace(title) == "" {
				return tr.T(locale, "untitled", nil)
			}
			return title
		},
	}
	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &TemplateHandler{
		rooms:         rooms,
		boards:        boards,
		reservations:  reservations,
		notifier:      notifier,
		tr:            tr,
		defaultLocale: defaultLocale,
		templates:     tmpl,
		logger:        logger,
	}
}

type reservationForm struct {
	Subject string
	Start   string
	End     string
	Error   string
	Success string
}

type roomView struct {
	Room     model.Room
	Locale   string
	Snapshot model.Snapshot
	Form     reservationForm
}

func (h *TemplateHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	type roomEntry struct {
		Room     model.Room
		Snapshot model.Snapshot
	}
	var entries []roomEntry
	for _, room := range h.rooms.List() {
		snap, _ := h.boards.RoomSnapshot(room.ID)
		entries = append(entries, roomEntry{Room: room, Snapshot: snap})
	}

	h.render(w, "home.html", map[string]any{
		"Locale": h.defaultLocale,
		"Rooms":  entries,
	})
}

func (h *TemplateHandler) Room(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.render(w, "room.html", view)
}

// Board renders the header and timeline partial.
func (h *TemplateHandler) Board(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.renderPartial(w, "board", view)
}

func (h *TemplateHandler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	view.Form = reservationForm{
		Subject: r.FormValue("subject"),
		Start:   r.FormValue("start"),
		End:     r.FormValue("end"),
	}

	res, err := h.reservations.Submit(r.Context(), view.Room.ID, reservation.Request{
		Subject:  view.Form.Subject,
		Start:    view.Form.Start,
		End:      view.Form.End,
		RemoteIP: middleware.RealIP(r),
	})
	if err != nil {
		_, key, data := reservationOutcome(err)
		view.Form.Error = h.tr.T(view.Locale, key, data)
		h.renderPartial(w, "reservation-form", view)
		return
	}

	notifyReservation(h.notifier, res)
	view.Form = reservationForm{Success: h.tr.T(view.Locale, "reservation_created", nil)}
	w.Header().Set("HX-Trigger", "reservation-created")
	h.renderPartial(w, "reservation-form", view)
}

// ReservationLimited re-renders the form with a localized notice when a
// screen submits too often.
func (h *TemplateHandler) ReservationLimited(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	r.ParseForm()
	view.Form = reservationForm{
		Subject: r.FormValue("subject"),
		Start:   r.FormValue("start"),
		End:     r.FormValue("end"),
		Error:   h.tr.T(view.Locale, "too_many_requests", nil),
	}
	h.renderPartial(w, "reservation-form", view)
}

func (h *TemplateHandler) view(roomID string) (roomView, bool) {
	room, ok := h.rooms.Lookup(roomID)
	if !ok {
		return roomView{}, false
	}
	snap, _ := h.boards.RoomSnapshot(roomID)
	locale := room.Locale
	if locale == "" {
		locale = h.defaultLocale
	}
	return roomView{Room: room, Locale: locale, Snapshot: snap}, true
}

func (h *TemplateHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *TemplateHandler) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		fmt.Fprintf(w, `<div class="alert alert-error">Template error</div>`)
	}
}
