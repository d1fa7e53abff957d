package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/timeline"
)

func TestPad(t *testing.T) {
	tests := []string{"Standup", "Revisión de diseño", "会議室の予約", strings.Repeat("x", 60)}
	for _, in := range tests {
		got := pad(in, 20)
		if w := runewidth.StringWidth(got); w != 20 {
			t.Errorf("pad(%q) width = %d, want 20", in, w)
		}
	}
}

func TestPrintTimeline(t *testing.T) {
	tr := i18n.NewTranslator("es", slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	events := []model.Event{
		{ID: "1", Title: "Standup", Start: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)},
	}
	p := timeline.Project(now, events, timeline.DefaultHours())

	var buf bytes.Buffer
	printTimeline(&buf, tr, model.Room{Name: "Creativity", Locale: "es"}, now, p)
	out := buf.String()

	if !strings.Contains(out, "> Standup (09:00 - 09:30)") {
		t.Errorf("missing current event line:\n%s", out)
	}
	if !strings.Contains(out, "* 09:00  Standup") {
		t.Errorf("09:00 slot not marked active:\n%s", out)
	}
	if !strings.Contains(out, "  10:00\n") {
		t.Errorf("empty 10:00 slot missing:\n%s", out)
	}
}
