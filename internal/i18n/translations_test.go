package i18n

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestTranslator(locale string) *Translator {
	return NewTranslator(locale, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTranslate(t *testing.T) {
	tr := newTestTranslator("es")

	tests := []struct {
		locale, key, want string
	}{
		{"es", "available", "Disponible"},
		{"en", "available", "Available"},
		{"es", "untitled", "Sin título"},
		{"en", "untitled", "Untitled"},
		{"", "available", "Disponible"},
		{"fr", "available", "Disponible"},
		{"en", "does_not_exist", "does_not_exist"},
	}
	for _, tt := range tests {
		if got := tr.T(tt.locale, tt.key, nil); got != tt.want {
			t.Errorf("T(%q, %q) = %q, want %q", tt.locale, tt.key, got, tt.want)
		}
	}
}

func TestTranslateTemplateData(t *testing.T) {
	tr := newTestTranslator("es")

	got := tr.T("en", "reservation_failed", map[string]any{"Error": "slot taken"})
	if got != "Could not create the reservation: slot taken" {
		t.Errorf("got %q", got)
	}
}

func TestDate(t *testing.T) {
	tr := newTestTranslator("es")
	d := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if got := tr.Date("es", d); got != "martes, 10 de marzo de 2026" {
		t.Errorf("es date = %q", got)
	}
	if got := tr.Date("en", d); got != "Tuesday, March 10, 2026" {
		t.Errorf("en date = %q", got)
	}
}

func TestBadDefaultLocale(t *testing.T) {
	tr := newTestTranslator("not a locale!")
	if got := tr.T("", "available", nil); got != "Disponible" {
		t.Errorf("got %q, want Spanish fallback", got)
	}
	if len(tr.Languages()) != 2 {
		t.Errorf("languages = %v", tr.Languages())
	}
}
