// Package i18n renders room screen labels in the room's locale.
package i18n

import (
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed active.*.toml
var localeFS embed.FS

var localeFiles = []string{"active.es.toml", "active.en.toml"}

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger
}

// NewTranslator builds a Translator whose fallback language is
// defaultLocale. Unknown locales fall back to Spanish.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "i18n")

	tag, err := language.Parse(defaultLocale)
	if err != nil {
		logger.Warn("unknown default locale, using es", "locale", defaultLocale)
		tag = language.Spanish
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("load message file", "file", file, "error", err)
		}
	}

	return &Translator{
		bundle:          bundle,
		defaultLanguage: tag,
		logger:          logger,
	}
}

// Languages lists the locales with a loaded message file.
func (t *Translator) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// T renders the message identified by key for locale. A missing key or
// locale falls back to the default locale, then to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		t.logger.Warn("localize failed", "key", key, "locales", languages, "error", err)
		return key
	}
	return msg
}

// Date renders the long header date, e.g. "martes, 10 de marzo".
func (t *Translator) Date(locale string, d time.Time) string {
	return t.T(locale, "date_long", map[string]any{
		"Weekday": t.T(locale, fmt.Sprintf("weekday_%d", int(d.Weekday())), nil),
		"Day":     d.Day(),
		"Month":   t.T(locale, fmt.Sprintf("month_%d", int(d.Month())), nil),
		"Year":    d.Year(),
	})
}
