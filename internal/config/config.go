// Package config loads roomboard's runtime settings from the environment
// and the room table from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

var (
	ErrInvalidHours         = errors.New("ROOMBOARD_DAY_START and ROOMBOARD_DAY_END must satisfy 0 <= start <= end <= 23")
	ErrInvalidClockInterval = errors.New("ROOMBOARD_CLOCK_INTERVAL must be a positive duration")
	ErrInvalidPollSchedule  = errors.New("ROOMBOARD_POLL must be a cron spec or @every descriptor")
	ErrMissingAPIBase       = errors.New("ROOMBOARD_API_BASE is required")
)

// Config holds process-wide settings.
type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	RoomsFile string
	APIBase   string
	Timezone  string
	Locale    string

	// PollSchedule drives each board's fetch loop (robfig/cron syntax).
	PollSchedule  string
	ClockInterval time.Duration

	DayStart int
	DayEnd   int

	OperatorUser         string
	OperatorPasswordHash string
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	// .env is optional; deployed tablets get their variables from systemd.
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getenv("ROOMBOARD_PORT", "8080"),
		DBPath:               getenv("ROOMBOARD_DB_PATH", "roomboard.db"),
		LogLevel:             getenv("ROOMBOARD_LOG_LEVEL", "info"),
		RoomsFile:            getenv("ROOMBOARD_ROOMS_FILE", "rooms.yaml"),
		APIBase:              getenv("ROOMBOARD_API_BASE", "http://localhost:5130/api"),
		Timezone:             getenv("ROOMBOARD_TIMEZONE", "America/Guayaquil"),
		Locale:               getenv("ROOMBOARD_LOCALE", "es"),
		PollSchedule:         getenv("ROOMBOARD_POLL", "@every 3s"),
		OperatorUser:         os.Getenv("ROOMBOARD_OPERATOR_USER"),
		OperatorPasswordHash: os.Getenv("ROOMBOARD_OPERATOR_PASSWORD_HASH"),
	}

	var err error
	if cfg.ClockInterval, err = time.ParseDuration(getenv("ROOMBOARD_CLOCK_INTERVAL", "1m")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClockInterval, err)
	}
	if cfg.DayStart, err = strconv.Atoi(getenv("ROOMBOARD_DAY_START", "7")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHours, err)
	}
	if cfg.DayEnd, err = strconv.Atoi(getenv("ROOMBOARD_DAY_END", "18")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHours, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that can be wrong independently of the room table.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBase) == "" {
		return ErrMissingAPIBase
	}
	if c.DayStart < 0 || c.DayEnd > 23 || c.DayStart > c.DayEnd {
		return ErrInvalidHours
	}
	if c.ClockInterval <= 0 {
		return ErrInvalidClockInterval
	}
	if _, err := cron.ParseStandard(c.PollSchedule); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPollSchedule, err)
	}
	return nil
}

// Location resolves Timezone, falling back to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// OperatorEnabled reports whether operator-only routes are mounted.
func (c *Config) OperatorEnabled() bool {
	return c.OperatorUser != "" && c.OperatorPasswordHash != ""
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
