// Package calendar talks to the backend calendar API that fronts each
// room's mailbox, and shapes its records into display events.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/roomboard/internal/model"
)

// ReservationLayout is the local, zone-less format the backend expects.
const ReservationLayout = "2006-01-02T15:04:05"

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("calendar API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("calendar API returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a thin HTTP client for GET/POST /calendar/{tenant}/{mailbox}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	loc        *time.Location
	logger     *slog.Logger
}

// NewClient creates a client. Event times are normalized into loc.
func NewClient(baseURL string, loc *time.Location, logger *slog.Logger) *Client {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		loc:        loc,
		logger:     logger,
	}
}

// Location is the display timezone events are normalized into.
func (c *Client) Location() *time.Location {
	return c.loc
}

func (c *Client) roomURL(tenant, mailbox string) string {
	return fmt.Sprintf("%s/calendar/%s/%s", c.baseURL, url.PathEscape(tenant), url.PathEscape(mailbox))
}

// ListEvents fetches the raw records for a room.
func (c *Client) ListEvents(ctx context.Context, tenant, mailbox string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.roomURL(tenant, mailbox), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readAPIError(resp)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode calendar response: %w", err)
	}
	return records, nil
}

// FetchEvents lists and normalizes a room's events. Records with bad
// timestamps are logged and skipped.
func (c *Client) FetchEvents(ctx context.Context, room model.Room) ([]model.Event, error) {
	records, err := c.ListEvents(ctx, room.Tenant, room.Mailbox)
	if err != nil {
		return nil, err
	}
	events, errs := Normalize(records, c.loc)
	for _, e := range errs {
		c.logger.Warn("skipping calendar record", "room", room.ID, "error", e)
	}
	return events, nil
}

type reservationBody struct {
	Subject string `json:"subject"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// CreateReservation books the room. Times are sent in the client's
// location without a zone suffix.
func (c *Client) CreateReservation(ctx context.Context, tenant, mailbox, subject string, start, end time.Time) error {
	body, err := json.Marshal(reservationBody{
		Subject: subject,
		Start:   start.In(c.loc).Format(ReservationLayout),
		End:     end.In(c.loc).Format(ReservationLayout),
	})
	if err != nil {
		return fmt.Errorf("marshal reservation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.roomURL(tenant, mailbox), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reservation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	// The backend may or may not echo the event; either way is success.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
