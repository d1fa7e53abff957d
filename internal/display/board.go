// Package display keeps one live Board per room: the room's event list,
// the current instant, and the periodic tasks that refresh both.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/timeline"
)

const (
	DefaultPollSchedule  = "@every 3s"
	DefaultClockInterval = time.Minute

	fetchTimeout = 15 * time.Second
)

var ErrAlreadyStarted = errors.New("board already started")

// Fetcher loads a room's events from the backend calendar.
type Fetcher interface {
	FetchEvents(ctx context.Context, room model.Room) ([]model.Event, error)
}

// SnapshotStore persists the last good event list of a room.
type SnapshotStore interface {
	Save(roomID string, events []model.Event, fetchedAt time.Time) error
	Load(roomID string) ([]model.Event, time.Time, error)
}

// Publisher receives every snapshot a board produces.
type Publisher interface {
	Publish(roomID string, snap model.Snapshot)
}

// Options configures a Board. Zero values fall back to defaults.
type Options struct {
	Hours         []int
	Location      *time.Location
	PollSchedule  string
	ClockInterval time.Duration
	Now           func() time.Time
	Store         SnapshotStore
	Publisher     Publisher
	Logger        *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Hours == nil {
		o.Hours = timeline.DefaultHours()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.PollSchedule == "" {
		o.PollSchedule = DefaultPollSchedule
	}
	if o.ClockInterval <= 0 {
		o.ClockInterval = DefaultClockInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Board owns the event list and clock of one room.
type Board struct {
	room    model.Room
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger

	mu         sync.RWMutex
	events     []model.Event
	now        time.Time
	fetchedAt  time.Time
	lastErr    string
	stale      bool
	appliedSeq uint64

	seq atomic.Uint64

	lifeMu sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	cron   *cron.Cron
	done   chan struct{}
	polls  sync.WaitGroup
}

func NewBoard(room model.Room, fetcher Fetcher, opts Options) *Board {
	opts = opts.withDefaults()
	return &Board{
		room:    room,
		fetcher: fetcher,
		opts:    opts,
		logger:  opts.Logger.With("component", "display", "room", room.ID),
		stale:   true,
	}
}

func (b *Board) Room() model.Room {
	return b.room
}

// Start warm-loads the stored list, then starts the clock and poll tasks
// and kicks off an immediate fetch. Cancelling ctx or calling Stop ends
// both tasks.
func (b *Board) Start(ctx context.Context) error {
	b.lifeMu.Lock()
	defer b.lifeMu.Unlock()

	if b.cancel != nil {
		return ErrAlreadyStarted
	}

	b.warmLoad()
	b.tick()

	ctx, cancel := context.WithCancel(ctx)

	logger := cronLogger{b.logger}
	c := cron.New(
		cron.WithLocation(b.opts.Location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)
	if _, err := c.AddFunc(b.opts.PollSchedule, func() { b.poll(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("schedule poll %q: %w", b.opts.PollSchedule, err)
	}

	b.ctx = ctx
	b.cancel = cancel
	b.cron = c
	b.done = make(chan struct{})

	go b.runClock(ctx, b.done)
	c.Start()

	b.polls.Add(1)
	go func() {
		defer b.polls.Done()
		b.poll(ctx)
	}()

	b.logger.Info("board started", "poll", b.opts.PollSchedule, "clock", b.opts.ClockInterval)
	return nil
}

// Stop cancels both tasks and waits for them and any in-flight fetch.
func (b *Board) Stop() {
	b.lifeMu.Lock()
	cancel, c, done := b.cancel, b.cron, b.done
	b.cancel, b.cron, b.done, b.ctx = nil, nil, nil, nil
	b.lifeMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
	<-done
	b.polls.Wait()
	b.logger.Info("board stopped")
}

func (b *Board) runClock(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(b.opts.ClockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick()
			b.publish()
		}
	}
}

func (b *Board) tick() {
	now := b.opts.Now().In(b.opts.Location)
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Refresh fetches immediately and returns the fetch error, if any.
func (b *Board) Refresh(ctx context.Context) error {
	return b.poll(ctx)
}

// RefreshAsync schedules an immediate fetch tied to the board lifecycle.
// It is a no-op on a stopped board.
func (b *Board) RefreshAsync() {
	b.lifeMu.Lock()
	defer b.lifeMu.Unlock()
	if b.ctx == nil {
		return
	}
	ctx := b.ctx
	b.polls.Add(1)
	go func() {
		defer b.polls.Done()
		b.poll(ctx)
	}()
}

func (b *Board) poll(ctx context.Context) error {
	seq := b.seq.Add(1)

	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	events, err := b.fetcher.FetchEvents(fctx, b.room)
	cancel()

	if err != nil && ctx.Err() != nil {
		return err
	}
	b.apply(seq, events, err)
	return err
}

// apply installs the result of fetch number seq. Results older than the
// last applied one are dropped.
func (b *Board) apply(seq uint64, events []model.Event, fetchErr error) bool {
	b.mu.Lock()
	if seq <= b.appliedSeq {
		b.mu.Unlock()
		b.logger.Debug("discarding late fetch", "seq", seq)
		return false
	}

	if fetchErr != nil {
		b.lastErr = fetchErr.Error()
		b.stale = true
		b.mu.Unlock()
		b.logger.Warn("fetch events failed, keeping previous list", "error", fetchErr)
		b.publish()
		return true
	}

	if events == nil {
		events = []model.Event{}
	}
	fetchedAt := b.opts.Now()
	b.appliedSeq = seq
	b.events = events
	b.fetchedAt = fetchedAt
	b.lastErr = ""
	b.stale = false
	b.mu.Unlock()

	b.logger.Debug("events applied", "seq", seq, "count", len(events))

	if b.opts.Store != nil {
		if err := b.opts.Store.Save(b.room.ID, events, fetchedAt); err != nil {
			b.logger.Error("save event snapshot", "error", err)
		}
	}
	b.publish()
	return true
}

func (b *Board) warmLoad() {
	if b.opts.Store == nil {
		return
	}
	events, fetchedAt, err := b.opts.Store.Load(b.room.ID)
	if err != nil {
		b.logger.Error("load event snapshot", "error", err)
		return
	}
	if events == nil {
		return
	}
	for i := range events {
		events[i].Start = events[i].Start.In(b.opts.Location)
		events[i].End = events[i].End.In(b.opts.Location)
	}

	b.mu.Lock()
	b.events = events
	b.fetchedAt = fetchedAt
	b.stale = true
	b.mu.Unlock()
	b.logger.Info("warm start from stored snapshot", "count", len(events), "fetched_at", fetchedAt)
}

// Events returns the full stored list, not restricted to today.
func (b *Board) Events() []model.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Today returns the stored events overlapping the board's current day.
func (b *Board) Today() []model.Event {
	b.mu.RLock()
	events, now := b.events, b.currentNow()
	b.mu.RUnlock()
	return calendar.FilterDay(events, now)
}

// Snapshot projects the current list at the board's current instant.
func (b *Board) Snapshot() model.Snapshot {
	b.mu.RLock()
	events := b.events
	now := b.currentNow()
	fetchedAt, lastErr, stale := b.fetchedAt, b.lastErr, b.stale
	b.mu.RUnlock()

	today := calendar.FilterDay(events, now)
	p := timeline.Project(now, today, b.opts.Hours)

	return model.Snapshot{
		RoomID:      b.room.ID,
		Now:         now,
		CurrentHour: now.Hour(),
		Slots:       p.Slots,
		Current:     p.Current,
		Next:        p.Next,
		Available:   p.Current == nil,
		EventCount:  len(today),
		FetchedAt:   fetchedAt,
		Stale:       stale,
		LastError:   lastErr,
	}
}

// currentNow must be called with mu held.
func (b *Board) currentNow() time.Time {
	if b.now.IsZero() {
		return b.opts.Now().In(b.opts.Location)
	}
	return b.now
}

func (b *Board) publish() {
	if b.opts.Publisher == nil {
		return
	}
	b.opts.Publisher.Publish(b.room.ID, b.Snapshot())
}

// cronLogger routes cron's own messages into slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
