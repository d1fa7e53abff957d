// roomctl fetches one room's events once and prints today's timeline, for
// installers checking a tablet's feed from a shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mattn/go-runewidth"

	"github.com/dukerupert/roomboard/internal/calendar"
	"github.com/dukerupert/roomboard/internal/config"
	"github.com/dukerupert/roomboard/internal/i18n"
	"github.com/dukerupert/roomboard/internal/logging"
	"github.com/dukerupert/roomboard/internal/model"
	"github.com/dukerupert/roomboard/internal/timeline"
)

const titleWidth = 40

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	roomID := flag.String("room", "", "Room id from the rooms file (required)")
	roomsFile := flag.String("rooms", cfg.RoomsFile, "Path to rooms YAML")
	apiBase := flag.String("api", cfg.APIBase, "Backend calendar API base URL")
	at := flag.String("at", "", "Evaluate at this local time (2006-01-02T15:04) instead of now")
	list := flag.Bool("list", false, "List configured rooms and exit")
	flag.Parse()

	logger := logging.Setup(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("falling back to host timezone", "error", err)
	}

	rooms, err := config.LoadRooms(*roomsFile, cfg.Locale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rooms: %v\n", err)
		os.Exit(1)
	}

	if *list {
		printRooms(os.Stdout, rooms.List())
		return
	}

	if *roomID == "" {
		fmt.Fprintln(os.Stderr, "Error: -room is required")
		flag.PrintDefaults()
		os.Exit(2)
	}
	room, ok := rooms.Lookup(*roomID)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown room %q\n", *roomID)
		os.Exit(1)
	}

	now := time.Now().In(loc)
	if *at != "" {
		if now, err = time.ParseInLocation("2006-01-02T15:04", *at, loc); err != nil {
			fmt.Fprintf(os.Stderr, "invalid -at: %v\n", err)
			os.Exit(2)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := calendar.NewClient(*apiBase, loc, logger.With("component", "calendar"))
	events, err := client.FetchEvents(ctx, room)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}

	today := calendar.FilterDay(events, now)
	p := timeline.Project(now, today, timeline.Hours(cfg.DayStart, cfg.DayEnd))
	tr := i18n.NewTranslator(cfg.Locale, logger)

	printTimeline(os.Stdout, tr, room, now, p)
}

func printRooms(w io.Writer, rooms []model.Room) {
	for _, r := range rooms {
		fmt.Fprintf(w, "%s  %s  %s\n", pad(r.ID, 16), pad(r.Name, 24), r.Campus)
	}
}

func printTimeline(w io.Writer, tr *i18n.Translator, room model.Room, now time.Time, p timeline.Projection) {
	locale := room.Locale
	fmt.Fprintf(w, "%s  %s %s\n", room.Name, tr.Date(locale, now), now.Format("15:04"))

	if p.Current != nil {
		fmt.Fprintf(w, "> %s (%s - %s)\n", displayTitle(tr, locale, p.Current.Title), p.Current.Start.Format("15:04"), p.Current.End.Format("15:04"))
	} else {
		fmt.Fprintf(w, "> %s\n", tr.T(locale, "available", nil))
	}
	fmt.Fprintln(w, strings.Repeat("-", titleWidth+22))

	for _, slot := range p.Slots {
		marker := " "
		if slot.Active {
			marker = "*"
		}
		if len(slot.Events) == 0 {
			fmt.Fprintf(w, "%s %s\n", marker, slot.Label)
			continue
		}
		for i, ev := range slot.Events {
			label := slot.Label
			if i > 0 {
				label = strings.Repeat(" ", len(label))
			}
			fmt.Fprintf(w, "%s %s  %s  %s-%s\n", marker, label, pad(displayTitle(tr, locale, ev.Title), titleWidth), ev.Start, ev.End)
		}
	}
}

func displayTitle(tr *i18n.Translator, locale, title string) string {
	if strings.TrimSpace(title) == "" {
		return tr.T(locale, "untitled", nil)
	}
	return title
}

// pad truncates and fills s to width terminal cells.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}
