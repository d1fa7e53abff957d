package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dukerupert/roomboard/internal/model"
)

// Room table validation errors.
var (
	ErrNoRooms            = errors.New("at least one room is required")
	ErrRoomMissingID      = errors.New("room id is required")
	ErrDuplicateRoom      = errors.New("room id is duplicated")
	ErrRoomMissingMailbox = errors.New("room email is required")
	ErrRoomMissingTenant  = errors.New("room tenant is required")
	ErrInvalidColor       = errors.New("theme colors must be #RRGGBB")
)

var (
	hexColorRegexp = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	roomIDRegexp   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

var defaultTheme = model.Theme{
	Primary:   "#40CCA1",
	Secondary: "#F7D159",
	Text:      "#FFFFFF",
}

type roomsFile struct {
	Rooms []model.Room `yaml:"rooms"`
}

// RoomTable is the read-only room lookup, built once at startup.
type RoomTable struct {
	rooms []model.Room
	byID  map[string]int
}

// LoadRooms reads and validates the YAML room table at path.
func LoadRooms(path, defaultLocale string) (*RoomTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms file: %w", err)
	}
	return ParseRooms(data, defaultLocale)
}

// ParseRooms builds a RoomTable from YAML bytes.
func ParseRooms(data []byte, defaultLocale string) (*RoomTable, error) {
	var f roomsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rooms file: %w", err)
	}
	return NewRoomTable(f.Rooms, defaultLocale)
}

// NewRoomTable validates rooms and fills theme and locale defaults.
func NewRoomTable(rooms []model.Room, defaultLocale string) (*RoomTable, error) {
	if len(rooms) == 0 {
		return nil, ErrNoRooms
	}

	t := &RoomTable{
		rooms: make([]model.Room, 0, len(rooms)),
		byID:  make(map[string]int, len(rooms)),
	}
	for i, r := range rooms {
		r.ID = strings.TrimSpace(r.ID)
		r.Mailbox = strings.TrimSpace(r.Mailbox)
		r.Tenant = strings.TrimSpace(r.Tenant)

		if r.ID == "" || !roomIDRegexp.MatchString(r.ID) {
			return nil, fmt.Errorf("rooms[%d]: %w", i, ErrRoomMissingID)
		}
		if _, dup := t.byID[r.ID]; dup {
			return nil, fmt.Errorf("rooms[%d] %q: %w", i, r.ID, ErrDuplicateRoom)
		}
		if r.Mailbox == "" {
			return nil, fmt.Errorf("room %q: %w", r.ID, ErrRoomMissingMailbox)
		}
		if r.Tenant == "" {
			return nil, fmt.Errorf("room %q: %w", r.ID, ErrRoomMissingTenant)
		}
		if r.Name == "" {
			r.Name = r.ID
		}
		if r.Locale == "" {
			r.Locale = defaultLocale
		}
		r.Theme = withThemeDefaults(r.Theme)
		for _, c := range []string{r.Theme.Primary, r.Theme.Secondary, r.Theme.Third, r.Theme.Text, r.Theme.ModalButton} {
			if c != "" && !hexColorRegexp.MatchString(c) {
				return nil, fmt.Errorf("room %q color %q: %w", r.ID, c, ErrInvalidColor)
			}
		}

		t.byID[r.ID] = len(t.rooms)
		t.rooms = append(t.rooms, r)
	}
	return t, nil
}

func withThemeDefaults(th model.Theme) model.Theme {
	if th.Primary == "" {
		th.Primary = defaultTheme.Primary
	}
	if th.Secondary == "" {
		th.Secondary = defaultTheme.Secondary
	}
	if th.Text == "" {
		th.Text = defaultTheme.Text
	}
	return th
}

// Lookup returns the room with the given id.
func (t *RoomTable) Lookup(id string) (model.Room, bool) {
	i, ok := t.byID[id]
	if !ok {
		return model.Room{}, false
	}
	return t.rooms[i], true
}

// List returns the rooms in file order.
func (t *RoomTable) List() []model.Room {
	out := make([]model.Room, len(t.rooms))
	copy(out, t.rooms)
	return out
}

// Len is the number of rooms.
func (t *RoomTable) Len() int {
	return len(t.rooms)
}
