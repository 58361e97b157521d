package graph

import (
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

// Site is one campus together with the buildings standing on it.
// It is built at startup and passed by reference to everything that routes.
type Site struct {
	Campus *Campus
	// Revision identifies the descriptions the site was loaded from. Cached
	// routes are only reused for the same revision.
	Revision  string
	buildings map[string]*Building
}

// NewSite creates a site around campus.
func NewSite(campus *Campus) *Site {
	return &Site{Campus: campus, buildings: make(map[string]*Building)}
}

// AddBuilding registers b under its name.
func (s *Site) AddBuilding(b *Building) error {
	if _, ok := s.buildings[b.Name()]; ok {
		return errors.New(errors.ErrCodeInvalidInput, "building %s registered twice", b.Name())
	}
	s.buildings[b.Name()] = b
	return nil
}

// Building returns the building graph with the given name.
func (s *Site) Building(name string) (*Building, error) {
	b, ok := s.buildings[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownBuilding, "no graph loaded for building %q", name)
	}
	return b, nil
}

// BuildingNames returns the registered building names in sorted order.
func (s *Site) BuildingNames() []string {
	return slices.Sorted(maps.Keys(s.buildings))
}

// RoomRef names a room in a specific building. Room is either a literal
// node id or a display name.
type RoomRef struct {
	Building string `json:"building"`
	Room     string `json:"room"`
}

// ParseRoomRef parses "<building>:<room>", e.g. "P1:E214_3".
func ParseRoomRef(s string) (RoomRef, error) {
	if err := errors.ValidateRoomRef(s); err != nil {
		return RoomRef{}, err
	}
	building, room, _ := strings.Cut(s, ":")
	return RoomRef{Building: building, Room: room}, nil
}

func (r RoomRef) String() string { return r.Building + ":" + r.Room }

// IsZero reports whether r is empty.
func (r RoomRef) IsZero() bool { return r.Building == "" && r.Room == "" }
