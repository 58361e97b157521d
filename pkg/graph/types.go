package graph

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Metadata stores description attributes that have no dedicated field.
// They are kept so descriptions round-trip and so renderers can show them.
type Metadata map[string]any

// NodeType is the semantic type of a node, derived from its id prefix.
type NodeType string

// Indoor node types.
const (
	TypeHallway   NodeType = "hallway"
	TypeClassroom NodeType = "classroom"
	TypeToilet    NodeType = "toilet"
	TypeUnknown   NodeType = "unknown"
	TypeStair     NodeType = "stair"
	TypeLift      NodeType = "lift"
	TypeEntrance  NodeType = "entrance"
)

// Outdoor node types.
const (
	TypeRoad NodeType = "road"
	TypeExit NodeType = "exit"
)

// IsShaft reports whether the type connects floors.
func (t NodeType) IsShaft() bool { return t == TypeStair || t == TypeLift }

// Kind distinguishes the two graph variants.
type Kind int

const (
	// KindIndoor is a floor-aware building graph.
	KindIndoor Kind = iota
	// KindOutdoor is the geo-aware campus graph.
	KindOutdoor
)

func (k Kind) String() string {
	switch k {
	case KindIndoor:
		return "indoor"
	case KindOutdoor:
		return "outdoor"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText encodes the kind as "indoor" or "outdoor".
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "indoor" or "outdoor".
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "indoor":
		*k = KindIndoor
	case "outdoor":
		*k = KindOutdoor
	default:
		return fmt.Errorf("unknown graph kind %q", text)
	}
	return nil
}

// LatLon is a WGS84 coordinate in degrees.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Point converts to an orb point, which is ordered longitude first.
func (p LatLon) Point() orb.Point { return orb.Point{p.Lon, p.Lat} }

func (p LatLon) String() string { return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon) }

// Node is a vertex of a building or campus graph.
//
// Floor is meaningful for indoor nodes only and Position for outdoor nodes
// only. A shaft node keeps the floor it was first declared on.
type Node struct {
	ID       string
	Type     NodeType
	Name     string
	Floor    int
	Position LatLon
	Meta     Metadata
}

// Edge is a directed, weighted connection owned by its source node.
// Outdoor edges have a zero Direction.
type Edge struct {
	From      string
	To        string
	Weight    float64
	Direction Direction
}

// NeighborSpec describes one outgoing edge in a graph description.
// ID and the Direction's predecessor keys are raw (unqualified) ids.
type NeighborSpec struct {
	ID        string
	Weight    float64
	Direction Direction
}

// NodeSpec describes one node in a graph description. Lat and Lon are only
// read by [Campus.AddNode]; Name is only read by [Building.AddNode].
type NodeSpec struct {
	ID        string
	Name      string
	Lat       float64
	Lon       float64
	Neighbors []NeighborSpec
	Attrs     Metadata
}

// FloorSpec is the list of rooms declared on one floor of a building.
type FloorSpec struct {
	Floor int
	Rooms []NodeSpec
}
