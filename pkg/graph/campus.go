package graph

import (
	"maps"
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/tidwall/geodesic"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

// NearTolerance is the distance in whole meters under which a node counts
// as "at" the queried position.
const NearTolerance = 5

var outdoorPrefixes = []prefix{
	{"c", TypeRoad},
	{"e", TypeExit},
}

// Campus is the outdoor graph of the grounds.
//
// The zero value is not usable; create one with [NewCampus].
type Campus struct {
	store
	canonical bool
	measure   func(a, b LatLon) float64
}

// CampusOption configures a [Campus].
type CampusOption func(*Campus)

// WithCanonical marks the campus as the canonical campus graph, whose ids
// are always literal.
func WithCanonical(canonical bool) CampusOption {
	return func(c *Campus) { c.canonical = canonical }
}

// NewCampus creates an empty campus graph.
func NewCampus(name string, opts ...CampusOption) *Campus {
	c := &Campus{
		store:   newStore(name),
		measure: Geodesic,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geodesic returns the distance between a and b in meters on the WGS84
// ellipsoid.
func Geodesic(a, b LatLon) float64 {
	var d float64
	geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon, &d, nil, nil)
	return d
}

// Kind returns [KindOutdoor].
func (c *Campus) Kind() Kind { return KindOutdoor }

// Literal reports whether this is the canonical campus graph.
func (c *Campus) Literal() bool { return c.canonical }

// Classify returns the node type encoded in the id prefix.
func (c *Campus) Classify(id string) (NodeType, error) {
	return classify(outdoorPrefixes, id)
}

// IsShaft is always false outdoors.
func (c *Campus) IsShaft(string) bool { return false }

// Color returns the display color of an outdoor node type.
func (c *Campus) Color(t NodeType) string { return Color(t) }

// DisplayName derives the human name of an outdoor id:
// "c172" is "Road 172" and "eR_2" is "Entry 2 of building R".
func (c *Campus) DisplayName(id string) (string, error) {
	typ, err := c.Classify(id)
	if err != nil {
		return "", err
	}
	if typ == TypeRoad {
		return "Road " + id[1:], nil
	}
	building, entry, ok := strings.Cut(id[1:], "_")
	if !ok || building == "" || entry == "" {
		return "", errors.New(errors.ErrCodeUnknownNodeType, "exit id %q must look like e<building>_<n>", id)
	}
	return "Entry " + entry + " of building " + building, nil
}

// AddNode declares an outdoor node and its outgoing edges.
func (c *Campus) AddNode(spec NodeSpec) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	typ, err := c.Classify(spec.ID)
	if err != nil {
		return err
	}
	name, err := c.DisplayName(spec.ID)
	if err != nil {
		return err
	}
	if _, ok := c.nodes[spec.ID]; ok {
		return errors.New(errors.ErrCodeCorruptGraph, "%s: node %s declared twice", c.name, spec.ID)
	}
	if err := c.AddNeighbors(spec.ID, spec.Neighbors); err != nil {
		return err
	}
	c.put(&Node{
		ID:       spec.ID,
		Type:     typ,
		Name:     name,
		Position: LatLon{Lat: spec.Lat, Lon: spec.Lon},
		Meta:     maps.Clone(spec.Attrs),
	})
	return nil
}

// AddNeighbors adds weighted outgoing edges of source. Outdoor edges carry
// no direction.
func (c *Campus) AddNeighbors(source string, neighbors []NeighborSpec) error {
	if err := c.checkMutable(); err != nil {
		return err
	}
	for _, nb := range neighbors {
		if err := c.link(Edge{From: source, To: nb.ID, Weight: nb.Weight}); err != nil {
			return err
		}
	}
	return nil
}

// Load declares every node in order.
func (c *Campus) Load(nodes []NodeSpec) error {
	for _, n := range nodes {
		if err := c.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// Seal validates edge endpoints and freezes the campus.
func (c *Campus) Seal() error { return c.seal() }

// Coordinates returns the position of the node with the given id.
func (c *Campus) Coordinates(id string) (LatLon, bool) {
	n, ok := c.nodes[id]
	if !ok {
		return LatLon{}, false
	}
	return n.Position, true
}

// Bound returns the bounding box of every node position.
func (c *Campus) Bound() orb.Bound {
	mp := make(orb.MultiPoint, 0, len(c.order))
	for _, id := range c.order {
		mp = append(mp, c.nodes[id].Position.Point())
	}
	return mp.Bound()
}

// Distance returns the geodesic distance between a and b in meters.
func (c *Campus) Distance(a, b LatLon) float64 { return c.measure(a, b) }

// Nearest returns the node closest to p. Distances are rounded to whole
// meters; the first node within [NearTolerance] is returned without looking
// further, otherwise the first node at the minimum distance wins.
func (c *Campus) Nearest(p LatLon) (string, error) {
	best, bestDist := "", math.Inf(1)
	for _, id := range c.order {
		d := math.Round(c.measure(p, c.nodes[id].Position))
		if d <= NearTolerance {
			return id, nil
		}
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	if best == "" {
		return "", errors.New(errors.ErrCodeNodeNotFound, "%s has no nodes", c.name)
	}
	return best, nil
}
