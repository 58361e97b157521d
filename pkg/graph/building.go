package graph

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

type prefix struct {
	prefix string
	typ    NodeType
}

// indoorPrefixes is matched in order; prefixes are case-sensitive, so "E"
// (classroom) and "e" (entrance) are distinct.
var indoorPrefixes = []prefix{
	{"H", TypeHallway},
	{"E", TypeClassroom},
	{"T", TypeToilet},
	{"U", TypeUnknown},
	{"S", TypeStair},
	{"L", TypeLift},
	{"e", TypeEntrance},
}

func classify(table []prefix, id string) (NodeType, error) {
	for _, p := range table {
		if strings.HasPrefix(id, p.prefix) {
			return p.typ, nil
		}
	}
	return "", errors.New(errors.ErrCodeUnknownNodeType, "no node type for id %q", id)
}

// Building is the indoor graph of one building.
//
// The zero value is not usable; create one with [NewBuilding].
type Building struct {
	store
	floors    map[int]struct{}
	entrances []string
}

// NewBuilding creates an empty building graph.
func NewBuilding(name string) *Building {
	return &Building{
		store:  newStore(name),
		floors: make(map[int]struct{}),
	}
}

// Kind returns [KindIndoor].
func (b *Building) Kind() Kind { return KindIndoor }

// Literal is false: building queries may use room display names.
func (b *Building) Literal() bool { return false }

// Classify returns the node type encoded in the id prefix.
func (b *Building) Classify(id string) (NodeType, error) {
	return classify(indoorPrefixes, id)
}

// IsShaft reports whether id denotes a stair or a lift.
// Unclassifiable ids are not shafts.
func (b *Building) IsShaft(id string) bool {
	t, err := b.Classify(id)
	return err == nil && t.IsShaft()
}

// IsEntrance reports whether id denotes an entrance.
func (b *Building) IsEntrance(id string) bool {
	t, err := b.Classify(id)
	return err == nil && t == TypeEntrance
}

// Qualify turns a raw id into its floor-scoped id. Stairs, lifts and
// entrances are shared by every floor and stay unqualified.
func (b *Building) Qualify(raw string, floor int) string {
	if b.IsShaft(raw) || b.IsEntrance(raw) {
		return raw
	}
	return raw + "_" + strconv.Itoa(floor)
}

// Entrances returns the entrance ids in insertion order.
func (b *Building) Entrances() []string { return slices.Clone(b.entrances) }

// Floors returns the number of distinct floors loaded.
func (b *Building) Floors() int { return len(b.floors) }

// FloorNumbers returns the loaded floors in ascending order.
func (b *Building) FloorNumbers() []int { return slices.Sorted(maps.Keys(b.floors)) }

// Floor returns the floor of the node with the given id.
func (b *Building) Floor(id string) (int, bool) {
	n, ok := b.nodes[id]
	if !ok {
		return 0, false
	}
	return n.Floor, true
}

// Color returns the display color of an indoor node type.
func (b *Building) Color(t NodeType) string { return Color(t) }

// AddNode declares a room on floor. The raw id is qualified, its outgoing
// neighbors are added first, and the node is inserted. Re-declaring a shaft
// or entrance on another floor only adds its edges; re-declaring any other
// id is a CORRUPT_GRAPH error.
func (b *Building) AddNode(floor int, spec NodeSpec) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if spec.ID == "" {
		return errors.New(errors.ErrCodeCorruptGraph, "%s: node on floor %d has no id", b.name, floor)
	}
	typ, err := b.Classify(spec.ID)
	if err != nil {
		return err
	}
	id := b.Qualify(spec.ID, floor)
	if existing, ok := b.nodes[id]; ok && !typ.IsShaft() && typ != TypeEntrance {
		return errors.New(errors.ErrCodeCorruptGraph,
			"%s: node %s declared twice (floors %d and %d)", b.name, id, existing.Floor, floor)
	}
	if err := b.AddNeighbors(floor, id, spec.Neighbors); err != nil {
		return err
	}

	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	_, added := b.put(&Node{
		ID:    id,
		Type:  typ,
		Name:  name,
		Floor: floor,
		Meta:  maps.Clone(spec.Attrs),
	})
	b.floors[floor] = struct{}{}
	if added && typ == TypeEntrance {
		b.entrances = append(b.entrances, id)
	}
	return nil
}

// AddNeighbors adds the outgoing edges of the already-qualified source.
// Targets and predecessor keys are raw ids qualified with floor.
// An edge between two shafts is rejected with CORRUPT_GRAPH.
func (b *Building) AddNeighbors(floor int, source string, neighbors []NeighborSpec) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	for _, nb := range neighbors {
		if _, err := b.Classify(nb.ID); err != nil {
			return err
		}
		target := b.Qualify(nb.ID, floor)
		if b.IsShaft(source) && b.IsShaft(target) {
			return errors.New(errors.ErrCodeCorruptGraph,
				"%s: stairs and lifts cannot be connected to each other (%s -> %s)", b.name, source, target)
		}
		dir := nb.Direction.qualify(func(raw string) string { return b.Qualify(raw, floor) })
		if err := b.link(Edge{From: source, To: target, Weight: nb.Weight, Direction: dir}); err != nil {
			return err
		}
	}
	return nil
}

// Load declares every room of every floor, lowest floor first.
func (b *Building) Load(floors []FloorSpec) error {
	sorted := slices.Clone(floors)
	slices.SortStableFunc(sorted, func(x, y FloorSpec) int { return x.Floor - y.Floor })
	for _, f := range sorted {
		for _, room := range f.Rooms {
			if err := b.AddNode(f.Floor, room); err != nil {
				return err
			}
		}
	}
	return nil
}

// Seal validates edge endpoints and freezes the building.
func (b *Building) Seal() error { return b.seal() }
