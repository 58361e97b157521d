// Package guide turns routed paths into walking instructions.
//
// [Synthesize] walks an indoor path pair by pair and emits one [Step] per
// edge: a turn, a straight segment, or a floor change through a stair or
// lift. The last step is rephrased as an arrival ("Room 2.14 is on your
// left") unless it is a floor change. Every step carries a localized text
// and an icon reference.
//
// [Coordinates] projects an outdoor path onto latitude/longitude pairs for
// map display.
package guide

import (
	"fmt"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
)

// Kind is the type of an instruction step.
type Kind int

const (
	Straight Kind = iota
	Left
	Right
	Stairs
	Elevator
	Arrived
)

var kindNames = [...]string{"straight", "left", "right", "stairs", "elevator", "arrived"}

var iconNames = [...]string{"go_straight", "go_left", "go_right", "take_stairs", "take_lift", "arrived"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Icon returns the icon name of the step type.
func (k Kind) Icon() string {
	if k < 0 || int(k) >= len(iconNames) {
		return ""
	}
	return iconNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown step kind %q", text)
}

// Step is one instruction.
type Step struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	Icon string `json:"icon"`
}

// Instructions is the ordered result of [Synthesize].
type Instructions struct {
	Steps []Step `json:"steps"`
}

// Len returns the number of steps.
func (in Instructions) Len() int { return len(in.Steps) }

// Texts returns the step texts, aligned with [Instructions.Icons].
func (in Instructions) Texts() []string {
	out := make([]string, len(in.Steps))
	for i, s := range in.Steps {
		out[i] = s.Text
	}
	return out
}

// Icons returns the step icon references, aligned with [Instructions.Texts].
func (in Instructions) Icons() []string {
	out := make([]string, len(in.Steps))
	for i, s := range in.Steps {
		out[i] = s.Icon
	}
	return out
}

// Default icon location.
const (
	DefaultIconDir = "data/images/instructions3D/"
	DefaultIconExt = ".png"
)

type options struct {
	phrases Phrasebook
	iconDir string
	iconExt string
}

// Option configures [Synthesize].
type Option func(*options)

// WithPhrasebook selects the wording.
func WithPhrasebook(p Phrasebook) Option {
	return func(o *options) { o.phrases = p }
}

// WithIcons sets the directory prefix and file extension of icon references.
func WithIcons(dir, ext string) Option {
	return func(o *options) {
		o.iconDir = dir
		o.iconExt = ext
	}
}

// Synthesize converts an indoor path into instructions.
//
// The turn of each edge is resolved against the node walked before the
// edge's source. A floor change is detected between the node before a shaft
// and the node after it; the shaft's own floor is never compared. A path
// with fewer than two nodes yields no steps.
func Synthesize(b *graph.Building, path []string, opts ...Option) (Instructions, error) {
	o := options{phrases: English, iconDir: DefaultIconDir, iconExt: DefaultIconExt}
	for _, opt := range opts {
		opt(&o)
	}
	if len(path) < 2 {
		return Instructions{}, nil
	}

	steps := make([]Step, 0, len(path)-1)
	predecessor := graph.NoPredecessor
	for i := 0; i+1 < len(path); i++ {
		src, trg := path[i], path[i+1]
		edge, ok := b.Edge(src, trg)
		if !ok {
			return Instructions{}, errors.New(errors.ErrCodeInvalidQuery,
				"%s has no edge %s -> %s", b.Name(), src, trg)
		}
		turn, ok := edge.Direction.Resolve(predecessor)
		if !ok {
			return Instructions{}, errors.New(errors.ErrCodeCorruptGraph,
				"%s: edge %s -> %s has no direction for predecessor %s", b.Name(), src, trg, predecessor)
		}

		changed, up, err := floorChange(b, predecessor, src, trg)
		if err != nil {
			return Instructions{}, err
		}

		var kind Kind
		floor := 0
		switch {
		case changed:
			kind = Elevator
			if t, _ := b.Classify(src); t == graph.TypeStair {
				kind = Stairs
			}
			floor, _ = b.Floor(trg)
		case turn == graph.TurnStraight:
			kind = Straight
		case turn == graph.TurnLeft:
			kind = Left
		case turn == graph.TurnRight:
			kind = Right
		default:
			return Instructions{}, errors.New(errors.ErrCodeCorruptGraph,
				"%s: edge %s -> %s has invalid direction %q", b.Name(), src, trg, turn)
		}

		step := Step{Kind: kind, Text: o.phrases.text(kind, up, floor), Icon: o.icon(kind)}
		if i+2 == len(path) && !changed {
			n, _ := b.Node(trg)
			step = Step{Kind: Arrived, Text: o.phrases.arrival(kind, n.Name), Icon: o.icon(Arrived)}
		}
		steps = append(steps, step)
		predecessor = src
	}
	return Instructions{Steps: steps}, nil
}

func (o options) icon(k Kind) string { return o.iconDir + k.Icon() + o.iconExt }

// floorChange reports whether walking src -> trg after predecessor changes
// floor, and if so whether it goes up. Only a shaft may change floor.
func floorChange(b *graph.Building, predecessor, src, trg string) (changed, up bool, err error) {
	if predecessor == graph.NoPredecessor || b.IsShaft(trg) || b.IsShaft(predecessor) {
		return false, false, nil
	}
	from, ok := b.Floor(predecessor)
	if !ok {
		return false, false, errors.New(errors.ErrCodeNodeNotFound, "no node %q in %s", predecessor, b.Name())
	}
	to, ok := b.Floor(trg)
	if !ok {
		return false, false, errors.New(errors.ErrCodeNodeNotFound, "no node %q in %s", trg, b.Name())
	}
	if from == to {
		return false, false, nil
	}
	if !b.IsShaft(src) {
		return false, false, errors.New(errors.ErrCodeCorruptGraph,
			"%s: floor changes from %d to %d at %s, which is not a stair or lift", b.Name(), from, to, src)
	}
	return true, from < to, nil
}

// Coordinates projects an outdoor path onto positions, in path order.
func Coordinates(c *graph.Campus, path []string) ([]graph.LatLon, error) {
	out := make([]graph.LatLon, 0, len(path))
	for _, id := range path {
		p, ok := c.Coordinates(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeNodeNotFound, "no node %q in %s", id, c.Name())
		}
		out = append(out, p)
	}
	return out, nil
}
