package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Turn is the walking instruction attached to an edge.
type Turn string

const (
	TurnStraight Turn = "straight"
	TurnLeft     Turn = "left"
	TurnRight    Turn = "right"
)

// Valid reports whether t is one of the three known turns.
func (t Turn) Valid() bool {
	return t == TurnStraight || t == TurnLeft || t == TurnRight
}

// NoPredecessor is the predecessor key used when the walk starts at the
// edge's source node.
const NoPredecessor = "null"

// Direction is the turn to take along an edge. It is either a constant turn
// or a table keyed by the node visited before the edge's source.
// The zero value is "no direction" and is what outdoor edges carry.
type Direction struct {
	turn          Turn
	byPredecessor map[string]Turn
}

// Constant returns a direction that does not depend on the predecessor.
func Constant(t Turn) Direction { return Direction{turn: t} }

// ByPredecessor returns a predecessor-keyed direction. The map is copied.
func ByPredecessor(m map[string]Turn) Direction {
	return Direction{byPredecessor: maps.Clone(m)}
}

// IsZero reports whether the direction carries no turn at all.
func (d Direction) IsZero() bool { return d.turn == "" && d.byPredecessor == nil }

// IsConstant reports whether the direction ignores the predecessor.
func (d Direction) IsConstant() bool { return d.byPredecessor == nil && d.turn != "" }

// Resolve returns the turn for a walk that reached the edge's source from
// predecessor. Constant directions ignore the argument. The boolean is false
// when the table has no entry for predecessor.
func (d Direction) Resolve(predecessor string) (Turn, bool) {
	if d.byPredecessor == nil {
		return d.turn, d.turn != ""
	}
	t, ok := d.byPredecessor[predecessor]
	return t, ok
}

// Predecessors returns the table keys in sorted order, or nil for a
// constant direction.
func (d Direction) Predecessors() []string {
	if d.byPredecessor == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(d.byPredecessor))
}

// qualify rewrites every predecessor key with fn, leaving NoPredecessor alone.
func (d Direction) qualify(fn func(string) string) Direction {
	if d.byPredecessor == nil {
		return d
	}
	out := make(map[string]Turn, len(d.byPredecessor))
	for k, t := range d.byPredecessor {
		if k != NoPredecessor {
			k = fn(k)
		}
		out[k] = t
	}
	return Direction{byPredecessor: out}
}

func (d Direction) String() string {
	if d.byPredecessor == nil {
		return string(d.turn)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Predecessors() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", k, d.byPredecessor[k])
	}
	buf.WriteByte('}')
	return buf.String()
}

// MarshalJSON encodes a constant as a string and a table as an object.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d.byPredecessor != nil {
		return json.Marshal(d.byPredecessor)
	}
	if d.turn == "" {
		return []byte("null"), nil
	}
	return json.Marshal(d.turn)
}

// UnmarshalJSON accepts a turn string or an object mapping predecessor ids
// to turns. Turn values are checked later, when a walk resolves them.
func (d *Direction) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Direction{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var t Turn
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*d = Constant(t)
		return nil
	}
	var m map[string]Turn
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("direction must be a string or an object: %w", err)
	}
	if m == nil {
		m = map[string]Turn{}
	}
	*d = Direction{byPredecessor: m}
	return nil
}
