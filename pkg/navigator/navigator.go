// Package navigator answers complete navigation queries for CLI and API.
//
// A [Query] names an origin (a room or a position on the campus) and a
// destination room. The [Runner] routes it with the composer, turns every
// indoor leg into localized instructions and every outdoor leg into
// coordinates, and caches the serialized [Result] keyed by the site
// revision and the query.
//
//	runner := navigator.NewRunner(compose.New(site), fileCache, nil, logger)
//	res, err := runner.Execute(ctx, navigator.Query{
//	    At: &graph.LatLon{Lat: 50.8125, Lon: 4.3810},
//	    To: "P1:2.14",
//	})
package navigator

import (
	"time"

	"github.com/matzehuels/wayfinder/pkg/compose"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/guide"
)

// Kind classifies a query by where it starts and ends.
type Kind string

const (
	// KindInside goes between two rooms of one building.
	KindInside Kind = "inside"
	// KindOutside goes from a campus position to a room.
	KindOutside Kind = "outside"
	// KindBetween goes from a room to a room in another building.
	KindBetween Kind = "between"
)

// Query is one navigation request. Exactly one of From and At is set.
type Query struct {
	// From is the origin room as "<building>:<room>".
	From string `json:"from,omitempty"`
	// At is the origin position on the campus.
	At *graph.LatLon `json:"at,omitempty"`
	// To is the destination room as "<building>:<room>".
	To string `json:"to"`
	// Locale selects the instruction wording; empty means English.
	Locale string `json:"locale,omitempty"`
	// Refresh bypasses the cache lookup. The fresh result is still stored.
	Refresh bool `json:"-"`

	from, to graph.RoomRef
}

// ValidateAndSetDefaults checks the query and fills in defaults.
func (q *Query) ValidateAndSetDefaults() error {
	if (q.From == "") == (q.At == nil) {
		return errors.New(errors.ErrCodeInvalidQuery, "exactly one of from and at must be given")
	}
	if q.Locale == "" {
		q.Locale = guide.DefaultLocale
	}
	if err := errors.ValidateLocale(q.Locale); err != nil {
		return err
	}
	if _, err := guide.Lookup(q.Locale); err != nil {
		return err
	}
	var err error
	if q.to, err = graph.ParseRoomRef(q.To); err != nil {
		return err
	}
	if q.At != nil {
		return errors.ValidateCoordinates(q.At.Lat, q.At.Lon)
	}
	q.from, err = graph.ParseRoomRef(q.From)
	return err
}

// Kind returns the kind of a validated query.
func (q *Query) Kind() Kind {
	switch {
	case q.At != nil:
		return KindOutside
	case q.from.Building == q.to.Building:
		return KindInside
	}
	return KindBetween
}

// Leg is one routed segment with its presentation. Indoor legs carry
// instructions, outdoor legs carry coordinates.
type Leg struct {
	compose.Leg
	Instructions []guide.Step   `json:"instructions,omitempty"`
	Coordinates  []graph.LatLon `json:"coordinates,omitempty"`
}

// Result is the answer to a [Query].
type Result struct {
	Kind     Kind          `json:"kind"`
	From     string        `json:"from,omitempty"`
	At       *graph.LatLon `json:"at,omitempty"`
	To       string        `json:"to"`
	Locale   string        `json:"locale"`
	Start    string        `json:"start,omitempty"`
	Exit     string        `json:"exit,omitempty"`
	Entrance string        `json:"entrance,omitempty"`
	Total    float64       `json:"total"`
	Legs     []Leg         `json:"legs"`

	Stats    Stats `json:"stats"`
	CacheHit bool  `json:"cache_hit"`
}

// Stats describes how a result was produced.
type Stats struct {
	Duration time.Duration `json:"duration"`
	Nodes    int           `json:"nodes"`
}

// Steps returns every instruction of the route in walking order.
func (r *Result) Steps() []guide.Step {
	var out []guide.Step
	for _, l := range r.Legs {
		out = append(out, l.Instructions...)
	}
	return out
}
