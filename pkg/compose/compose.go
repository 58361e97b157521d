// Package compose stitches outdoor and indoor legs into campus routes.
//
// The outdoor graph and each building graph share no nodes except the
// entrances, so a route through a given entrance splits into independent
// sub-problems. The composer solves them for every candidate entrance and
// keeps the cheapest total. Equal totals resolve to the entrance listed
// first by the building.
//
// Candidates can be evaluated concurrently ([WithWorkers]); results are
// collected per entrance index and reduced in list order, so the chosen
// route never depends on the worker count.
package compose

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/observability"
	"github.com/matzehuels/wayfinder/pkg/route"
)

const tracerName = "github.com/matzehuels/wayfinder/pkg/compose"

// Leg is one sub-path inside a single graph.
type Leg struct {
	Graph    string     `json:"graph"`
	Kind     graph.Kind `json:"kind"`
	Distance float64    `json:"distance"`
	Path     []string   `json:"path"`
}

func newLeg(g graph.Graph, r route.Result) Leg {
	return Leg{Graph: g.Name(), Kind: g.Kind(), Distance: r.Distance, Path: r.Path}
}

// OutdoorRoute goes from a campus node to a room through one entrance.
type OutdoorRoute struct {
	Start    string  `json:"start"`
	Entrance string  `json:"entrance"`
	Outdoor  Leg     `json:"outdoor"`
	Indoor   Leg     `json:"indoor"`
	Total    float64 `json:"total"`
}

// RoomRoute goes from a room to another room. When both rooms are in the
// same building only Origin is set.
type RoomRoute struct {
	Exit        string  `json:"exit,omitempty"`
	Entrance    string  `json:"entrance,omitempty"`
	Origin      Leg     `json:"origin"`
	Outdoor     *Leg    `json:"outdoor,omitempty"`
	Destination *Leg    `json:"destination,omitempty"`
	Total       float64 `json:"total"`
}

// SameBuilding reports whether the route never leaves the origin building.
func (r *RoomRoute) SameBuilding() bool { return r.Outdoor == nil }

// Composer answers route queries over one site.
// It is safe for concurrent use once the site's graphs are sealed.
type Composer struct {
	site    *graph.Site
	workers int
	logger  *log.Logger
	tracer  trace.Tracer
}

// Option configures a Composer.
type Option func(*Composer)

// WithWorkers bounds the goroutines evaluating candidate entrances.
// Values below 1 mean sequential evaluation.
func WithWorkers(n int) Option {
	return func(c *Composer) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Composer over site.
func New(site *graph.Site, opts ...Option) *Composer {
	c := &Composer{
		site:    site,
		workers: 1,
		logger:  log.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Site returns the site the composer routes over.
func (c *Composer) Site() *graph.Site { return c.site }

// FromOutdoor routes from the campus node nearest to from to the room to.
func (c *Composer) FromOutdoor(ctx context.Context, from graph.LatLon, to graph.RoomRef) (_ *OutdoorRoute, err error) {
	start := time.Now()
	observability.Routing().OnQueryStart(ctx, "outdoor")
	var total float64
	defer func() {
		observability.Routing().OnQueryComplete(ctx, "outdoor", total, time.Since(start), err)
	}()

	if err := errors.ValidateCoordinates(from.Lat, from.Lon); err != nil {
		return nil, err
	}
	if err := validateRef(to); err != nil {
		return nil, err
	}
	b, err := c.site.Building(to.Building)
	if err != nil {
		return nil, err
	}
	node, err := c.site.Campus.Nearest(from)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("nearest campus node", "position", from, "node", node)

	r, err := c.fromNode(ctx, node, b, to.Room)
	if err != nil {
		return nil, err
	}
	total = r.Total
	return r, nil
}

// BetweenRooms routes from one room to another, possibly in another building.
func (c *Composer) BetweenRooms(ctx context.Context, from, to graph.RoomRef) (_ *RoomRoute, err error) {
	start := time.Now()
	observability.Routing().OnQueryStart(ctx, "rooms")
	var total float64
	defer func() {
		observability.Routing().OnQueryComplete(ctx, "rooms", total, time.Since(start), err)
	}()

	if err := validateRef(from); err != nil {
		return nil, err
	}
	if err := validateRef(to); err != nil {
		return nil, err
	}
	origin, err := c.site.Building(from.Building)
	if err != nil {
		return nil, err
	}
	dest, err := c.site.Building(to.Building)
	if err != nil {
		return nil, err
	}

	var r *RoomRoute
	if origin == dest {
		r, err = c.inside(origin, from.Room, to.Room)
	} else {
		r, err = c.across(ctx, origin, from.Room, dest, to.Room)
	}
	if err != nil {
		return nil, err
	}
	total = r.Total
	return r, nil
}

func (c *Composer) inside(b *graph.Building, from, to string) (*RoomRoute, error) {
	res, err := route.ShortestPath(b, from, to)
	if err != nil {
		return nil, err
	}
	if !res.Reachable() {
		return nil, errors.New(errors.ErrCodeNoRoute, "no route from %s to %s in %s", from, to, b.Name())
	}
	return &RoomRoute{Origin: newLeg(b, res), Total: res.Distance}, nil
}

// outdoorCandidate is the evaluation of one entrance for an outdoor start.
type outdoorCandidate struct {
	outdoor route.Result
	indoor  route.Result
	total   float64
}

// fromNode routes from the campus node start into room of b, trying every
// entrance of b.
func (c *Composer) fromNode(ctx context.Context, start string, b *graph.Building, room string) (*OutdoorRoute, error) {
	entrances := b.Entrances()
	if len(entrances) == 0 {
		return nil, errors.New(errors.ErrCodeNoRoute, "building %s has no entrances", b.Name())
	}
	target, err := route.Resolve(b, room)
	if err != nil {
		return nil, err
	}

	campus := c.site.Campus
	cands := make([]outdoorCandidate, len(entrances))
	err = c.fanOut(ctx, b.Name(), entrances, func(ctx context.Context, i int) error {
		entrance := entrances[i]
		cand := outdoorCandidate{total: math.Inf(1)}
		defer func() {
			cands[i] = cand
			observability.Routing().OnCandidate(ctx, b.Name(), entrance, cand.total)
		}()

		if _, ok := campus.Node(entrance); !ok {
			c.logger.Debug("entrance missing from campus graph", "building", b.Name(), "entrance", entrance)
			return nil
		}
		out, err := route.ShortestPath(campus, start, entrance)
		if err != nil {
			return err
		}
		if !out.Reachable() {
			return nil
		}
		in, err := route.ShortestPath(b, entrance, target)
		if err != nil {
			return err
		}
		cand = outdoorCandidate{outdoor: out, indoor: in, total: out.Distance + in.Distance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := pick(len(cands), func(i int) float64 { return cands[i].total })
	if best < 0 {
		return nil, errors.New(errors.ErrCodeNoRoute, "no entrance of %s reaches %s from %s", b.Name(), room, start)
	}
	w := cands[best]
	c.logger.Debug("entrance chosen", "building", b.Name(), "entrance", entrances[best], "total", w.total)
	return &OutdoorRoute{
		Start:    start,
		Entrance: entrances[best],
		Outdoor:  newLeg(campus, w.outdoor),
		Indoor:   newLeg(b, w.indoor),
		Total:    w.total,
	}, nil
}

// roomCandidate is the evaluation of one exit of the origin building.
type roomCandidate struct {
	origin route.Result
	onward *OutdoorRoute
	total  float64
}

// across routes from a room of origin to a room of dest, trying every
// entrance of origin as the exit. From each exit the onward route is the
// outdoor query starting at that exit's campus node.
func (c *Composer) across(ctx context.Context, origin *graph.Building, from string, dest *graph.Building, to string) (*RoomRoute, error) {
	exits := origin.Entrances()
	if len(exits) == 0 {
		return nil, errors.New(errors.ErrCodeNoRoute, "building %s has no entrances", origin.Name())
	}
	source, err := route.Resolve(origin, from)
	if err != nil {
		return nil, err
	}
	if _, err := route.Resolve(dest, to); err != nil {
		return nil, err
	}

	cands := make([]roomCandidate, len(exits))
	err = c.fanOut(ctx, origin.Name(), exits, func(ctx context.Context, i int) error {
		exit := exits[i]
		cand := roomCandidate{total: math.Inf(1)}
		defer func() {
			cands[i] = cand
			observability.Routing().OnCandidate(ctx, origin.Name(), exit, cand.total)
		}()

		if _, ok := c.site.Campus.Node(exit); !ok {
			c.logger.Debug("exit missing from campus graph", "building", origin.Name(), "exit", exit)
			return nil
		}
		res, err := route.ShortestPath(origin, source, exit)
		if err != nil {
			return err
		}
		if !res.Reachable() {
			return nil
		}
		onward, err := c.fromNode(ctx, exit, dest, to)
		if errors.Is(err, errors.ErrCodeNoRoute) {
			return nil
		}
		if err != nil {
			return err
		}
		cand = roomCandidate{origin: res, onward: onward, total: res.Distance + onward.Total}
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := pick(len(cands), func(i int) float64 { return cands[i].total })
	if best < 0 {
		return nil, errors.New(errors.ErrCodeNoRoute, "no route from %s:%s to %s:%s", origin.Name(), from, dest.Name(), to)
	}
	w := cands[best]
	return &RoomRoute{
		Exit:        exits[best],
		Entrance:    w.onward.Entrance,
		Origin:      newLeg(origin, w.origin),
		Outdoor:     &w.onward.Outdoor,
		Destination: &w.onward.Indoor,
		Total:       w.total,
	}, nil
}

// fanOut runs fn for every entrance index with at most c.workers goroutines.
func (c *Composer) fanOut(ctx context.Context, building string, entrances []string, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range entrances {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ctx, span := c.tracer.Start(gctx, "compose.candidate", trace.WithAttributes(
				attribute.String("building", building),
				attribute.String("entrance", entrances[i]),
			))
			defer span.End()
			if err := fn(ctx, i); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// pick returns the index of the smallest finite total, the first one on
// ties, or -1 when every total is infinite.
func pick(n int, total func(i int) float64) int {
	best := -1
	for i := 0; i < n; i++ {
		t := total(i)
		if math.IsInf(t, 1) {
			continue
		}
		if best < 0 || t < total(best) {
			best = i
		}
	}
	return best
}

func validateRef(r graph.RoomRef) error {
	if err := errors.ValidateIdentifier("building", r.Building); err != nil {
		return err
	}
	return errors.ValidateIdentifier("room", r.Room)
}
