package navigator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/matzehuels/wayfinder/pkg/cache"
	"github.com/matzehuels/wayfinder/pkg/compose"
	"github.com/matzehuels/wayfinder/pkg/errors"
	"github.com/matzehuels/wayfinder/pkg/graph"
	"github.com/matzehuels/wayfinder/pkg/guide"
	"github.com/matzehuels/wayfinder/pkg/observability"
)

const tracerName = "github.com/matzehuels/wayfinder/pkg/navigator"

// DefaultTTL is how long results stay cached.
const DefaultTTL = 24 * time.Hour

// Runner executes queries with caching.
//
// The Runner holds no per-query state; one Runner serves concurrent
// queries.
type Runner struct {
	Composer *compose.Composer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	TTL      time.Duration
	IconDir  string
	IconExt  string
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil logger uses log.Default().
func NewRunner(c *compose.Composer, ch cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if ch == nil {
		ch = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Composer: c,
		Cache:    ch,
		Keyer:    keyer,
		Logger:   logger,
		TTL:      DefaultTTL,
		IconDir:  guide.DefaultIconDir,
		IconExt:  guide.DefaultIconExt,
	}
}

// Execute answers q, from the cache when possible.
func (r *Runner) Execute(ctx context.Context, q Query) (_ *Result, err error) {
	if err := q.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	kind := q.Kind()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "navigator.Execute")
	span.SetAttributes(
		attribute.String("query.kind", string(kind)),
		attribute.String("query.to", q.To),
		attribute.Bool("query.refresh", q.Refresh),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	key := r.key(q, kind)
	if !q.Refresh {
		if res, ok := r.lookup(ctx, key); ok {
			r.Logger.Debug("route cache hit", "kind", kind, "to", q.To)
			return res, nil
		}
	}

	res, err := r.compute(ctx, q, kind)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, res)
	span.SetAttributes(attribute.Float64("route.total", res.Total))
	return res, nil
}

func (r *Runner) key(q Query, kind Kind) string {
	opts := cache.RouteKeyOpts{Kind: string(kind), From: q.From, To: q.To, Locale: q.Locale}
	if q.At != nil {
		opts.At = q.At.String()
	}
	return r.Keyer.RouteKey(r.Composer.Site().Revision+"|"+r.IconDir+r.IconExt, opts)
}

func (r *Runner) lookup(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("route cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "route")
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		r.Logger.Warn("discarding corrupt cache entry", "error", err)
		observability.Cache().OnCacheMiss(ctx, "route")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "route")
	res.CacheHit = true
	return &res, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(res)
	if err != nil {
		r.Logger.Warn("route not cached", "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("route cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "route", len(data))
}

func (r *Runner) compute(ctx context.Context, q Query, kind Kind) (*Result, error) {
	start := time.Now()
	res := &Result{Kind: kind, From: q.From, At: q.At, To: q.To, Locale: q.Locale}

	var legs []compose.Leg
	switch kind {
	case KindOutside:
		route, err := r.Composer.FromOutdoor(ctx, *q.At, q.to)
		if err != nil {
			return nil, err
		}
		res.Start, res.Entrance, res.Total = route.Start, route.Entrance, route.Total
		legs = []compose.Leg{route.Outdoor, route.Indoor}
	default:
		route, err := r.Composer.BetweenRooms(ctx, q.from, q.to)
		if err != nil {
			return nil, err
		}
		res.Exit, res.Entrance, res.Total = route.Exit, route.Entrance, route.Total
		legs = []compose.Leg{route.Origin}
		if !route.SameBuilding() {
			legs = append(legs, *route.Outdoor, *route.Destination)
		}
	}

	phrases, err := guide.Lookup(q.Locale)
	if err != nil {
		return nil, err
	}
	for _, l := range legs {
		leg, err := r.present(l, phrases)
		if err != nil {
			return nil, err
		}
		res.Legs = append(res.Legs, leg)
		res.Stats.Nodes += len(l.Path)
	}
	res.Stats.Duration = time.Since(start)

	r.Logger.Info("route computed",
		"kind", kind,
		"to", q.To,
		"total", res.Total,
		"legs", len(res.Legs),
		"duration", res.Stats.Duration)
	return res, nil
}

func (r *Runner) present(l compose.Leg, phrases guide.Phrasebook) (Leg, error) {
	site := r.Composer.Site()
	out := Leg{Leg: l}
	if l.Kind == graph.KindOutdoor {
		coords, err := guide.Coordinates(site.Campus, l.Path)
		if err != nil {
			return Leg{}, err
		}
		out.Coordinates = coords
		return out, nil
	}
	b, err := site.Building(l.Graph)
	if err != nil {
		return Leg{}, errors.Wrap(errors.ErrCodeInternal, err, "leg through unknown building")
	}
	in, err := guide.Synthesize(b, l.Path, guide.WithPhrasebook(phrases), guide.WithIcons(r.IconDir, r.IconExt))
	if err != nil {
		return Leg{}, err
	}
	out.Instructions = in.Steps
	return out, nil
}
