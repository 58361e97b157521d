package observability

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanRoutingHooks records routing events on the span carried by ctx.
// Without an active span the events are dropped.
type SpanRoutingHooks struct{}

func (SpanRoutingHooks) OnQueryStart(ctx context.Context, kind string) {
	trace.SpanFromContext(ctx).AddEvent("query.start", trace.WithAttributes(
		attribute.String("query.kind", kind),
	))
}

func (SpanRoutingHooks) OnQueryComplete(ctx context.Context, kind string, total float64, d time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("query.complete", trace.WithAttributes(
		attribute.String("query.kind", kind),
		attribute.Float64("route.total_m", finite(total)),
		attribute.Int64("query.duration_ms", d.Milliseconds()),
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (SpanRoutingHooks) OnCandidate(ctx context.Context, building, entrance string, total float64) {
	trace.SpanFromContext(ctx).AddEvent("route.candidate", trace.WithAttributes(
		attribute.String("building", building),
		attribute.String("entrance", entrance),
		attribute.Bool("reachable", !math.IsInf(total, 1)),
		attribute.Float64("total_m", finite(total)),
	))
}

// SpanCacheHooks records cache events on the span carried by ctx.
type SpanCacheHooks struct{}

func (SpanCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.hit", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (SpanCacheHooks) OnCacheMiss(ctx context.Context, keyType string) {
	trace.SpanFromContext(ctx).AddEvent("cache.miss", trace.WithAttributes(attribute.String("cache.key_type", keyType)))
}

func (SpanCacheHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	trace.SpanFromContext(ctx).AddEvent("cache.set", trace.WithAttributes(
		attribute.String("cache.key_type", keyType),
		attribute.Int("cache.size", size),
	))
}

// finite maps +Inf to -1 so attribute values stay representable.
func finite(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return -1
	}
	return v
}
