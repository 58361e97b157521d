// Package cache provides byte-oriented caching for computed routes.
//
// A [Cache] stores opaque values under string keys with an optional TTL.
// [FileCache] backs the CLI, [RedisCache] a shared server deployment, and
// [NullCache] disables caching. Keys come from a [Keyer] so that every
// caller derives the same key for the same query against the same data.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store for serialized results.
//
// Get reports a miss with (nil, false, nil); errors are reserved for
// backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// RouteKeyOpts identifies one navigation query.
type RouteKeyOpts struct {
	Kind   string `json:"kind"`
	From   string `json:"from,omitempty"`
	At     string `json:"at,omitempty"`
	To     string `json:"to"`
	Locale string `json:"locale"`
}

// Keyer derives cache keys.
type Keyer interface {
	// RouteKey returns the key of a query answered against the site data
	// identified by revision.
	RouteKey(revision string, opts RouteKeyOpts) string
}

// DefaultKeyer hashes every key component.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RouteKey returns "route:<sha256>".
func (DefaultKeyer) RouteKey(revision string, opts RouteKeyOpts) string {
	return hashKey("route", revision, opts)
}
