// Package store keeps computed routes so clients can fetch them again by id.
//
// The HTTP server answers every route request with a fresh id. The
// serialized result is saved under that id and served by GET
// /api/routes/{id} until it expires. Backends:
//   - memory: in-process map for the CLI, tests and single-instance servers
//   - redis: shared storage with native key expiry
//   - mongo: durable storage with a TTL index on expires_at
//
// Create a store:
//
//	// Development
//	s := store.NewMemory()
//
//	// Production
//	s, err := store.NewRedis(ctx, "redis://localhost:6379/0")
//
// All backends report an unknown or expired id as NOT_FOUND.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/wayfinder/pkg/errors"
)

// DefaultTTL is how long a saved route stays retrievable.
const DefaultTTL = 7 * 24 * time.Hour

// Record is one saved route.
type Record struct {
	ID        string    `json:"id"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the record has outlived its TTL. A zero
// ExpiresAt never expires.
func (r *Record) IsExpired() bool {
	return !r.ExpiresAt.IsZero() && time.Now().After(r.ExpiresAt)
}

// Store is the interface for route storage backends.
type Store interface {
	// Save stores data under a new id and returns the id. A zero ttl keeps
	// the record until the backend is wiped.
	Save(ctx context.Context, data []byte, ttl time.Duration) (string, error)

	// Get returns the data saved under id.
	Get(ctx context.Context, id string) ([]byte, error)

	Close() error
}

// NewID returns a random route id.
func NewID() string { return uuid.NewString() }

// ValidateID rejects anything that is not a route id, before a backend is
// asked for it.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid route id %q", id)
	}
	return nil
}

func newRecord(data []byte, ttl time.Duration) Record {
	now := time.Now()
	r := Record{ID: NewID(), Data: data, CreatedAt: now}
	if ttl > 0 {
		r.ExpiresAt = now.Add(ttl)
	}
	return r
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "no route with id %s", id)
}
