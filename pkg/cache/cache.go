package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss signals that no live entry exists for the key. Callers can
// tell "not cached" apart from a cached empty value.
var ErrMiss = errors.New("cache miss")

// TTL tiers by computation cost and staleness tolerance
const (
	TTLStats    = 10 * time.Minute   // aggregate dashboard stats (change often)
	TTLProse    = 1 * time.Hour      // generated prose
	TTLAnalysis = 24 * time.Hour     // classification-like analysis
	TTLRanking  = 7 * 24 * time.Hour // multi-candidate ranking results
	TTLDefault  = 5 * time.Minute
)

// Cache key namespaces
const (
	NSInterlink = "interlink"
	NSDashboard = "dashboard"
	NSContent   = "content"
	NSAnalysis  = "analysis"
)

// Service is the keyed, time-expiring memoization layer. Values are
// stored as JSON so the memory and Redis backends behave alike.
type Service interface {
	// Get unmarshals the cached value into dest, or returns ErrMiss
	Get(ctx context.Context, namespace string, params map[string]any, dest any) error
	// Set stores the value with expiry = now + ttl, overwriting any
	// existing entry for the same key
	Set(ctx context.Context, namespace string, params map[string]any, value any, ttl time.Duration) error
	// Delete drops a single entry; deleting an absent key is not an error
	Delete(ctx context.Context, namespace string, params map[string]any) error
	// InvalidateNamespace drops every entry under a namespace
	InvalidateNamespace(ctx context.Context, namespace string) error

	IsAvailable() bool
}
