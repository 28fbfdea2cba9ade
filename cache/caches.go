// api/cache/caches.go
package cache

import (
	"go.uber.org/zap"

	logger "github.com/gurukul-labs/gurukul/api/logging"
	"github.com/gurukul-labs/gurukul/api/scope"
)

// Tier names, used by the admin endpoints to address one instance.
const (
	TierQuery  = "query"
	TierStats  = "stats"
	TierPublic = "public"
)

// Caches bundles the cache tiers the services share: Query for general
// reads, Stats for short-lived aggregates, Public for learner-facing reads
// that can stay warm longer.
type Caches struct {
	Query  *Cache
	Stats  *Cache
	Public *Cache
}

// NewCaches builds the three tiers from their configs.
func NewCaches(query, stats, public Config) *Caches {
	return &Caches{
		Query:  New(TierQuery, query),
		Stats:  New(TierStats, stats),
		Public: New(TierPublic, public),
	}
}

// InvalidateResource drops every cached read touching the resource from
// all tiers, and returns how many entries went. Deliberately blunt:
// over-invalidation costs a recompute, a stale read costs correctness.
// A pattern matching nothing is still success.
func (cs *Caches) InvalidateResource(res scope.Resource) int {
	pattern := NamespacePattern(res)
	total := 0
	for _, c := range cs.All() {
		n, err := c.InvalidatePattern(pattern)
		if err != nil {
			// Namespace patterns come from QuoteMeta; failing to compile
			// one is a programming error, not a runtime condition.
			logger.Error("Failed to invalidate resource namespace",
				zap.String("cache", c.name),
				zap.String("pattern", pattern),
				zap.Error(err))
			continue
		}
		total += n
	}
	return total
}

// All returns the tiers in stable order.
func (cs *Caches) All() []*Cache {
	return []*Cache{cs.Query, cs.Stats, cs.Public}
}

// ByName finds a tier by name, for the admin endpoints.
func (cs *Caches) ByName(name string) (*Cache, bool) {
	for _, c := range cs.All() {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Close stops every sweeper and drops all entries.
func (cs *Caches) Close() {
	for _, c := range cs.All() {
		c.Close()
	}
}
