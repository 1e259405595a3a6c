package locator

import (
	"errors"
	"slices"
	"sync/atomic"

	"github.com/zhangyunhao116/skipmap"
)

// NaturalEndpointsCache memoizes a strategy's replicas per ring token. All
// entries are dropped as soon as the ring version moves.
type NaturalEndpointsCache struct {
	tm       *TokenMetadata
	strategy ReplicationStrategy
	gen      atomic.Pointer[cacheGeneration]
}

type cacheGeneration struct {
	version uint64
	entries *skipmap.FuncMap[Token, []Endpoint]
}

// NewNaturalEndpointsCache wraps strategy, which must be built over tm.
func NewNaturalEndpointsCache(tm *TokenMetadata, strategy ReplicationStrategy) *NaturalEndpointsCache {
	return &NaturalEndpointsCache{tm: tm, strategy: strategy}
}

// Strategy returns the wrapped strategy.
func (c *NaturalEndpointsCache) Strategy() ReplicationStrategy {
	return c.strategy
}

// GetNaturalEndpoints returns the same result as CalculateNaturalEndpoints,
// served from the cache when the ring has not changed.
func (c *NaturalEndpointsCache) GetNaturalEndpoints(t Token) ([]Endpoint, error) {
	gen := c.generation(c.tm.RingVersion())

	key, err := c.tm.FirstToken(t)
	if errors.Is(err, ErrEmptyRing) {
		return c.strategy.CalculateNaturalEndpoints(t)
	}
	if err != nil {
		return nil, err
	}

	if cached, ok := gen.entries.Load(key); ok {
		return slices.Clone(cached), nil
	}

	endpoints, err := c.strategy.CalculateNaturalEndpoints(key)
	if err != nil {
		return nil, err
	}
	gen.entries.Store(key, slices.Clone(endpoints))
	return endpoints, nil
}

// Len returns the number of cached ring tokens in the current generation.
func (c *NaturalEndpointsCache) Len() int {
	gen := c.gen.Load()
	if gen == nil || gen.version != c.tm.RingVersion() {
		return 0
	}
	return gen.entries.Len()
}

func (c *NaturalEndpointsCache) generation(version uint64) *cacheGeneration {
	for {
		cur := c.gen.Load()
		if cur != nil && cur.version >= version {
			return cur
		}
		next := &cacheGeneration{
			version: version,
			entries: skipmap.NewFunc[Token, []Endpoint](func(a, b Token) bool { return a < b }),
		}
		if c.gen.CompareAndSwap(cur, next) {
			return next
		}
	}
}
