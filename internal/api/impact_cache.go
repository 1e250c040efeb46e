package api

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/weiihann/ecoquest-analytics/pkg/analytics"
)

type impactKey struct {
	material  string
	collected int64
}

// ImpactCache memoises impact estimates per (material, count). A nil estimate
// is cached too, so zero counts and unmatched rules are not recomputed.
type ImpactCache struct {
	cache *lru.Cache[impactKey, *analytics.ImpactEstimate]
}

func NewImpactCache(size int) (*ImpactCache, error) {
	cache, err := lru.New[impactKey, *analytics.ImpactEstimate](size)
	if err != nil {
		return nil, err
	}
	return &ImpactCache{cache: cache}, nil
}

// Get returns the estimate and whether it came from the cache.
func (c *ImpactCache) Get(material string, collected int64) (*analytics.ImpactEstimate, bool) {
	// Rules match case-insensitively, so differently cased names share an entry.
	key := impactKey{material: strings.ToLower(material), collected: collected}
	if est, ok := c.cache.Get(key); ok {
		return est, true
	}

	est := analytics.ComputeImpact(material, collected)
	c.cache.Add(key, est)
	return est, false
}

func (c *ImpactCache) Len() int {
	return c.cache.Len()
}
