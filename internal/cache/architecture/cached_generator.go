package architecture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	arch "archrelay/internal/architecture"
)

type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxEntries: 256,
		TTL:        10 * time.Minute,
	}
}

type MetricsSnapshot struct {
	Hits         uint64
	Misses       uint64
	OriginErrors uint64
}

type Metrics struct {
	hits         atomic.Uint64
	misses       atomic.Uint64
	originErrors atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:         m.hits.Load(),
		Misses:       m.misses.Load(),
		OriginErrors: m.originErrors.Load(),
	}
}

var _ arch.Generator = (*CachedGenerator)(nil)

// CachedGenerator fronts an origin generator with an expiring LRU keyed by the
// exact request. Failed generations are never cached.
type CachedGenerator struct {
	origin  arch.Generator
	cache   *expirable.LRU[arch.Request, *arch.Response]
	metrics Metrics
}

func NewCachedGenerator(origin arch.Generator, cfg CacheConfig) *CachedGenerator {
	def := DefaultCacheConfig()
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	return &CachedGenerator{
		origin: origin,
		cache:  expirable.NewLRU[arch.Request, *arch.Response](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (g *CachedGenerator) Generate(ctx context.Context, req arch.Request) (*arch.Response, error) {
	if cached, ok := g.cache.Get(req); ok {
		g.metrics.hits.Add(1)
		return cloneResponse(cached), nil
	}
	g.metrics.misses.Add(1)

	resp, err := g.origin.Generate(ctx, req)
	if err != nil {
		g.metrics.originErrors.Add(1)
		return nil, err
	}
	g.cache.Add(req, cloneResponse(resp))
	return resp, nil
}

func (g *CachedGenerator) Len() int { return g.cache.Len() }

func (g *CachedGenerator) Purge() { g.cache.Purge() }

func (g *CachedGenerator) Metrics() MetricsSnapshot { return g.metrics.snapshot() }

func cloneResponse(in *arch.Response) *arch.Response {
	if in == nil {
		return nil
	}
	out := &arch.Response{
		ExternalInfrastructure: cloneStrings(in.ExternalInfrastructure),
	}
	if in.Architecture != nil {
		out.Architecture = make([]arch.Component, len(in.Architecture))
		for i, c := range in.Architecture {
			c.Uses = cloneStrings(c.Uses)
			c.DependencyPackages = cloneStrings(c.DependencyPackages)
			out.Architecture[i] = c
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
