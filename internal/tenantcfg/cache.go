package tenantcfg

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache keeps per-tenant configuration snapshots with a fixed TTL. An
// expired snapshot is refetched on access; if the refetch fails the stale
// snapshot keeps serving so the conversational flow never blocks on the
// admin backend.
type Cache struct {
	provider Provider
	ttl      time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	snapshots map[string]*snapshot
}

type snapshot struct {
	cfg       *Config
	fetchedAt time.Time
}

// NewCache creates a Cache over the given provider. A non-positive ttl
// falls back to 5 minutes.
func NewCache(provider Provider, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		provider:  provider,
		ttl:       ttl,
		now:       time.Now,
		snapshots: make(map[string]*snapshot),
	}
}

// Get returns the tenant's configuration. Within the TTL the cached
// snapshot is returned without touching the backend. Past the TTL the
// config is refetched; on failure the stale snapshot is returned, and when
// no snapshot exists at all the zero Config (built-in defaults) is used.
func (c *Cache) Get(ctx context.Context, tenantID string) *Config {
	c.mu.RLock()
	snap, ok := c.snapshots[tenantID]
	c.mu.RUnlock()

	if ok && c.now().Sub(snap.fetchedAt) <= c.ttl {
		return snap.cfg
	}

	cfg, err := c.provider.Fetch(ctx, tenantID)
	if err != nil {
		slog.Warn("tenant config fetch failed", "error", err, "tenant_id", tenantID)
		if ok {
			return snap.cfg
		}
		return &Config{}
	}

	c.mu.Lock()
	c.snapshots[tenantID] = &snapshot{cfg: cfg, fetchedAt: c.now()}
	c.mu.Unlock()

	return cfg
}

// Invalidate drops the tenant's snapshot so the next Get refetches.
func (c *Cache) Invalidate(tenantID string) {
	c.mu.Lock()
	delete(c.snapshots, tenantID)
	c.mu.Unlock()
}

// StartRefresh runs a background goroutine that periodically refetches
// every cached tenant so snapshots stay warm between requests. It stops
// when ctx is cancelled.
func (c *Cache) StartRefresh(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	go func() {
		defer ticker.Stop()
		slog.Info("tenant config refresh worker started", "interval", every)

		for {
			select {
			case <-ticker.C:
				c.refreshAll(ctx)
			case <-ctx.Done():
				slog.Info("tenant config refresh worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (c *Cache) refreshAll(ctx context.Context) {
	c.mu.RLock()
	tenants := make([]string, 0, len(c.snapshots))
	for id := range c.snapshots {
		tenants = append(tenants, id)
	}
	c.mu.RUnlock()

	for _, id := range tenants {
		cfg, err := c.provider.Fetch(ctx, id)
		if err != nil {
			slog.Warn("tenant config refresh failed, keeping stale snapshot",
				"error", err, "tenant_id", id)
			continue
		}
		c.mu.Lock()
		c.snapshots[id] = &snapshot{cfg: cfg, fetchedAt: c.now()}
		c.mu.Unlock()
	}
}
