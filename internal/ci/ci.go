// Package ci looks up CI/PR status for a branch and caches it briefly, so
// the list engine's CI cell doesn't refetch on every redraw.
package ci

import (
	"context"
	"sync"
	"time"

	"github.com/worktrunk/worktrunk/internal/models"
)

// DefaultTTL is how long a cached status is considered fresh.
const DefaultTTL = 30 * time.Second

// Provider looks up CI/PR status for a branch at a known commit. A real
// implementation talks to gh/glab or a hosting API; NoopProvider is the
// fallback when none is configured.
type Provider interface {
	Status(ctx context.Context, branch, headSHA string) (models.CIStatus, error)
}

// NoopProvider reports CINotLoaded for every branch, for repositories with
// no CI integration configured.
type NoopProvider struct{}

func (NoopProvider) Status(ctx context.Context, branch, headSHA string) (models.CIStatus, error) {
	return models.CIStatus{State: models.CINotLoaded}, nil
}

type cacheEntry struct {
	status    models.CIStatus
	fetchedAt time.Time
}

// Cache wraps a Provider with a per-branch TTL cache, so repeated probes
// within one list run (or across quick successive runs) don't refetch.
type Cache struct {
	Provider Provider
	TTL      time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache builds a Cache around provider with DefaultTTL.
func NewCache(provider Provider) *Cache {
	return &Cache{Provider: provider, TTL: DefaultTTL, entries: make(map[string]cacheEntry)}
}

// Status returns the cached status for branch if fresh, otherwise fetches
// via Provider and caches the result. The returned status's Stale field is
// set when the cached HeadSHA no longer matches headSHA.
func (c *Cache) Status(ctx context.Context, branch, headSHA string) (models.CIStatus, error) {
	if entry, ok := c.fresh(branch); ok {
		entry.Stale = entry.HeadSHA != "" && entry.HeadSHA != headSHA
		return entry, nil
	}

	status, err := c.Provider.Status(ctx, branch, headSHA)
	if err != nil {
		return models.CIStatus{}, err
	}

	c.mu.Lock()
	c.entries[branch] = cacheEntry{status: status, fetchedAt: time.Now()}
	c.mu.Unlock()

	return status, nil
}

func (c *Cache) fresh(branch string) (models.CIStatus, bool) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[branch]
	if !ok || time.Since(entry.fetchedAt) >= ttl {
		return models.CIStatus{}, false
	}
	return entry.status, true
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
