package rules

import (
	"context"
	"sync"

	"github.com/jhandl/finance/internal/domain"
)

// Cache remembers successful lookups of an underlying repository for the
// life of the process. Failed lookups are retried on the next call.
// Safe for concurrent use.
type Cache struct {
	source Repository

	mu      sync.RWMutex
	entries map[string]*domain.CountryTaxRules
	fetches int
}

// NewCache wraps source with a lookup cache
func NewCache(source Repository) *Cache {
	return &Cache{source: source, entries: make(map[string]*domain.CountryTaxRules)}
}

// Lookup implements Repository
func (c *Cache) Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error) {
	key := Key(country)

	c.mu.RLock()
	rules, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return rules, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rules, ok := c.entries[key]; ok {
		return rules, nil
	}
	c.fetches++
	rules, err := c.source.Lookup(ctx, country)
	if err != nil {
		return nil, err
	}
	c.entries[key] = rules
	return rules, nil
}

// Fetches reports how many times the underlying source was consulted
func (c *Cache) Fetches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

// Invalidate drops a cached country so the next lookup refetches it
func (c *Cache) Invalidate(country string) {
	c.mu.Lock()
	delete(c.entries, Key(country))
	c.mu.Unlock()
}
