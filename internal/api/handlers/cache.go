package handlers

import (
	"sync"
	"time"

	"storage-bca/internal/api/models"
	"storage-bca/internal/backtest"
)

// cachedRun is one stored evaluation: the response plus each scenario's ledger.
type cachedRun struct {
	Response  *models.EvaluateResponse
	Ledgers   map[string][]backtest.LedgerRow
	ExpiresAt time.Time
}

// ResultCache keeps evaluation results in memory so ledgers can be fetched
// after the evaluate call returns. Entries expire after the TTL.
type ResultCache struct {
	mu    sync.RWMutex
	store map[string]*cachedRun
	ttl   time.Duration
	now   func() time.Time
}

// NewResultCache creates a cache. A non-positive ttl defaults to one hour.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultCache{
		store: make(map[string]*cachedRun),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get retrieves a run if available and not expired.
func (c *ResultCache) Get(id string) (*cachedRun, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[id]
	if !ok || c.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry, true
}

func (c *ResultCache) Set(id string, resp *models.EvaluateResponse, ledgers map[string][]backtest.LedgerRow) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[id] = &cachedRun{
		Response:  resp,
		Ledgers:   ledgers,
		ExpiresAt: c.now().Add(c.ttl),
	}
}

// Sweep removes expired entries and reports how many were dropped.
func (c *ResultCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for id, entry := range c.store {
		if now.After(entry.ExpiresAt) {
			delete(c.store, id)
			n++
		}
	}
	return n
}

// RunCleanup sweeps expired entries every interval until stop is closed.
func (c *ResultCache) RunCleanup(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-stop:
			return
		}
	}
}
