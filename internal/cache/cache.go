// Package cache holds computed monthly summaries so repeated reads of an
// unchanged ledger skip the aggregation pass.
package cache

import (
	"sync"
	"time"

	"finfamily/internal/core"
	"finfamily/internal/log"
	"finfamily/internal/summary"
)

// Cache defines a generic cache interface
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

type summaryKey struct {
	version uint64
	month   summary.Month
}

// SummaryCache keys summaries by ledger version and month. Any ledger change
// bumps the version, so stale entries are never served; they age out
// through LRU eviction or ttl.
type SummaryCache struct {
	lru *LRU[summaryKey, core.FinancialSummary]
}

func NewSummaryCache(size int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{lru: NewLRU[summaryKey, core.FinancialSummary](size, ttl)}
}

// GetOrCompute returns the cached summary or computes and stores it.
func (c *SummaryCache) GetOrCompute(version uint64, month summary.Month, compute func() core.FinancialSummary) core.FinancialSummary {
	key := summaryKey{version: version, month: month}
	if s, ok := c.lru.Get(key); ok {
		return s
	}
	s := compute()
	c.lru.Set(key, s)
	return s
}

func (c *SummaryCache) Size() int { return c.lru.Size() }

func (c *SummaryCache) CleanExpired() int { return c.lru.CleanExpired() }

func (c *SummaryCache) Stats() (hits, misses uint64) { return c.lru.Stats() }

// Manager handles cache lifecycle and cleanup
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(c Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go m.cleanup(interval)
}

// CleanNow sweeps every registered cache once.
func (m *Manager) CleanNow() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanNow(); n > 0 {
				m.logger.Debug("Removed expired cache entries", log.FieldCount, n)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()
	if !started {
		return
	}
	close(m.stopCleanup)
	<-m.cleanupDone
}
