// Package tracker counts per-provider request outcomes for the stats API.
package tracker

import (
	"sync"
	"sync/atomic"
)

// ProviderStats holds counters for one upstream provider. Fields are
// accessed atomically.
type ProviderStats struct {
	Requests  int64
	Retries   int64
	Failures  int64
	CacheHits int64
}

// Tracker aggregates request outcomes by provider name.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{stats: make(map[string]*ProviderStats)}
}

func (t *Tracker) get(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// Request records a completed request to the provider.
func (t *Tracker) Request(provider string) {
	atomic.AddInt64(&t.get(provider).Requests, 1)
}

// Retry records one retry attempt against the provider.
func (t *Tracker) Retry(provider string) {
	atomic.AddInt64(&t.get(provider).Retries, 1)
}

// Failure records a request that exhausted its retries.
func (t *Tracker) Failure(provider string) {
	atomic.AddInt64(&t.get(provider).Failures, 1)
}

// CacheHit records a request answered from cache without reaching the
// provider.
func (t *Tracker) CacheHit(provider string) {
	atomic.AddInt64(&t.get(provider).CacheHits, 1)
}

// Snapshot returns a copy of all counters.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]ProviderStats, len(t.stats))
	for name, s := range t.stats {
		out[name] = ProviderStats{
			Requests:  atomic.LoadInt64(&s.Requests),
			Retries:   atomic.LoadInt64(&s.Retries),
			Failures:  atomic.LoadInt64(&s.Failures),
			CacheHits: atomic.LoadInt64(&s.CacheHits),
		}
	}
	return out
}
