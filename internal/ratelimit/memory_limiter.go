package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process Limiter for single-instance deployments and tests.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Check records a hit for key when it is still under limit.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := m.now()
	windowStart := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	hits := keepRecent(m.windows[key], windowStart)

	allowed := limit > 0 && len(hits) < limit
	if allowed {
		hits = append(hits, now)
	}

	if len(hits) == 0 {
		delete(m.windows, key)
	} else {
		m.windows[key] = hits
	}

	resetAt := now.Add(window)
	if len(hits) > 0 {
		resetAt = hits[0].Add(window)
	}

	return &Result{
		Allowed:   allowed,
		Remaining: max(limit-len(hits), 0),
		ResetAt:   resetAt,
	}, nil
}

func keepRecent(hits []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(hits) && !hits[first].After(windowStart) {
		first++
	}

	return hits[first:]
}
