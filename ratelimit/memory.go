package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps one timestamp log per key. Only suitable for a single instance.
type MemoryLimiter struct {
	cfg  Config
	now  func() time.Time
	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewMemoryLimiter(cfg Config, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{cfg: cfg.normalized(), now: now, hits: make(map[string][]time.Time)}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	log := prune(l.hits[key], now.Add(-l.cfg.Window))

	d := Decision{Limit: l.cfg.Limit}
	if len(log) >= l.cfg.Limit {
		l.hits[key] = log
		d.RetryAfter = log[0].Add(l.cfg.Window).Sub(now)
		return d, nil
	}

	log = append(log, now)
	l.hits[key] = log
	d.Allowed = true
	d.Remaining = l.cfg.Limit - len(log)
	return d, nil
}

// Sweep drops keys with no hits inside the window and returns how many were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.Window)
	removed := 0
	for key, log := range l.hits {
		if log = prune(log, cutoff); len(log) == 0 {
			delete(l.hits, key)
			removed++
			continue
		}
		l.hits[key] = log
	}
	return removed
}

// Run sweeps on every tick until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// prune keeps the hits strictly after cutoff. log is sorted ascending.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0:0], log[i:]...)
}
