// Package ratelimit throttles requests per key with token buckets.
// Each key gets its own limiter; limiters unused for longer than the idle TTL
// are evicted by a background sweeper that stops on Close.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config describes the bucket shared by every key.
type Config struct {
	// RequestsPerMinute is the sustained refill rate.
	RequestsPerMinute int
	// Burst is the bucket size.
	Burst int
	// IdleTTL is how long an unused key is kept.
	IdleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter holds one token bucket per key.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a Limiter and starts its sweeper. Callers must Close it.
func New(cfg Config, logger *slog.Logger) *Limiter {
	return newLimiter(cfg, time.Now, logger, true)
}

func newLimiter(cfg Config, now func() time.Time, logger *slog.Logger, sweep bool) *Limiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	l := &Limiter{
		limit:   rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:   cfg.Burst,
		idleTTL: cfg.IdleTTL,
		now:     now,
		logger:  logger.With(slog.String("component", "rate_limiter")),
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if sweep {
		go l.sweepLoop(cfg.IdleTTL / 2)
	} else {
		close(l.done)
	}
	return l
}

// Allow reports whether a request for key may proceed now. When it may not,
// the returned duration is how long until the next token is available.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	// The reservation is taken under the lock so Sweep cannot evict the
	// entry in between and hand the key a fresh bucket.
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Sweep drops keys idle for longer than the TTL and returns how many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Close stops the sweeper and waits for it to exit. It is safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			if removed := l.Sweep(); removed > 0 {
				l.logger.Debug("evicted idle rate limiters", slog.Int("removed", removed))
			}
		}
	}
}
