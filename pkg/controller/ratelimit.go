package controller

import (
	"context"
	"net/http"
	"sync"
	"time"
	"urlextract/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// clientLimiter is the token bucket of one client with the last time it was used.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client key, typically the client IP.
// It is safe for concurrent use.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	perKey   rate.Limit
	burst    int
	now      func() time.Time
}

// NewClientLimiter creates a limiter allowing requestsPerSecond per client
// with the given burst. A non-positive burst defaults to one request.
func NewClientLimiter(requestsPerSecond float64, burst int) *ClientLimiter {
	if burst <= 0 {
		burst = 1
	}

	return &ClientLimiter{
		limiters: make(map[string]*clientLimiter),
		perKey:   rate.Limit(requestsPerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether a request of key may proceed now.
func (cl *ClientLimiter) Allow(key string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	l, ok := cl.limiters[key]
	if !ok {
		l = &clientLimiter{limiter: rate.NewLimiter(cl.perKey, cl.burst)}
		cl.limiters[key] = l
	}
	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// Prune forgets the clients idle for longer than ttl and returns how many
// were removed.
func (cl *ClientLimiter) Prune(ttl time.Duration) int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	removed := 0
	cutoff := cl.now().Add(-ttl)
	for key, l := range cl.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(cl.limiters, key)
			removed++
		}
	}

	return removed
}

// Len returns the number of tracked clients.
func (cl *ClientLimiter) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	return len(cl.limiters)
}

// RunPruner prunes idle clients every ttl until ctx is done. A non-positive
// ttl disables pruning.
func (cl *ClientLimiter) RunPruner(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cl.Prune(ttl); n > 0 {
				logger.Debug(ctx, "pruned idle rate limiters", zap.Int("count", n))
			}
		}
	}
}

// WithRateLimit returns a middleware that lets a request through when its
// client IP has budget left in cl, and serves it with reject otherwise.
func WithRateLimit(cl *ClientLimiter, reject http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cl.Allow(GetClientIP(r)) {
				w.Header().Set("Retry-After", "1")
				reject.ServeHTTP(w, r)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
