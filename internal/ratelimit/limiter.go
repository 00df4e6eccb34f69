// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per registrar host.
type RateLimiter interface {
	// Wait blocks until a request for the given URL can proceed.
	// If the context is cancelled before the rate limit allows, an error is returned.
	Wait(ctx context.Context, urlStr string) error
}

// HostLimiter keeps one token bucket per host so that several listings served
// from the same registrar do not hammer it in parallel.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing requestsPerSecond per host
func NewHostLimiter(requestsPerSecond float64, burst int) *HostLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2.0
	}
	if burst <= 0 {
		burst = 2
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until the request for the given URL can proceed
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	host := hostOf(urlStr)
	if host == "" {
		// Invalid URL, let it proceed (the request will fail instead)
		return nil
	}

	return hl.limiter(host).Wait(ctx)
}

func (hl *HostLimiter) limiter(host string) *rate.Limiter {
	hl.mu.RLock()
	l, ok := hl.limiters[host]
	hl.mu.RUnlock()
	if ok {
		return l
	}

	hl.mu.Lock()
	defer hl.mu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := hl.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(hl.perHost, hl.burst)
	hl.limiters[host] = l
	return l
}

func hostOf(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}

// Unlimited is a RateLimiter that never blocks
type Unlimited struct{}

// Wait implements RateLimiter
func (Unlimited) Wait(ctx context.Context, _ string) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
