package proxy

import (
	"strings"
	"sync"
	"time"
)

// cooldown is how long a failed proxy is skipped
const cooldown = 5 * time.Minute

// Pool rotates requests over a list of HTTP/SOCKS5 proxies
type Pool struct {
	proxies []string
	index   int
	mu      sync.Mutex
	failed  map[string]time.Time
}

// NewPool builds a pool from a comma separated proxy list. Blank entries are ignored.
func NewPool(list string) *Pool {
	var proxies []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return &Pool{
		proxies: proxies,
		failed:  make(map[string]time.Time),
	}
}

// Len returns the number of configured proxies
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy, or "" when the pool is empty.
// When every proxy is cooling down the next one in line is returned anyway.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for tries := 0; tries < len(p.proxies); tries++ {
		candidate := p.proxies[p.index]
		p.index = (p.index + 1) % len(p.proxies)

		failedAt, ok := p.failed[candidate]
		if !ok {
			return candidate
		}
		if time.Since(failedAt) >= cooldown {
			delete(p.failed, candidate)
			return candidate
		}
	}

	candidate := p.proxies[p.index]
	p.index = (p.index + 1) % len(p.proxies)
	return candidate
}

// MarkFailed puts a proxy on cooldown
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears the failure status of a proxy
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}
