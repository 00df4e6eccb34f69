package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
)

// Transport returns a RoundTripper that sends each request through the next
// proxy of the pool. A proxy whose round trip fails goes on cooldown.
// An empty pool falls back to the environment (HTTP_PROXY etc).
func (p *Pool) Transport(base *http.Transport) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport)
	}
	if p.Len() == 0 {
		t := base.Clone()
		t.Proxy = http.ProxyFromEnvironment
		return t
	}
	return &rotatingTransport{
		pool:    p,
		base:    base,
		byProxy: make(map[string]*http.Transport),
	}
}

type rotatingTransport struct {
	pool    *Pool
	base    *http.Transport
	mu      sync.Mutex
	byProxy map[string]*http.Transport
}

func (rt *rotatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	proxyURL := rt.pool.Next()
	t, err := rt.transport(proxyURL)
	if err != nil {
		return nil, err
	}

	resp, err := t.RoundTrip(req)
	if err != nil {
		rt.pool.MarkFailed(proxyURL)
		return nil, err
	}
	rt.pool.MarkHealthy(proxyURL)
	return resp, nil
}

// transport keeps one connection pool per proxy
func (rt *rotatingTransport) transport(proxyURL string) (*http.Transport, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if t, ok := rt.byProxy[proxyURL]; ok {
		return t, nil
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxyURL, err)
	}
	t := rt.base.Clone()
	t.Proxy = http.ProxyURL(u)
	rt.byProxy[proxyURL] = t
	return t, nil
}

func (rt *rotatingTransport) CloseIdleConnections() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, t := range rt.byProxy {
		t.CloseIdleConnections()
	}
}
