// internal/fetch/http.go
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/internal/ratelimit"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// maxBodyBytes bounds how much of a listing page is read
const maxBodyBytes = 16 << 20

// HTTPFetcher retrieves pages with plain HTTP requests
type HTTPFetcher struct {
	client    *http.Client
	limiter   ratelimit.RateLimiter
	userAgent string
	headers   map[string]string
}

// NewHTTP creates an HTTPFetcher. The client is shared, never modified.
func NewHTTP(client *http.Client, lim ratelimit.RateLimiter, ua string, headers map[string]string) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if lim == nil {
		lim = ratelimit.Unlimited{}
	}
	return &HTTPFetcher{
		client:    client,
		limiter:   lim,
		userAgent: ua,
		headers:   headers,
	}
}

// Name returns the name of this fetcher
func (f *HTTPFetcher) Name() string {
	return "HTTPFetcher"
}

// Fetch retrieves a page and decodes its body to UTF-8
func (f *HTTPFetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	start := time.Now()

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	log.Debug().
		Str("url", opts.URL).
		Str("method", method).
		Str("fetcher", f.Name()).
		Msg("Starting fetch")

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	if err := f.limiter.Wait(ctx, opts.URL); err != nil {
		return nil, errs.Fetch(opts.URL, 0, fmt.Errorf("rate limiter: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, opts.URL, nil)
	if err != nil {
		return nil, errs.Fetch(opts.URL, 0, fmt.Errorf("failed to create request: %w", err))
	}

	for key, value := range DefaultHeaders {
		req.Header.Set(key, value)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errs.Fetch(opts.URL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, errs.Fetch(opts.URL, resp.StatusCode, errors.New(resp.Status))
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, errs.Fetch(opts.URL, resp.StatusCode, fmt.Errorf("unsupported charset: %w", err))
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.Fetch(opts.URL, resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	responseTime := time.Since(start).Milliseconds()

	page := &models.Page{
		URL:          opts.URL,
		StatusCode:   resp.StatusCode,
		Body:         string(raw),
		Headers:      make(map[string]string),
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}
	for key, values := range resp.Header {
		if len(values) > 0 {
			page.Headers[key] = values[0]
		}
	}

	log.Debug().
		Str("url", opts.URL).
		Int("status", resp.StatusCode).
		Int64("response_time_ms", responseTime).
		Int("bytes", len(raw)).
		Msg("Fetch completed")

	return page, nil
}
