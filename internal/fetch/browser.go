package fetch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/internal/ratelimit"
	headerutil "github.com/law-makers/cheapreg/internal/utils/headers"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
)

// BrowserOptions configures the headless browser
type BrowserOptions struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string
	Headers    map[string]string
	Timeout    time.Duration
}

// BrowserFetcher renders pages in headless Chrome for listings that are filled in by JavaScript
type BrowserFetcher struct {
	limiter ratelimit.RateLimiter
	opts    BrowserOptions
}

// NewBrowser creates a BrowserFetcher. Chrome is only started on Fetch.
func NewBrowser(lim ratelimit.RateLimiter, opts BrowserOptions) *BrowserFetcher {
	if lim == nil {
		lim = ratelimit.Unlimited{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &BrowserFetcher{limiter: lim, opts: opts}
}

// Name returns the name of this fetcher
func (b *BrowserFetcher) Name() string {
	return "BrowserFetcher"
}

func (b *BrowserFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if b.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.opts.UserAgent))
	}
	if b.opts.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(b.opts.Proxy))
	}
	if b.opts.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ChromePath))
	}
	return opts
}

// Fetch navigates to the page and returns the rendered DOM
func (b *BrowserFetcher) Fetch(ctx context.Context, opts models.RequestOptions) (*models.Page, error) {
	start := time.Now()

	if opts.Method != "" && opts.Method != http.MethodGet {
		return nil, errs.Fetch(opts.URL, 0, fmt.Errorf("browser rendering supports GET only, got %s", opts.Method))
	}

	log.Debug().
		Str("url", opts.URL).
		Str("fetcher", b.Name()).
		Msg("Starting fetch")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = b.opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := b.limiter.Wait(ctx, opts.URL); err != nil {
		return nil, errs.Fetch(opts.URL, 0, fmt.Errorf("rate limiter: %w", err))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	headers := network.Headers{}
	for key, value := range headerutil.Merge(b.opts.Headers, opts.Headers) {
		headers[key] = value
	}

	if err := chromedp.Run(tabCtx, network.Enable(), network.SetExtraHTTPHeaders(headers)); err != nil {
		return nil, errs.Fetch(opts.URL, 0, fmt.Errorf("failed to start browser: %w", err))
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(opts.URL))
	if err != nil {
		return nil, errs.Fetch(opts.URL, 0, err)
	}

	status := http.StatusOK
	if resp != nil {
		status = int(resp.Status)
	}
	if status < 200 || status > 299 {
		return nil, errs.Fetch(opts.URL, status, fmt.Errorf("%d %s", status, http.StatusText(status)))
	}

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, errs.Fetch(opts.URL, status, fmt.Errorf("failed to read rendered DOM: %w", err))
	}

	responseTime := time.Since(start).Milliseconds()

	log.Debug().
		Str("url", opts.URL).
		Int("status", status).
		Int64("response_time_ms", responseTime).
		Msg("Fetch completed")

	return &models.Page{
		URL:          opts.URL,
		StatusCode:   status,
		Body:         html,
		FetchedAt:    time.Now(),
		ResponseTime: responseTime,
	}, nil
}
