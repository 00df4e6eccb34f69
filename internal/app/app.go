// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/law-makers/cheapreg/internal/config"
	"github.com/law-makers/cheapreg/internal/currency"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/internal/fetch"
	"github.com/law-makers/cheapreg/internal/proxy"
	"github.com/law-makers/cheapreg/internal/ratelimit"
	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/internal/runner"
	"github.com/law-makers/cheapreg/internal/secrets"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Application holds all application dependencies.
//
// It is created once per command invocation. Use Close() to release
// idle connections on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	HTTPClient  *http.Client
	Proxies     *proxy.Pool
	RateLimiter ratelimit.RateLimiter
	Fetchers    map[models.RenderMode]fetch.Fetcher
	startTime   time.Time

	secretsOnce sync.Once
	secrets     *secrets.Store
	secretsErr  error
}

// openSecrets is replaced in tests
var openSecrets = secrets.NewStore

// SetupLogging configures the global zerolog logger from cfg.
// Info is treated as the quiet default so progress output stays readable.
func SetupLogging(cfg *config.Config, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	switch strings.ToLower(cfg.LogLevel) {
	case "trace", "debug":
		level = zerolog.DebugLevel
	case "error", "fatal", "panic":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if w == nil {
		w = os.Stderr
	}
	if cfg.JSONLog {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: time.Kitchen})
	}
	return log.Logger
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Builds the proxy pool and the HTTP client that rotates over it
//   - Creates the per-host rate limiter shared by every fetcher
//   - Creates the static fetcher and, when requested, the browser fetcher
//
// The secret store is opened on first use, see SecretStore.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := log.Logger

	pool := proxy.NewPool(strings.Join(cfg.Proxies, ","))
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: pool.Transport(&http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}),
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Int("proxies", pool.Len()).
		Msg("HTTP client initialized")

	limiter := ratelimit.NewHostLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	fetchers := map[models.RenderMode]fetch.Fetcher{
		models.RenderStatic: fetch.NewHTTP(httpClient, limiter, cfg.UserAgent, cfg.Headers),
	}
	if models.RenderMode(cfg.Render) == models.RenderBrowser {
		fetchers[models.RenderBrowser] = fetch.NewBrowser(limiter, fetch.BrowserOptions{
			Headless:   cfg.Headless,
			ChromePath: cfg.ChromePath,
			UserAgent:  cfg.UserAgent,
			Proxy:      pool.Next(),
			Headers:    cfg.Headers,
			Timeout:    cfg.HTTPTimeout,
		})
		logger.Debug().Bool("headless", cfg.Headless).Msg("Browser fetcher enabled")
	}

	return &Application{
		Config:      cfg,
		Logger:      &logger,
		HTTPClient:  httpClient,
		Proxies:     pool,
		RateLimiter: limiter,
		Fetchers:    fetchers,
		startTime:   time.Now(),
	}, nil
}

// Sources returns the configured registrar listings
func (a *Application) Sources() ([]registrar.Source, error) {
	return registrar.Build(a.Config.Kinds(), a.Config.KindURLs(), models.RenderMode(a.Config.Render))
}

// SecretStore opens the secret store once and returns it
func (a *Application) SecretStore() (*secrets.Store, error) {
	a.secretsOnce.Do(func() {
		a.secrets, a.secretsErr = openSecrets()
		if a.secretsErr != nil {
			a.Logger.Warn().Err(a.secretsErr).Msg("Secret store unavailable")
			return
		}
		a.Logger.Debug().Str("backend", a.secrets.Backend()).Msg("Secret store initialized")
	})
	return a.secrets, a.secretsErr
}

// APIKey returns the rate service key from the config, falling back to the secret store.
// No key is not an error, and neither is an unusable store.
func (a *Application) APIKey() (string, error) {
	if a.Config.APIKey != "" {
		return a.Config.APIKey, nil
	}
	store, err := a.SecretStore()
	if err != nil {
		return "", nil
	}
	key, err := store.Get(secrets.APIKeyName)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return "", nil
	}
	return key, err
}

// Converter loads exchange rates from the rates file when set, else from the rate service
func (a *Application) Converter(ctx context.Context) (*currency.Converter, error) {
	if a.Config.RatesFile != "" {
		a.Logger.Debug().Str("path", a.Config.RatesFile).Msg("Loading exchange rates from file")
		return currency.LoadFile(a.Config.RatesFile, a.Config.Base)
	}

	key, err := a.APIKey()
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Could not read rate service API key")
	}
	return currency.New(ctx, a.HTTPClient, currency.Options{
		URL:       a.Config.RatesURL,
		Base:      a.Config.Base,
		BaseParam: a.Config.RatesBaseParam,
		APIKey:    key,
		Timeout:   a.Config.HTTPTimeout,
	})
}

// Compare loads rates, fetches sources and ranks the prices.
// Rates are loaded first so a rate service failure costs no registrar requests.
func (a *Application) Compare(ctx context.Context, sources []registrar.Source, progress runner.Progress) (*runner.Outcome, error) {
	conv, err := a.Converter(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading exchange rates: %w", err)
	}

	concurrency := a.Config.Concurrency
	if concurrency == 0 {
		concurrency = len(sources)
	}
	pool := runner.NewWorkerPool(a.Fetchers, concurrency)
	if progress != nil {
		pool.SetProgress(progress)
	}

	policy := runner.PolicySkip
	if a.Config.Strict {
		policy = runner.PolicyStrict
	}
	return runner.New(pool, conv, policy).Run(ctx, sources)
}

// Close releases idle connections
func (a *Application) Close(ctx context.Context) error {
	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}
	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
