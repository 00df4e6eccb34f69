package config

import (
	"fmt"
	"strings"

	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/internal/report"
	urlutil "github.com/law-makers/cheapreg/internal/utils/url"
	"github.com/rs/zerolog"
)

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit must be > 0 requests per second")
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be >= 1")
	}
	if c.Concurrency < 0 || c.Concurrency > DefaultMaxConcurrency {
		return fmt.Errorf("concurrency must be between 0 and %d", DefaultMaxConcurrency)
	}
	if c.Render != "static" && c.Render != "browser" {
		return fmt.Errorf("render must be static or browser, got %q", c.Render)
	}

	c.Base = strings.ToUpper(strings.TrimSpace(c.Base))
	if len(c.Base) != 3 {
		return fmt.Errorf("base currency must be a 3-letter code, got %q", c.Base)
	}
	if c.RatesFile == "" {
		if err := urlutil.ValidateURL(c.RatesURL); err != nil {
			return fmt.Errorf("rates url: %w", err)
		}
	}

	for _, p := range c.Proxies {
		if !strings.Contains(p, "://") {
			return fmt.Errorf("proxy %q: missing scheme", p)
		}
	}

	for _, name := range c.Sources {
		if _, err := registrar.ParseKind(name); err != nil {
			return err
		}
	}
	for name, u := range c.SourceURLs {
		if _, err := registrar.ParseKind(name); err != nil {
			return fmt.Errorf("source_urls: %w", err)
		}
		if err := urlutil.ValidateURL(u); err != nil {
			return fmt.Errorf("source_urls.%s: %w", name, err)
		}
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Top < 0 {
		return fmt.Errorf("top must be >= 0")
	}
	return nil
}

// Kinds resolves the configured source names
func (c *Config) Kinds() []registrar.Kind {
	kinds := make([]registrar.Kind, 0, len(c.Sources))
	for _, name := range c.Sources {
		if k, err := registrar.ParseKind(name); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// KindURLs resolves the configured listing URL overrides
func (c *Config) KindURLs() map[registrar.Kind]string {
	urls := make(map[registrar.Kind]string, len(c.SourceURLs))
	for name, u := range c.SourceURLs {
		if k, err := registrar.ParseKind(name); err == nil {
			urls[k] = u
		}
	}
	return urls
}
