package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// HTTP
	HTTPTimeout time.Duration     `yaml:"timeout"`
	UserAgent   string            `yaml:"user_agent"`
	Proxies     []string          `yaml:"proxies"`
	Headers     map[string]string `yaml:"headers"`

	// Rate Limiting, per registrar host
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Browser
	Render     string `yaml:"render"`
	ChromePath string `yaml:"chrome_path"`
	Headless   bool   `yaml:"headless"`

	// Sources
	Sources     []string          `yaml:"sources"`
	SourceURLs  map[string]string `yaml:"source_urls"`
	Strict      bool              `yaml:"strict"`
	Concurrency int               `yaml:"concurrency"`

	// Exchange rates
	Base           string `yaml:"base"`
	RatesURL       string `yaml:"rates_url"`
	RatesBaseParam string `yaml:"rates_base_param"`
	RatesFile      string `yaml:"rates_file"`
	APIKey         string `yaml:"api_key"`

	// Report
	Format     string   `yaml:"format"`
	Output     string   `yaml:"output"`
	Top        int      `yaml:"top"`
	TLDs       []string `yaml:"tlds"`
	NoColor    bool     `yaml:"no_color"`
	NoProgress bool     `yaml:"no_progress"`
}

// Defaults returns a Config populated with the default values
func Defaults() *Config {
	return &Config{
		LogLevel:       DefaultLogLevel,
		JSONLog:        DefaultJSONLog,
		HTTPTimeout:    DefaultHTTPTimeout,
		UserAgent:      DefaultUserAgent,
		RateLimitRPS:   DefaultRateLimitRPS,
		RateLimitBurst: DefaultRateLimitBurst,
		Render:         DefaultRender,
		Headless:       DefaultBrowserHeadless,
		Base:           DefaultBase,
		RatesURL:       DefaultRatesURL,
		RatesBaseParam: DefaultRatesBaseParam,
		Format:         DefaultFormat,
	}
}

// Load builds a Config by combining defaults, an optional YAML file, a .env file,
// environment variables and CLI flags, later sources winning.
// Caller should pass the executing *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errs.New(errs.CodeConfig, "failed to read "+DefaultEnvFile, err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := cfg.applyFlags(cmd); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, errs.New(errs.CodeConfig, "invalid config", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errs.New(errs.CodeConfig, "failed to read config file", err).WithDetail("path", path)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return errs.New(errs.CodeConfig, "failed to parse config file", err).WithDetail("path", path)
	}
	return nil
}

// applyEnv reads CHEAPREG_* variables through getenv
func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(name string) string { return strings.TrimSpace(getenv(EnvPrefix + name)) }

	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := env("USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := env("PROXY"); v != "" {
		c.Proxies = splitList(v)
	}
	if v := env("CHROME_PATH"); v != "" {
		c.ChromePath = v
	}
	if v := env("BASE"); v != "" {
		c.Base = v
	}
	if v := env("RATES_URL"); v != "" {
		c.RatesURL = v
	}
	if v := env("RATES_FILE"); v != "" {
		c.RatesFile = v
	}
	if v := env("API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := env("SOURCES"); v != "" {
		c.Sources = splitList(v)
	}
	if v := env("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errs.New(errs.CodeConfig, "invalid "+EnvPrefix+"TIMEOUT", err)
		}
		c.HTTPTimeout = d
	}
	if v := env("STRICT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.New(errs.CodeConfig, "invalid "+EnvPrefix+"STRICT", err)
		}
		c.Strict = b
	}
	// NO_COLOR is honored without prefix
	if getenv("NO_COLOR") != "" {
		c.NoColor = true
	}
	return nil
}

// applyFlags overrides values with flags explicitly set on the command line
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	var err error
	set := func(name string, apply func() error) {
		if err == nil && changed(name) {
			err = apply()
		}
	}

	set("verbose", func() error {
		if v, _ := flags.GetBool("verbose"); v {
			c.LogLevel = "debug"
		}
		return nil
	})
	set("quiet", func() error {
		if v, _ := flags.GetBool("quiet"); v {
			c.LogLevel = "error"
		}
		return nil
	})
	set("json", func() (e error) { c.JSONLog, e = flags.GetBool("json"); return })
	set("user-agent", func() (e error) { c.UserAgent, e = flags.GetString("user-agent"); return })
	set("timeout", func() error {
		s, _ := flags.GetString("timeout")
		d, e := time.ParseDuration(s)
		if e != nil {
			return fmt.Errorf("invalid --timeout: %w", e)
		}
		c.HTTPTimeout = d
		return nil
	})
	set("proxy", func() error {
		s, _ := flags.GetString("proxy")
		c.Proxies = splitList(s)
		return nil
	})
	set("header", func() error {
		h, e := flags.GetStringArray("header")
		if e != nil {
			return e
		}
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		parsed, e := parseHeaderFlags(h)
		if e != nil {
			return e
		}
		for k, v := range parsed {
			c.Headers[k] = v
		}
		return nil
	})
	set("rps", func() (e error) { c.RateLimitRPS, e = flags.GetFloat64("rps"); return })
	set("burst", func() (e error) { c.RateLimitBurst, e = flags.GetInt("burst"); return })
	set("render", func() (e error) { c.Render, e = flags.GetString("render"); return })
	set("chrome-path", func() (e error) { c.ChromePath, e = flags.GetString("chrome-path"); return })
	set("headful", func() error {
		if v, _ := flags.GetBool("headful"); v {
			c.Headless = false
		}
		return nil
	})
	set("source", func() (e error) { c.Sources, e = flags.GetStringSlice("source"); return })
	set("strict", func() (e error) { c.Strict, e = flags.GetBool("strict"); return })
	set("concurrency", func() (e error) { c.Concurrency, e = flags.GetInt("concurrency"); return })
	set("base", func() (e error) { c.Base, e = flags.GetString("base"); return })
	set("rates-url", func() (e error) { c.RatesURL, e = flags.GetString("rates-url"); return })
	set("rates-file", func() (e error) { c.RatesFile, e = flags.GetString("rates-file"); return })
	set("format", func() (e error) { c.Format, e = flags.GetString("format"); return })
	set("output", func() (e error) { c.Output, e = flags.GetString("output"); return })
	set("top", func() (e error) { c.Top, e = flags.GetInt("top"); return })
	set("tld", func() (e error) { c.TLDs, e = flags.GetStringSlice("tld"); return })
	set("no-color", func() (e error) { c.NoColor, e = flags.GetBool("no-color"); return })
	set("no-progress", func() (e error) { c.NoProgress, e = flags.GetBool("no-progress"); return })

	if err != nil {
		return errs.New(errs.CodeConfig, "invalid flag", err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
