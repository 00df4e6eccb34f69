package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel        = "info"
	DefaultJSONLog         = false
	DefaultUserAgent       = "cheapreg/1.0 (+https://github.com/law-makers/cheapreg)"
	DefaultHTTPTimeout     = 30 * time.Second
	DefaultRateLimitRPS    = 2.0
	DefaultRateLimitBurst  = 2
	DefaultBrowserHeadless = true
	DefaultRender          = "static"
	DefaultBase            = "EUR"
	DefaultRatesURL        = "https://api.frankfurter.app/latest"
	DefaultRatesBaseParam  = "from"
	DefaultFormat          = "text"
	DefaultMaxConcurrency  = 8
	DefaultEnvFile         = ".env"
	EnvPrefix              = "CHEAPREG_"
)
