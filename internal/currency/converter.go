// Package currency converts registrar prices into one base currency using
// rates fetched once from a remote rate service.
package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/law-makers/cheapreg/internal/errs"
	urlutil "github.com/law-makers/cheapreg/internal/utils/url"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Rates maps a currency code to how many units of it one base unit buys
type Rates map[string]decimal.Decimal

// Options configures the rate service request
type Options struct {
	URL       string
	Base      string
	BaseParam string // query parameter carrying the base code
	APIKey    string // sent as access_key when set
	Timeout   time.Duration
}

type rateResponse struct {
	Base    string `json:"base"`
	Success *bool  `json:"success,omitempty"`
	Rates   Rates  `json:"rates"`
	Error   *struct {
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

// Converter normalizes amounts to its base currency.
// Rates are fixed at construction and safe for concurrent use.
type Converter struct {
	base  string
	rates Rates
}

// New fetches the current rates relative to opts.Base
func New(ctx context.Context, client *http.Client, opts Options) (*Converter, error) {
	if client == nil {
		client = http.DefaultClient
	}
	base := normalizeCode(opts.Base)
	if base == "" {
		return nil, errs.New(errs.CodeConfig, "base currency is required", nil)
	}

	endpoint, err := url.Parse(opts.URL)
	if err != nil {
		return nil, errs.New(errs.CodeConfig, "invalid rate service URL", err)
	}
	q := endpoint.Query()
	param := opts.BaseParam
	if param == "" {
		param = "from"
	}
	q.Set(param, base)
	if opts.APIKey != "" {
		q.Set("access_key", opts.APIKey)
	}
	endpoint.RawQuery = q.Encode()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	// Keep the key out of logs and errors
	display := urlutil.Redact(endpoint.String(), "access_key")
	log.Debug().Str("url", display).Str("base", base).Msg("Fetching exchange rates")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errs.Fetch(display, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, errs.Fetch(display, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.Fetch(display, resp.StatusCode, errors.New(resp.Status))
	}

	c, err := decode(resp.Body, base)
	if err != nil {
		return nil, errs.Fetch(display, resp.StatusCode, err)
	}

	log.Debug().Str("base", base).Int("rates", len(c.rates)).Msg("Exchange rates loaded")
	return c, nil
}

// LoadFile reads rates from a JSON file in the rate service format
func LoadFile(path, base string) (*Converter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.CodeConfig, "failed to open rates file", err)
	}
	defer f.Close()

	c, err := decode(f, normalizeCode(base))
	if err != nil {
		return nil, errs.New(errs.CodeConfig, fmt.Sprintf("invalid rates file %s", path), err)
	}
	return c, nil
}

// NewStatic builds a converter from known rates
func NewStatic(base string, rates Rates) *Converter {
	c := &Converter{base: normalizeCode(base), rates: make(Rates, len(rates))}
	for code, r := range rates {
		c.rates[normalizeCode(code)] = r
	}
	return c
}

func decode(r io.Reader, base string) (*Converter, error) {
	var payload rateResponse
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates: %w", err)
	}
	if payload.Success != nil && !*payload.Success {
		if payload.Error != nil {
			return nil, fmt.Errorf("rate service error %s: %s", payload.Error.Type, payload.Error.Info)
		}
		return nil, fmt.Errorf("rate service reported failure")
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rate service returned no rates")
	}

	rates := make(Rates, len(payload.Rates))
	for code, rate := range payload.Rates {
		if !rate.IsPositive() {
			log.Warn().Str("currency", code).Str("rate", rate.String()).Msg("Ignoring non-positive rate")
			continue
		}
		rates[normalizeCode(code)] = rate
	}

	quoted := normalizeCode(payload.Base)
	if quoted != "" && quoted != base {
		rebased, err := rebase(rates, quoted, base)
		if err != nil {
			return nil, err
		}
		rates = rebased
	}
	delete(rates, base)

	return &Converter{base: base, rates: rates}, nil
}

// rebase re-expresses rates quoted against from as rates against to
func rebase(rates Rates, from, to string) (Rates, error) {
	pivot, ok := rates[to]
	if !ok {
		return nil, fmt.Errorf("rates quoted in %s do not include %s", from, to)
	}
	out := make(Rates, len(rates)+1)
	for code, r := range rates {
		out[code] = r.Div(pivot)
	}
	out[from] = decimal.NewFromInt(1).Div(pivot)
	return out, nil
}

// Base returns the base currency code
func (c *Converter) Base() string {
	return c.base
}

// Rate returns the rate for a currency; the base currency has rate 1
func (c *Converter) Rate(currency string) (decimal.Decimal, error) {
	code := normalizeCode(currency)
	if code == c.base {
		return decimal.NewFromInt(1), nil
	}
	r, ok := c.rates[code]
	if !ok {
		return decimal.Zero, errs.New(errs.CodeUnknownCurrency, fmt.Sprintf("no %s rate for %q", c.base, currency), nil).
			WithDetail("currency", currency)
	}
	return r, nil
}

// Convert expresses amount in the base currency
func (c *Converter) Convert(currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if normalizeCode(currency) == c.base {
		return amount, nil
	}
	r, err := c.Rate(currency)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Div(r), nil
}

// Rates returns a copy of the fetched rates
func (c *Converter) Rates() Rates {
	out := make(Rates, len(c.rates))
	for code, r := range c.rates {
		out[code] = r
	}
	return out
}

// Codes returns the known currency codes, sorted
func (c *Converter) Codes() []string {
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
