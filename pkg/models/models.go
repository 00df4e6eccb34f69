package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one registration price as listed by a registrar
type PriceRecord struct {
	TLD      string          `json:"tld"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	Source   string          `json:"source"`
}

// Entry is a PriceRecord normalized to the base currency
type Entry struct {
	Converted decimal.Decimal `json:"converted"`
	Currency  string          `json:"currency"`
	Price     decimal.Decimal `json:"price"`
	Source    string          `json:"source"`
}

// Page is the raw result of fetching a registrar listing
type Page struct {
	URL          string            `json:"url"`
	StatusCode   int               `json:"status_code"`
	Body         string            `json:"-"`
	Headers      map[string]string `json:"headers,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
}

// RenderMode defines how a page is retrieved
type RenderMode string

const (
	RenderStatic  RenderMode = "static"
	RenderBrowser RenderMode = "browser"
)

// RequestOptions contains options for fetching a registrar page
type RequestOptions struct {
	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
}
