// Package report renders a comparison table in the supported output formats.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/law-makers/cheapreg/internal/compare"
	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/shopspring/decimal"
)

// Format is an output format name
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatCSV, FormatHTML, FormatMarkdown}
}

// ParseFormat resolves a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want text, json, csv, html or markdown)", s)
}

// Failure is a source that was skipped during the run.
// Status is the HTTP status of the failed fetch, 0 when there was none.
type Failure struct {
	Source string `json:"source"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error"`
}

// Report is what gets rendered
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Table       *compare.Table
	Failed      []Failure
}

// Options narrows down what is rendered
type Options struct {
	// Top keeps the N cheapest entries per TLD, 0 keeps all
	Top int
	// TLDs restricts output to these TLDs, empty keeps all
	TLDs []string
	// Color enables ANSI colors in text output
	Color bool
}

// Row is one TLD with its ranked entries after filtering
type Row struct {
	TLD     string
	Entries []models.Entry
}

// Rows applies the options to the table. Every requested TLD must be in the
// table; missing ones are reported together as KEY_NOT_FOUND errors.
func (r Report) Rows(opts Options) ([]Row, error) {
	if r.Table == nil {
		return nil, nil
	}

	var rows []Row
	add := func(tld string, entries []models.Entry) {
		if opts.Top > 0 && len(entries) > opts.Top {
			entries = entries[:opts.Top]
		}
		rows = append(rows, Row{TLD: tld, Entries: entries})
	}

	if len(opts.TLDs) == 0 {
		r.Table.Each(add)
		return rows, nil
	}

	seen := make(map[string]bool, len(opts.TLDs))
	var want []string
	for _, t := range opts.TLDs {
		tld := registrar.NormalizeTLD(t)
		if tld == "" || seen[tld] {
			continue
		}
		seen[tld] = true
		want = append(want, tld)
	}
	sort.Strings(want)

	var missing []error
	for _, tld := range want {
		entries, err := r.Table.Lookup(tld)
		if err != nil {
			missing = append(missing, err)
			continue
		}
		add(tld, entries)
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return rows, nil
}

// Write renders the report to w
func Write(w io.Writer, format Format, r Report, opts Options) error {
	switch format {
	case FormatText, "":
		return WriteText(w, r, opts)
	case FormatJSON:
		return WriteJSON(w, r, opts)
	case FormatCSV:
		return WriteCSV(w, r, opts)
	case FormatHTML:
		return WriteHTML(w, r, opts)
	case FormatMarkdown:
		return WriteMarkdown(w, r, opts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func money(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}
