// Package compare groups registrar prices by TLD and ranks them in the base currency.
package compare

import (
	"fmt"
	"sort"

	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Converter normalizes an amount to the comparison base currency
type Converter interface {
	Base() string
	Convert(currency string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Table maps each TLD to its entries, cheapest first. It is not modified after Compare returns.
type Table struct {
	base    string
	entries map[string][]models.Entry
	tlds    []string
}

// Compare converts every record of every batch and ranks them per TLD.
// A conversion failure aborts the whole comparison.
func Compare(conv Converter, batches ...[]models.PriceRecord) (*Table, error) {
	t := &Table{
		base:    conv.Base(),
		entries: make(map[string][]models.Entry),
	}

	for _, batch := range batches {
		for _, rec := range batch {
			converted, err := conv.Convert(rec.Currency, rec.Price)
			if err != nil {
				return nil, fmt.Errorf("converting %s %s from %s: %w", rec.Price, rec.Currency, rec.Source, err)
			}
			t.entries[rec.TLD] = append(t.entries[rec.TLD], models.Entry{
				Converted: converted,
				Currency:  rec.Currency,
				Price:     rec.Price,
				Source:    rec.Source,
			})
		}
	}

	for tld, list := range t.entries {
		sort.SliceStable(list, func(i, j int) bool {
			return less(list[i], list[j])
		})
		t.tlds = append(t.tlds, tld)
	}
	sort.Strings(t.tlds)

	log.Debug().
		Str("base", t.base).
		Int("tlds", len(t.tlds)).
		Msg("Comparison table built")

	return t, nil
}

// less orders by converted price, then currency, listed price and source
func less(a, b models.Entry) bool {
	if c := a.Converted.Cmp(b.Converted); c != 0 {
		return c < 0
	}
	if a.Currency != b.Currency {
		return a.Currency < b.Currency
	}
	if c := a.Price.Cmp(b.Price); c != 0 {
		return c < 0
	}
	return a.Source < b.Source
}

// Base returns the currency entries are converted to
func (t *Table) Base() string {
	return t.base
}

// TLDs returns every TLD seen, sorted
func (t *Table) TLDs() []string {
	out := make([]string, len(t.tlds))
	copy(out, t.tlds)
	return out
}

// Len returns the number of TLDs
func (t *Table) Len() int {
	return len(t.tlds)
}

// Lookup returns the ranked entries for a TLD
func (t *Table) Lookup(tld string) ([]models.Entry, error) {
	list, ok := t.entries[tld]
	if !ok {
		return nil, errs.New(errs.CodeKeyNotFound, fmt.Sprintf("no prices for %q", tld), nil).
			WithDetail("tld", tld)
	}
	out := make([]models.Entry, len(list))
	copy(out, list)
	return out, nil
}

// Cheapest returns the first ranked entry for a TLD
func (t *Table) Cheapest(tld string) (models.Entry, error) {
	list, err := t.Lookup(tld)
	if err != nil {
		return models.Entry{}, err
	}
	return list[0], nil
}

// Each calls fn for every TLD in sorted order
func (t *Table) Each(fn func(tld string, entries []models.Entry)) {
	for _, tld := range t.tlds {
		fn(tld, t.entries[tld])
	}
}
