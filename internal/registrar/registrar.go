// Package registrar holds the closed set of registrar price listings and
// their page-specific extraction rules.
package registrar

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/internal/fetch"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/rs/zerolog/log"
)

// Kind identifies one registrar
type Kind string

const (
	Infomaniak    Kind = "infomaniak"
	Dynadot       Kind = "dynadot"
	Gandi         Kind = "gandi"
	OVH           Kind = "ovh"
	DomainContext Kind = "domaincontext"
)

// Extractor turns a parsed listing page into price records
type Extractor func(d Definition, doc *goquery.Document) ([]models.PriceRecord, error)

// Definition is the fixed description of a registrar listing
type Definition struct {
	Kind     Kind
	Name     string
	Method   string
	URL      string
	Currency string
	// Dynamic listings are filled in client side and can be rendered in a browser
	Dynamic bool
	Extract Extractor
}

var definitions = map[Kind]Definition{
	Infomaniak: {
		Kind:     Infomaniak,
		Name:     "Infomaniak",
		Method:   http.MethodPost,
		URL:      "https://www.infomaniak.com/fr/domaines/tarifs/toutes",
		Currency: "CHF",
		Extract:  extractInfomaniak,
	},
	Dynadot: {
		Kind:     Dynadot,
		Name:     "Dynadot",
		Method:   http.MethodGet,
		URL:      "https://www.dynadot.com/domain/tlds.html?price_level=0",
		Currency: "USD",
		Dynamic:  true,
		Extract:  extractDynadot,
	},
	Gandi: {
		Kind:     Gandi,
		Name:     "Gandi",
		Method:   http.MethodGet,
		URL:      "https://v4.gandi.net/domaine/prix/info",
		Currency: "EUR",
		Extract:  extractGandi,
	},
	OVH: {
		Kind:     OVH,
		Name:     "OVH",
		Method:   http.MethodGet,
		URL:      "https://www.ovh.com/fr/domaines/tarifs/",
		Currency: "EUR",
		Extract:  extractOVH,
	},
	DomainContext: {
		Kind:     DomainContext,
		Name:     "DomainContext",
		Method:   http.MethodGet,
		URL:      "https://www.domaincontext.com/domain-prices",
		Currency: "USD",
		Extract:  extractDomainContext,
	},
}

// Kinds returns every known registrar in a stable order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(definitions))
	for k := range definitions {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Lookup returns the definition for a registrar
func Lookup(k Kind) (Definition, bool) {
	d, ok := definitions[k]
	return d, ok
}

// ParseKind resolves a registrar name case-insensitively
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := definitions[k]; !ok {
		return "", fmt.Errorf("unknown registrar %q (known: %s)", name, joinKinds(Kinds()))
	}
	return k, nil
}

func joinKinds(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Source is a registrar listing ready to be fetched
type Source struct {
	Definition
	Render models.RenderMode
}

// Build instantiates sources for the given kinds, all of them when kinds is empty.
// urls overrides listing URLs per registrar.
func Build(kinds []Kind, urls map[Kind]string, render models.RenderMode) ([]Source, error) {
	if len(kinds) == 0 {
		kinds = Kinds()
	}

	sources := make([]Source, 0, len(kinds))
	seen := make(map[Kind]bool)
	for _, k := range kinds {
		d, ok := definitions[k]
		if !ok {
			return nil, fmt.Errorf("unknown registrar %q", k)
		}
		if seen[k] {
			continue
		}
		seen[k] = true

		if u := urls[k]; u != "" {
			d.URL = u
		}
		mode := models.RenderStatic
		if render == models.RenderBrowser && d.Dynamic {
			mode = models.RenderBrowser
		}
		sources = append(sources, Source{Definition: d, Render: mode})
	}
	return sources, nil
}

// Records fetches the listing and extracts its price records.
// Every call fetches again; nothing is cached.
func (s Source) Records(ctx context.Context, f fetch.Fetcher) ([]models.PriceRecord, error) {
	page, err := f.Fetch(ctx, models.RequestOptions{URL: s.URL, Method: s.Method})
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, errs.New(errs.CodeExtraction, fmt.Sprintf("%s: failed to parse HTML", s.Name), err)
	}

	records, err := s.Extract(s.Definition, doc)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Warn().Str("source", s.Name).Msg("Listing found but contains no prices")
	}
	log.Debug().
		Str("source", s.Name).
		Int("records", len(records)).
		Msg("Extraction completed")

	return records, nil
}

// record builds a PriceRecord from raw cell texts
func (d Definition) record(tldText, priceText string) (models.PriceRecord, error) {
	tld := NormalizeTLD(tldText)
	if tld == "" {
		return models.PriceRecord{}, errs.Extraction(d.Name, "empty TLD cell")
	}
	price, err := ParsePrice(priceText)
	if err != nil {
		return models.PriceRecord{}, errs.Extraction(d.Name, "%s: %v", tld, err)
	}
	return models.PriceRecord{
		TLD:      tld,
		Price:    price,
		Currency: d.Currency,
		Source:   d.Name,
	}, nil
}

func missing(d Definition, selector string) error {
	return errs.Extraction(d.Name, "expected markup %q not found", selector)
}
