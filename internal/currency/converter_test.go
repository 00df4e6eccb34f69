package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNew_FetchesRatesOnce(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"amount":1.0,"base":"EUR","date":"2026-10-14","rates":{"USD":1.20,"CHF":1.05}}`))
	}))
	defer server.Close()

	c, err := New(context.Background(), &http.Client{Timeout: 5 * time.Second}, Options{
		URL:     server.URL + "/latest",
		Base:    "eur",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if query != "from=EUR" {
		t.Errorf("Expected query 'from=EUR', got %q", query)
	}
	if c.Base() != "EUR" {
		t.Errorf("Expected base EUR, got %s", c.Base())
	}
	if got := c.Codes(); strings.Join(got, ",") != "CHF,USD" {
		t.Errorf("Expected codes CHF,USD, got %v", got)
	}

	got, err := c.Convert("USD", d("9.99"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !got.Equal(d("8.325")) {
		t.Errorf("Expected 9.99 USD = 8.325 EUR, got %s", got)
	}
}

func TestNew_APIKeyAndBaseParam(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{"success":true,"base":"EUR","rates":{"USD":1.1}}`))
	}))
	defer server.Close()

	_, err := New(context.Background(), nil, Options{
		URL:       server.URL,
		Base:      "EUR",
		BaseParam: "base",
		APIKey:    "secret",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if query != "access_key=secret&base=EUR" {
		t.Errorf("Unexpected query %q", query)
	}
}

func TestNew_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, `bad gateway`},
		{"reported failure", http.StatusOK, `{"success":false,"error":{"type":"invalid_access_key","info":"nope"}}`},
		{"empty rates", http.StatusOK, `{"base":"EUR","rates":{}}`},
		{"not json", http.StatusOK, `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New(context.Background(), nil, Options{URL: server.URL, Base: "EUR"})
			if !errors.Is(err, errs.ErrFetch) {
				t.Errorf("Expected fetch error, got %v", err)
			}
		})
	}
}

func TestNew_RebasesForeignQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// service ignores the requested base and always quotes EUR
		w.Write([]byte(`{"base":"EUR","rates":{"USD":1.25,"CHF":1.00}}`))
	}))
	defer server.Close()

	c, err := New(context.Background(), nil, Options{URL: server.URL, Base: "USD"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	eur, err := c.Convert("EUR", d("8"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !eur.Equal(d("10")) {
		t.Errorf("Expected 8 EUR = 10 USD, got %s", eur)
	}

	chf, _ := c.Convert("CHF", d("4"))
	if !chf.Equal(d("5")) {
		t.Errorf("Expected 4 CHF = 5 USD, got %s", chf)
	}
}

func TestConvert_BaseIsIdentity(t *testing.T) {
	c := NewStatic("EUR", Rates{"USD": d("1.20")})

	for _, amount := range []string{"0", "7.99", "1234.5678", "-3"} {
		got, err := c.Convert("EUR", d(amount))
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if !got.Equal(d(amount)) {
			t.Errorf("convert(base, %s) = %s", amount, got)
		}
	}

	if got, _ := c.Convert(" eur ", d("1.5")); !got.Equal(d("1.5")) {
		t.Errorf("Expected case-insensitive base match, got %s", got)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	rates := Rates{"USD": d("1.20"), "CHF": d("1.05"), "JPY": d("161.37")}
	c := NewStatic("EUR", rates)
	tolerance := d("0.000000001")

	for code, rate := range rates {
		for _, amount := range []string{"9.99", "0.01", "15000"} {
			converted, err := c.Convert(code, d(amount))
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			back := converted.Mul(rate)
			if back.Sub(d(amount)).Abs().GreaterThan(tolerance) {
				t.Errorf("%s %s: round trip gave %s", amount, code, back)
			}
		}
	}
}

func TestConvert_UnknownCurrency(t *testing.T) {
	c := NewStatic("EUR", Rates{"USD": d("1.20")})

	_, err := c.Convert("GBP", d("5"))
	if !errors.Is(err, errs.ErrUnknownCurrency) {
		t.Fatalf("Expected unknown currency error, got %v", err)
	}
}

func TestRates_ReturnsCopy(t *testing.T) {
	c := NewStatic("EUR", Rates{"USD": d("1.20")})
	r := c.Rates()
	r["USD"] = d("99")

	if rate, _ := c.Rate("USD"); !rate.Equal(d("1.20")) {
		t.Errorf("Expected converter rates to be unaffected, got %s", rate)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	if err := os.WriteFile(path, []byte(`{"base":"EUR","rates":{"USD":"1.20"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path, "EUR")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if rate, _ := c.Rate("USD"); !rate.Equal(d("1.2")) {
		t.Errorf("Expected USD rate 1.2, got %s", rate)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), "EUR"); !errors.Is(err, errs.ErrConfig) {
		t.Errorf("Expected config error for missing file, got %v", err)
	}
}
