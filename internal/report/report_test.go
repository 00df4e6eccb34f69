package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/compare"
	"github.com/law-makers/cheapreg/internal/currency"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
	"github.com/shopspring/decimal"
)

func record(tld, price, cur, source string) models.PriceRecord {
	return models.PriceRecord{TLD: tld, Price: decimal.RequireFromString(price), Currency: cur, Source: source}
}

func sampleReport(t *testing.T) Report {
	t.Helper()
	conv := currency.NewStatic("EUR", currency.Rates{"USD": decimal.RequireFromString("1.20")})
	table, err := compare.Compare(conv,
		[]models.PriceRecord{record(".com", "10.00", "EUR", "Gandi"), record(".fr", "12.00", "EUR", "Gandi")},
		[]models.PriceRecord{record(".com", "9.60", "USD", "Dynadot"), record(".xyz", "1.20", "USD", "Dynadot")},
	)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	return Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Table:       table,
		Failed:      []Failure{{Source: "OVH", Status: 503, Error: "HTTP 503"}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRows_Filters(t *testing.T) {
	r := sampleReport(t)

	rows, err := r.Rows(Options{})
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 TLDs, got %d", len(rows))
	}

	rows, err = r.Rows(Options{Top: 1, TLDs: []string{".xyz", "COM", ".com"}})
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 TLDs after filter, got %d", len(rows))
	}
	if rows[0].TLD != ".com" || len(rows[0].Entries) != 1 {
		t.Errorf("Expected .com with one entry, got %+v", rows[0])
	}
	if rows[0].Entries[0].Source != "Dynadot" {
		t.Errorf("Expected Dynadot as cheapest .com, got %s", rows[0].Entries[0].Source)
	}
}

func TestRows_UnknownTLD(t *testing.T) {
	r := sampleReport(t)

	rows, err := r.Rows(Options{TLDs: []string{".com", ".doesnotexist", "nope"}})
	if !errors.Is(err, errs.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
	if rows != nil {
		t.Errorf("Expected no rows, got %+v", rows)
	}
	for _, want := range []string{".doesnotexist", ".nope"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to name %s, got %v", want, err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, r, Options{TLDs: []string{".doesnotexist"}}); !errors.Is(err, errs.ErrKeyNotFound) {
		t.Errorf("Expected Write to fail with ErrKeyNotFound, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got %q", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, sampleReport(t), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{".com", " * Dynadot", "8.00 EUR  (9.60 USD)", "10.00 EUR  (10.00 EUR)", "Skipped sources:", "OVH: HTTP 503"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Expected no ANSI colors when Color is false")
	}
	if strings.Index(out, ".com") > strings.Index(out, ".fr") {
		t.Error("Expected TLDs in sorted order")
	}
}

func TestWriteText_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, sampleReport(t), Options{Color: true}); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("Expected ANSI colors")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleReport(t), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var got struct {
		RunID string `json:"run_id"`
		Base  string `json:"base"`
		TLDs  []struct {
			TLD      string `json:"tld"`
			Cheapest string `json:"cheapest"`
			Entries  []struct {
				Converted string `json:"converted"`
				Source    string `json:"source"`
			} `json:"entries"`
		} `json:"tlds"`
		Failed []Failure `json:"failed"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got.Base != "EUR" || got.RunID != "run-1" {
		t.Errorf("unexpected header: base=%q run_id=%q", got.Base, got.RunID)
	}
	if len(got.TLDs) != 3 {
		t.Fatalf("Expected 3 TLDs, got %d", len(got.TLDs))
	}
	com := got.TLDs[0]
	if com.TLD != ".com" || com.Cheapest != "Dynadot" || len(com.Entries) != 2 {
		t.Errorf("unexpected .com block: %+v", com)
	}
	if com.Entries[0].Converted != "8" {
		t.Errorf("Expected exact converted price 8, got %s", com.Entries[0].Converted)
	}
	if len(got.Failed) != 1 || got.Failed[0].Source != "OVH" || got.Failed[0].Status != 503 {
		t.Errorf("unexpected failures: %+v", got.Failed)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleReport(t), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	lines, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	// header + 4 entries
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d", len(lines))
	}
	want := []string{".com", "1", "Dynadot", "8", "EUR", "9.6", "USD"}
	for i := range want {
		if lines[1][i] != want[i] {
			t.Errorf("column %s: expected %q, got %q", csvHeader[i], want[i], lines[1][i])
		}
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatHTML, sampleReport(t), Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatalf("invalid HTML: %v", err)
	}
	if n := doc.Find("tbody tr").Length(); n != 4 {
		t.Errorf("Expected 4 rows, got %d", n)
	}
	first := doc.Find("tbody tr").First()
	if got := first.Find("strong").Text(); got != "Dynadot" {
		t.Errorf("Expected cheapest source in bold, got %q", got)
	}
	if got := doc.Find("li").Text(); !strings.Contains(got, "OVH") {
		t.Errorf("Expected skipped source listed, got %q", got)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, sampleReport(t), Options{TLDs: []string{".com"}}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Domain prices in EUR", "|", "Dynadot", "8.00 EUR", "Gandi", "OVH"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected markdown to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "<td>") {
		t.Error("Expected HTML table to be converted")
	}
	if strings.Contains(out, ".xyz") {
		t.Error("Expected .xyz to be filtered out")
	}
}

func TestWrite_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, Report{}, Options{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No prices found") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}
