package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/law-makers/cheapreg/internal/errs"
)

const gandiListing = `<table class="gtable"><tr id="com"><td>.com</td><td><div>10,00 € HT</div></td></tr>
<tr id="fr"><td>.fr</td><td><div>7,00 € HT</div></td></tr></table>`

const dynadotListing = `<div id="St_Data_Info"><p class="tld-content"><a>.com</a><span class="span-register-price">$9.60</span></p></div>`

type fixture struct {
	srv    *httptest.Server
	config string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv("CI", "1")
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	mux := http.NewServeMux()
	mux.HandleFunc("/gandi", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, gandiListing)
	})
	mux.HandleFunc("/dynadot", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, dynadotListing)
	})
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"base":"EUR","rates":{"USD":1.20,"CHF":0.95}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := "rates_url: " + srv.URL + "/latest\n" +
		"source_urls:\n" +
		"  gandi: " + srv.URL + "/gandi\n" +
		"  dynadot: " + srv.URL + "/dynadot\n" +
		"  ovh: " + srv.URL + "/missing\n"
	path := filepath.Join(t.TempDir(), "cheapreg.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return fixture{srv: srv, config: path}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	err := run(context.Background(), cmd, args, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestCompareCommand_Text(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "", "--config", f.config, "-s", "gandi,dynadot")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	for _, want := range []string{".com", " * Dynadot", "8.00 EUR", "(9.60 USD)", ".fr", "7.00 EUR"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestCompareCommand_SkipsFailedSource(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "", "--config", f.config, "-s", "gandi,ovh", "--tld", "com")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !strings.Contains(out, "Skipped sources:") || !strings.Contains(out, "OVH") {
		t.Errorf("Expected OVH in skipped sources\n%s", out)
	}
	if strings.Contains(out, ".fr") {
		t.Errorf("Expected .fr to be filtered out\n%s", out)
	}
}

func TestCompareCommand_Strict(t *testing.T) {
	f := newFixture(t)

	_, stderr, err := execute(t, "", "--config", f.config, "-s", "gandi,ovh", "--strict")
	if err == nil {
		t.Fatal("Expected strict run to fail")
	}
	if !strings.Contains(stderr, "Error:") || !strings.Contains(stderr, "404") {
		t.Errorf("Expected error with status on stderr, got %q", stderr)
	}
}

func TestCompareCommand_JSONFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "prices.json")

	_, _, err := execute(t, "", "--config", f.config, "-s", "gandi,dynadot", "-f", "json", "-o", path, "--top", "1")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var got struct {
		Base string `json:"base"`
		TLDs []struct {
			TLD      string            `json:"tld"`
			Cheapest string            `json:"cheapest"`
			Entries  []json.RawMessage `json:"entries"`
		} `json:"tlds"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Base != "EUR" || len(got.TLDs) != 2 {
		t.Fatalf("unexpected report: %s", data)
	}
	if got.TLDs[0].Cheapest != "Dynadot" || len(got.TLDs[0].Entries) != 1 {
		t.Errorf("unexpected .com block: %+v", got.TLDs[0])
	}
}

func TestCompareCommand_InvalidSource(t *testing.T) {
	_, stderr, err := execute(t, "", "-s", "namecheap")
	if err == nil {
		t.Fatal("Expected error for unknown registrar")
	}
	if !strings.Contains(stderr, "namecheap") {
		t.Errorf("Expected registrar name in error, got %q", stderr)
	}
}

func TestCompareCommand_UnknownTLD(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "prices.csv")

	out, stderr, err := execute(t, "", "--config", f.config, "-s", "gandi,dynadot", "--tld", ".doesnotexist", "-f", "csv", "-o", path)
	if !errors.Is(err, errs.ErrKeyNotFound) {
		t.Fatalf("Expected ErrKeyNotFound, got %v", err)
	}
	if !strings.Contains(stderr, ".doesnotexist") {
		t.Errorf("Expected the missing TLD on stderr, got %q", stderr)
	}
	if strings.Contains(out, "No prices found") {
		t.Errorf("Expected no report, got %q", out)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no output file, stat returned %v", err)
	}
}

func TestCompareCommand_SkippedStatusInJSON(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "", "--config", f.config, "-s", "gandi,ovh", "-f", "json")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	var got struct {
		Failed []struct {
			Source string `json:"source"`
			Status int    `json:"status"`
		} `json:"failed"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(got.Failed) != 1 || got.Failed[0].Source != "OVH" || got.Failed[0].Status != http.StatusNotFound {
		t.Errorf("Expected OVH skipped with status 404, got %+v", got.Failed)
	}
}

func TestNewProgressBar(t *testing.T) {
	bar := newProgressBar(io.Discard, 2)
	if got := bar.GetMax(); got != 2 {
		t.Errorf("Expected a total of 2, got %d", got)
	}
}

func TestSourcesCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "", "sources", "--config", f.config)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"infomaniak", "dynadot", "gandi", "ovh", "domaincontext", "CHF", "POST", "GET/js", f.srv.URL + "/gandi"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q\n%s", want, out)
		}
	}
}

func TestRatesCommand(t *testing.T) {
	f := newFixture(t)

	out, _, err := execute(t, "", "rates", "USD", "--config", f.config, "-f", "json")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	var got struct {
		Base  string            `json:"base"`
		Rates map[string]string `json:"rates"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Base != "EUR" || got.Rates["USD"] != "1.2" || len(got.Rates) != 1 {
		t.Errorf("unexpected rates: %+v", got)
	}

	out, _, err = execute(t, "", "rates", "--config", f.config)
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"1 EUR =", "1.2 USD", "0.95 CHF"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected every rate in text output, missing %q\n%s", want, out)
		}
	}

	if _, _, err := execute(t, "", "rates", "XYZ", "--config", f.config); err == nil {
		t.Error("Expected error for unknown currency")
	}
}

func TestKeyCommands(t *testing.T) {
	newFixture(t)

	if _, _, err := execute(t, "", "key", "show"); err == nil {
		t.Fatal("Expected error before a key is stored")
	}

	out, _, err := execute(t, "abcdef123456\n", "key", "set")
	if err != nil {
		t.Fatalf("key set failed: %v", err)
	}
	if !strings.Contains(out, "API key saved") {
		t.Errorf("unexpected output %q", out)
	}

	out, _, err = execute(t, "", "key", "show")
	if err != nil {
		t.Fatalf("key show failed: %v", err)
	}
	if strings.TrimSpace(out) != "****3456" {
		t.Errorf("Expected masked key, got %q", out)
	}

	out, _, _ = execute(t, "", "key", "show", "--reveal")
	if strings.TrimSpace(out) != "abcdef123456" {
		t.Errorf("Expected clear key, got %q", out)
	}

	if _, _, err := execute(t, "", "key", "delete"); err != nil {
		t.Fatalf("key delete failed: %v", err)
	}
	if _, _, err := execute(t, "", "key", "delete"); err == nil {
		t.Error("Expected error deleting a missing key")
	}
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"CHEAPREG", "Usage", "Examples", "Commands", "sources", "--strict"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected help to contain %q", want)
		}
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four\n\n- item", 9)
	want := "one two\nthree\nfour\n\n- item"
	if got != want {
		t.Errorf("wrapText = %q, want %q", got, want)
	}
}
