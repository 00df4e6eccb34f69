package config

import (
	"strings"

	"github.com/law-makers/cheapreg/internal/report"
	headerutil "github.com/law-makers/cheapreg/internal/utils/headers"
	"github.com/spf13/cobra"
)

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("proxy", "", "HTTP/SOCKS5 proxy, comma separated list rotates (e.g., http://localhost:8080)")
	cmd.PersistentFlags().String("timeout", DefaultHTTPTimeout.String(), "Timeout for each request")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().StringArrayP("header", "H", nil, "Extra request header \"Key: Value\" (repeatable)")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (optional)")
	cmd.PersistentFlags().String("base", DefaultBase, "Currency all prices are converted to")
	cmd.PersistentFlags().String("rates-url", DefaultRatesURL, "Exchange rate service endpoint")
	cmd.PersistentFlags().String("rates-file", "", "Read exchange rates from a JSON file instead of the rate service")
}

// RegisterCompareFlags registers the flags of the comparison run
func RegisterCompareFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.Flags().StringSliceP("source", "s", nil, "Registrars to query (default all)")
	cmd.Flags().Bool("strict", false, "Abort when any registrar fails instead of skipping it")
	cmd.Flags().IntP("concurrency", "c", 0, "Registrars fetched at once (default one per registrar, max 8)")
	cmd.Flags().String("render", DefaultRender, "How JavaScript listings are fetched: static or browser")
	cmd.Flags().String("chrome-path", "", "Chrome/Chromium executable for --render browser")
	cmd.Flags().Bool("headful", false, "Show the browser window with --render browser")
	cmd.Flags().Float64("rps", DefaultRateLimitRPS, "Requests per second per registrar host")
	cmd.Flags().Int("burst", DefaultRateLimitBurst, "Request burst per registrar host")
	cmd.Flags().StringP("format", "f", DefaultFormat, "Output format: "+formatNames())
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().IntP("top", "n", 0, "Show only the N cheapest registrars per TLD")
	cmd.Flags().StringSlice("tld", nil, "Only report these TLDs (e.g., .com,.ch)")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().Bool("no-progress", false, "Hide the progress bar")
}

func parseHeaderFlags(h []string) (map[string]string, error) {
	return headerutil.ParseStrict(h)
}

func formatNames() string {
	formats := report.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
