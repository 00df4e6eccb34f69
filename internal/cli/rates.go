package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/cheapreg/internal/currency"
)

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates [CODE...]",
		Short: "Print the exchange rates used for conversion",
		Long: `Fetches the exchange rates for the base currency once and prints how many
units of each currency one base unit buys. Pass currency codes to limit the
output.`,
		Example: `  # Every rate against the euro
  cheapreg rates

  # Dollar and franc against the euro, as JSON
  cheapreg rates USD CHF --format json`,
		RunE: runRates,
	}
	cmd.Flags().StringP("format", "f", "text", "Output format: text or json")
	return cmd
}

func runRates(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	conv, err := a.Converter(cmd.Context())
	if err != nil {
		return err
	}

	rates := conv.Rates()
	codes := conv.Codes()
	if len(args) > 0 {
		rates = make(currency.Rates, len(args))
		codes = codes[:0]
		for _, arg := range args {
			code := strings.ToUpper(strings.TrimSpace(arg))
			rate, err := conv.Rate(code)
			if err != nil {
				return err
			}
			if _, dup := rates[code]; !dup {
				codes = append(codes, code)
			}
			rates[code] = rate
		}
	}

	w := cmd.OutOrStdout()
	switch a.Config.Format {
	case "json":
		out := struct {
			Base  string            `json:"base"`
			Rates map[string]string `json:"rates"`
		}{Base: conv.Base(), Rates: make(map[string]string, len(codes))}
		for _, code := range codes {
			out.Rates[code] = rates[code].String()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "text", "":
		fmt.Fprintf(w, "1 %s =\n", conv.Base())
		for _, code := range codes {
			fmt.Fprintf(w, "  %s %s\n", rates[code].String(), code)
		}
		return nil
	default:
		return fmt.Errorf("rates supports text or json output, got %q", a.Config.Format)
	}
}
