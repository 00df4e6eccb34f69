package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/cheapreg/internal/registrar"
	"github.com/law-makers/cheapreg/internal/ui"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the supported registrars",
		Long: `Lists every registrar cheapreg knows with the currency its prices are
quoted in and the listing URL that will be fetched. URLs overridden in the
config file are shown as configured. Registrars marked js fill their listing
client side and benefit from --render browser.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := GetAppFromCmd(cmd)
			if a == nil {
				return fmt.Errorf("application not initialized")
			}
			urls := a.Config.KindURLs()
			w := cmd.OutOrStdout()
			paint := ui.Painter(!a.Config.NoColor && isTerminal(w)).Paint

			for _, k := range registrar.Kinds() {
				d, _ := registrar.Lookup(k)
				if u := urls[k]; u != "" {
					d.URL = u
				}
				method := d.Method
				if d.Dynamic {
					method += "/js"
				}

				fmt.Fprintf(w, "%s %-14s %s  %-7s %s\n",
					paint(ui.Bold, fmt.Sprintf("%-14s", k)), d.Name, d.Currency, method, d.URL)
			}
			return nil
		},
	}
}
