// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/cheapreg/internal/app"
	"github.com/law-makers/cheapreg/internal/config"
	"github.com/law-makers/cheapreg/internal/ui"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "0.1.0"

// rootCmd runs the price comparison when called without a subcommand
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cheapreg",
		Short: "Find the cheapest registrar for each domain extension",
		Long: `cheapreg fetches the public price lists of several domain registrars,
converts every price to one currency and ranks the registrars per TLD.

Registrars that cannot be fetched are skipped with a warning unless --strict is set.`,
		Example: `  # Compare every registrar in euros
  cheapreg

  # Swiss francs, only .ch and .com, three cheapest each
  cheapreg --base CHF --tld .ch,.com --top 3

  # Markdown report from two registrars
  cheapreg -s gandi,ovh -f markdown -o prices.md

  # Render JavaScript listings in headless Chrome
  cheapreg --render browser`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runCompare,
	}

	config.RegisterFlags(cmd)
	config.RegisterCompareFlags(cmd)

	cmd.PersistentPreRunE = setupApp
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a := GetAppFromCmd(cmd); a != nil {
			_ = a.Close(cmd.Context())
		}
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(customHelpFunc)
	cmd.SetUsageFunc(customUsageFunc)

	cmd.AddCommand(newSourcesCmd(), newRatesCmd(), newKeyCmd())
	return cmd
}

// setupApp loads configuration, configures logging and builds the Application.
// Help and version never reach it.
func setupApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	app.SetupLogging(cfg, cmd.ErrOrStderr())
	log.Debug().
		Str("base", cfg.Base).
		Str("user_agent", cfg.UserAgent).
		Msg("Configuration loaded")

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	SetApp(cmd, a)
	return nil
}

// Execute runs the root command and exits with status 1 on failure.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := run(ctx, rootCmd, os.Args[1:], os.Stderr); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) error {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", ui.Error("Error:"), err)
	}
	return err
}
