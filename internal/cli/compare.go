package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/cheapreg/internal/app"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/internal/report"
	"github.com/law-makers/cheapreg/internal/runner"
	"github.com/law-makers/cheapreg/internal/ui"
)

func runCompare(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config

	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	sources, err := a.Sources()
	if err != nil {
		return err
	}

	var progress runner.Progress
	if showProgress(a, cmd.ErrOrStderr()) {
		bar := newProgressBar(cmd.ErrOrStderr(), len(sources))
		defer bar.Finish()
		progress = bar
	}

	outcome, err := a.Compare(cmd.Context(), sources, progress)
	if err != nil {
		return err
	}

	rep := report.Report{
		RunID:       outcome.RunID,
		GeneratedAt: time.Now(),
		Table:       outcome.Table,
	}
	for _, f := range outcome.Failed {
		rep.Failed = append(rep.Failed, report.Failure{
			Source: f.Source.Name,
			Status: errs.StatusCode(f.Err),
			Error:  f.Err.Error(),
		})
	}
	opts := report.Options{Top: cfg.Top, TLDs: cfg.TLDs}

	// Unknown --tld values fail before anything is written
	if _, err := rep.Rows(opts); err != nil {
		return err
	}

	if cfg.Output == "" {
		opts.Color = format == report.FormatText && !cfg.NoColor && isTerminal(cmd.OutOrStdout())
		return report.Write(cmd.OutOrStdout(), format, rep, opts)
	}

	file, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := report.Write(file, format, rep, opts); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	log.Info().Str("file", cfg.Output).Str("format", string(format)).Msg("Report saved")
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Saved %d TLDs to %s\n", ui.Success("✓"), outcome.Table.Len(), cfg.Output)
	return nil
}

// showProgress is true for interactive runs with human readable logs
func showProgress(a *app.Application, w io.Writer) bool {
	return !a.Config.NoProgress && !a.Config.JSONLog && a.Config.LogLevel != "debug" && isTerminal(w)
}

// newProgressBar ticks once per finished source
func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Fetching price lists"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(false),
	)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
