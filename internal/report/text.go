package report

import (
	"fmt"
	"io"

	"github.com/law-makers/cheapreg/internal/ui"
)

// WriteText prints one block per TLD, cheapest entry first and marked.
// Every line shows the converted price followed by the listed one.
func WriteText(w io.Writer, r Report, opts Options) error {
	paint := ui.Painter(opts.Color).Paint

	rows, err := r.Rows(opts)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if _, err := fmt.Fprintln(w, "No prices found."); err != nil {
			return err
		}
	}

	base := ""
	if r.Table != nil {
		base = r.Table.Base()
	}

	width := 0
	for _, row := range rows {
		for _, e := range row.Entries {
			if len(e.Source) > width {
				width = len(e.Source)
			}
		}
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, paint(ui.Bold, row.TLD)); err != nil {
			return err
		}
		for i, e := range row.Entries {
			line := fmt.Sprintf("%-*s %14s", width, e.Source, money(e.Converted, base)) +
				paint(ui.Info, fmt.Sprintf("  (%s)", money(e.Price, e.Currency)))
			marker := "   "
			if i == 0 {
				marker = " * "
				line = paint(ui.Success, line)
			}
			if _, err := fmt.Fprintln(w, marker+line); err != nil {
				return err
			}
		}
	}

	if len(r.Failed) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, paint(ui.Warn, "Skipped sources:")); err != nil {
			return err
		}
		for _, f := range r.Failed {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", f.Source, f.Error); err != nil {
				return err
			}
		}
	}
	return nil
}
