package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"tld", "rank", "source", "converted", "base", "price", "currency"}

// WriteCSV writes one line per entry. Skipped sources are not part of the CSV.
func WriteCSV(w io.Writer, r Report, opts Options) error {
	rows, err := r.Rows(opts)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	base := ""
	if r.Table != nil {
		base = r.Table.Base()
	}
	for _, row := range rows {
		for i, e := range row.Entries {
			record := []string{
				row.TLD,
				strconv.Itoa(i + 1),
				e.Source,
				e.Converted.String(),
				base,
				e.Price.String(),
				e.Currency,
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
