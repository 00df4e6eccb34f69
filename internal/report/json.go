package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/law-makers/cheapreg/pkg/models"
)

type jsonTLD struct {
	TLD      string         `json:"tld"`
	Cheapest string         `json:"cheapest"`
	Entries  []models.Entry `json:"entries"`
}

type jsonReport struct {
	RunID       string    `json:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Base        string    `json:"base"`
	TLDs        []jsonTLD `json:"tlds"`
	Failed      []Failure `json:"failed,omitempty"`
}

// WriteJSON writes the report as an indented JSON document. Prices are strings
// so they keep their exact decimal value.
func WriteJSON(w io.Writer, r Report, opts Options) error {
	rows, err := r.Rows(opts)
	if err != nil {
		return err
	}
	out := jsonReport{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt,
		TLDs:        []jsonTLD{},
		Failed:      r.Failed,
	}
	if r.Table != nil {
		out.Base = r.Table.Base()
	}
	for _, row := range rows {
		out.TLDs = append(out.TLDs, jsonTLD{
			TLD:      row.TLD,
			Cheapest: row.Entries[0].Source,
			Entries:  row.Entries,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
