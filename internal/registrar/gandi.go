package registrar

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
)

// extractGandi walks every price table. Only rows carrying an id are TLD rows,
// the id being the TLD without its dot.
func extractGandi(d Definition, doc *goquery.Document) ([]models.PriceRecord, error) {
	tables := doc.Find("table.gtable")
	if tables.Length() == 0 {
		return nil, missing(d, "table.gtable")
	}

	var records []models.PriceRecord
	var err error
	tables.Find("tr[id]").EachWithBreak(func(i int, row *goquery.Selection) bool {
		id, _ := row.Attr("id")
		cells := row.Find("td")
		if cells.Length() < 2 {
			err = errs.Extraction(d.Name, "row %q: expected at least 2 cells, got %d", id, cells.Length())
			return false
		}

		div := cells.Eq(1).Find("div").First()
		if div.Length() == 0 {
			err = errs.Extraction(d.Name, "row %q: no price div", id)
			return false
		}
		fields := strings.Fields(div.Text())
		if len(fields) == 0 {
			err = errs.Extraction(d.Name, "row %q: empty price", id)
			return false
		}

		var rec models.PriceRecord
		rec, err = d.record(id, fields[0])
		if err != nil {
			return false
		}
		records = append(records, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
