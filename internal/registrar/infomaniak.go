package registrar

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
)

// extractInfomaniak reads the "all prices" table. The promotional price, when
// shown, sits in span.promo-alt next to the regular one.
func extractInfomaniak(d Definition, doc *goquery.Document) ([]models.PriceRecord, error) {
	body := doc.Find("table#result_domains").First().Find("tbody").First()
	if body.Length() == 0 {
		return nil, missing(d, "table#result_domains > tbody")
	}

	var records []models.PriceRecord
	var err error
	body.Find("tr.results.prices").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 3 {
			err = errs.Extraction(d.Name, "row %d: expected at least 3 cells, got %d", i, cells.Length())
			return false
		}

		priceCell := cells.Eq(2)
		price := priceCell.Find("span.promo-alt").First()
		if price.Length() == 0 {
			price = priceCell.Find("span").First()
		}
		if price.Length() == 0 {
			err = errs.Extraction(d.Name, "row %d: no price span", i)
			return false
		}

		var rec models.PriceRecord
		rec, err = d.record(cells.Eq(1).Text(), price.Text())
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
