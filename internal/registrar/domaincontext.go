package registrar

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
)

func extractDomainContext(d Definition, doc *goquery.Document) ([]models.PriceRecord, error) {
	body := doc.Find("div.tld-pricing table > tbody").First()
	if body.Length() == 0 {
		return nil, missing(d, "div.tld-pricing table > tbody")
	}

	var records []models.PriceRecord
	var err error
	body.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if cells.Length() < 2 {
			err = errs.Extraction(d.Name, "row %d: expected at least 2 cells, got %d", i, cells.Length())
			return false
		}

		var rec models.PriceRecord
		rec, err = d.record(cells.Eq(0).Text(), cells.Eq(1).Text())
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
