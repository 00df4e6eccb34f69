package registrar

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
)

func extractOVH(d Definition, doc *goquery.Document) ([]models.PriceRecord, error) {
	body := doc.Find("table#domain-prices > tbody").First()
	if body.Length() == 0 {
		return nil, missing(d, "table#domain-prices > tbody")
	}

	var records []models.PriceRecord
	var err error
	body.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		ext := row.Find("td.extension").First()
		if ext.Length() == 0 {
			// section headers inside the body
			return true
		}
		price := row.Find("td.price-create span.price").First()
		if price.Length() == 0 {
			err = errs.Extraction(d.Name, "row %d: no creation price", i)
			return false
		}

		var rec models.PriceRecord
		rec, err = d.record(ext.Text(), price.Text())
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
