package registrar

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/law-makers/cheapreg/internal/errs"
	"github.com/law-makers/cheapreg/pkg/models"
)

func extractDynadot(d Definition, doc *goquery.Document) ([]models.PriceRecord, error) {
	container := doc.Find("div#St_Data_Info").First()
	if container.Length() == 0 {
		return nil, missing(d, "div#St_Data_Info")
	}

	var records []models.PriceRecord
	var err error
	container.Find("p.tld-content").EachWithBreak(func(i int, row *goquery.Selection) bool {
		link := row.Find("a").First()
		price := row.Find("span.span-register-price").First()
		if link.Length() == 0 || price.Length() == 0 {
			err = errs.Extraction(d.Name, "row %d: missing TLD link or register price", i)
			return false
		}

		var rec models.PriceRecord
		rec, err = d.record(link.Text(), price.Text())
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
