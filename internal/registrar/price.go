package registrar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numberPattern matches "1 234,56", "1'234.00", "1,234.56", "8,99", "$12.99" and similar
var numberPattern = regexp.MustCompile(`\d{1,3}(?:[ \x{00a0}\x{202f}'\x{2019}]\d{3})+(?:[.,]\d+)?|\d[\d.,]*`)

var groupSeparators = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "", "\u2019", "")

// ParsePrice reads the amount in a price cell. Both comma and dot are accepted
// as decimal separator; the other one is treated as a thousands separator, as
// is a lone comma followed by exactly three digits. Spaces and apostrophes
// group thousands. A cell with more than one number is rejected.
func ParsePrice(text string) (decimal.Decimal, error) {
	matches := numberPattern.FindAllString(text, -1)
	switch len(matches) {
	case 0:
		return decimal.Zero, fmt.Errorf("no number in %q", strings.TrimSpace(text))
	case 1:
	default:
		return decimal.Zero, fmt.Errorf("ambiguous price %q: %d numbers", strings.TrimSpace(text), len(matches))
	}
	match := matches[0]

	s := groupSeparators.Replace(match)
	s = strings.TrimRight(s, ".,")

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", match, err)
	}
	return d, nil
}

// NormalizeTLD lower-cases a TLD and makes sure it starts with a dot.
// Returns "" for blank input.
func NormalizeTLD(text string) string {
	tld := strings.ToLower(strings.Join(strings.Fields(text), ""))
	tld = strings.TrimLeft(tld, ".")
	if tld == "" {
		return ""
	}
	return "." + tld
}
