package bank

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount reads "1.234,56" when decimalComma is set and "1,234.56"
// otherwise. Spaces, including the narrow no-break space some banks use as a
// thousands separator, are ignored.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}

		return r
	}, s)

	if decimalComma {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	} else {
		clean = strings.ReplaceAll(clean, ",", "")
	}

	return decimal.NewFromString(clean)
}
