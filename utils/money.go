package utils

import (
	"fmt"
	"strings"

	"vorve-checkout-api/models"
)

// FormatMinorUnits renders a minor-unit amount in major units with two
// decimals: 299700 becomes "2997.00".
func FormatMinorUnits(amount models.MinorUnits) string {
	v := int64(amount)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// CurrencySymbol returns the display prefix for a currency code. Unknown
// codes are rendered as "CODE " so the amount stays unambiguous.
func CurrencySymbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(code) + " "
	}
}
