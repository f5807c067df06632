package quote

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatPrice renders an amount for display: two decimals, Spanish locale.
// Stored amounts are never rounded; only this output is.
func FormatPrice(v float64) string {
	return message.NewPrinter(language.Spanish).Sprintf("%.2f €", v)
}
