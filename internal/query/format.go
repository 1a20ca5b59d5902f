package query

import (
	"regexp"
	"strings"

	"tarifario/internal/util"
)

// Placeholder stands in for a missing or unreadable price.
const Placeholder = "-"

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// FormatCurrency renders a stored price string as es-ES currency, e.g.
// "3,5" -> "3,50€" and "12345" -> "12.345,00€". Empty or unreadable input
// yields Placeholder.
func FormatCurrency(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return Placeholder
	}
	cleaned := nonNumeric.ReplaceAllString(strings.Replace(raw, ",", ".", 1), "")
	v, ok := util.ParseDecimal(cleaned)
	if !ok {
		return Placeholder
	}
	return util.FormatSpanish(v) + "€"
}
