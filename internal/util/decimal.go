package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)`)
	leadingInt    = regexp.MustCompile(`^[+-]?\d+`)
)

// ParseDecimal reads a decimal-comma amount ("3,50") the way the ERP
// exports write it. The first comma is taken as the decimal separator and
// only the leading numeric prefix counts, so "3,50 €" parses as 3.5.
func ParseDecimal(input string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	s = strings.Replace(s, ",", ".", 1)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseLeadingInt reads the integer prefix of a code such as "05" or "21%".
func ParseLeadingInt(input string) (int, bool) {
	m := leadingInt.FindString(strings.TrimSpace(input))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// round2 rounds to cents with ties away from zero, as the ERP and the
// spreadsheets do (15,125 -> 15,13). FormatFloat alone rounds ties to even.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatComma2 renders v with exactly two fraction digits and a decimal
// comma, without grouping: 12.1 -> "12,10".
func FormatComma2(v float64) string {
	return strings.Replace(strconv.FormatFloat(round2(v), 'f', 2, 64), ".", ",", 1)
}

// FormatSpanish renders v the es-ES way with two fraction digits: a
// decimal comma and "." thousands grouping, which es-ES only applies from
// five integer digits up (1234,50 but 12.345,00).
func FormatSpanish(v float64) string {
	raw := strconv.FormatFloat(round2(v), 'f', 2, 64)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")
	intPart, frac, _ := strings.Cut(raw, ".")

	if len(intPart) > 4 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart + "," + frac
	if neg && strings.Trim(out, "0,.") != "" {
		out = "-" + out
	}
	return out
}
