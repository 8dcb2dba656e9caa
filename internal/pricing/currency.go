package pricing

import (
	"math"
	"strconv"
	"strings"
)

const CurrencySymbol = "GH₵"

// FormatCurrency renders an amount as cedis with two fraction digits and
// thousands separators, e.g. GH₵1,234.50.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if sign != "" && b.String() == "0" && frac == "00" {
		sign = ""
	}
	return sign + CurrencySymbol + b.String() + "." + frac
}
