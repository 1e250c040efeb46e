package analytics

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var half = decimal.NewFromFloat(0.5)

// FormatNumber renders an integer with comma thousands separators ("1,234").
func FormatNumber(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatDecimal renders a decimal value with its integer part grouped
// ("1,234.5"). The fractional part is printed with the shortest exact form.
func FormatDecimal(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// Too large for int64 grouping; fall back to the raw form.
		return sign + s
	}

	out := sign + FormatNumber(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// RoundTo rounds v half-up to dp decimal places. The arithmetic is done in
// decimal so inputs like 1.005 round to 1.01 rather than losing to binary error.
func RoundTo(v decimal.Decimal, dp int32) decimal.Decimal {
	return v.Shift(dp).Add(half).Floor().Shift(-dp)
}
