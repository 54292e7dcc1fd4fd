package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// amountSymbolReplacer strips currency symbols and spacing before the
// numeric normalization step.
var amountSymbolReplacer = strings.NewReplacer(
	"₡", "",
	"$", "",
	" ", "",
	" ", "",
)

// ParseAmount normalizes a raw amount string (currency symbols,
// thousands separators, comma or dot decimal marker) and parses it into
// a decimal. It reports false rather than an error for non-numeric
// input.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := amountSymbolReplacer.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Decimal{}, false
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// European style: dot thousands, comma decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// A single comma followed by one or two digits is a decimal
		// marker; anything else is thousands separation.
		digitsAfter := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && digitsAfter <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	return d, true
}

// currencyHint inspects matched amount text for a currency symbol.
// Empty means undetermined; the persister applies the default.
func currencyHint(matched string) string {
	switch {
	case strings.Contains(matched, "₡"):
		return "crc"
	case strings.Contains(matched, "$"):
		return "usd"
	default:
		return ""
	}
}
