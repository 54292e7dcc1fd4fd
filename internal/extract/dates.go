package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// spanishMonths maps Spanish month names (full and abbreviated,
// including the Costa Rican "setiembre") to their English equivalents,
// so a single layout table covers both languages.
var spanishMonths = map[string]string{
	"enero":      "January",
	"febrero":    "February",
	"marzo":      "March",
	"abril":      "April",
	"mayo":       "May",
	"junio":      "June",
	"julio":      "July",
	"agosto":     "August",
	"septiembre": "September",
	"setiembre":  "September",
	"octubre":    "October",
	"noviembre":  "November",
	"diciembre":  "December",
	"ene":        "Jan",
	"abr":        "Apr",
	"ago":        "Aug",
	"sep":        "Sep",
	"set":        "Sep",
	"oct":        "Oct",
	"nov":        "Nov",
	"dic":        "Dec",
}

// Full names before abbreviations so "marzo" is not eaten by "mar".
var spanishMonthPattern = regexp.MustCompile(
	`(?i)\b(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre|ene|abr|ago|sep|set|oct|nov|dic)\b`,
)

// dateLayouts is the ordered list of accepted date formats. Parsing
// walks the list and short-circuits on the first success.
var dateLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2 de January de 2006",
	"2 January 2006",
	"Jan 2, 2006, 15:04",
	"Jan 2, 2006",
}

// translateSpanishMonths rewrites Spanish month names to English.
func translateSpanishMonths(s string) string {
	return spanishMonthPattern.ReplaceAllStringFunc(s, func(m string) string {
		if english, ok := spanishMonths[strings.ToLower(m)]; ok {
			return english
		}
		return m
	})
}

// ParseDate parses a date string against the supported format chain,
// falling back to a natural-language parser as a last resort. It
// reports false rather than an error when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	s = translateSpanishMonths(s)

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	if t, err := dateparse.ParseAny(s); err == nil {
		return t, true
	}

	return time.Time{}, false
}
