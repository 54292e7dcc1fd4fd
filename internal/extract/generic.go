package extract

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/emontero/bancamail/internal/model"
)

// Amount patterns in priority order: colón amounts, dollar amounts,
// bare decimals. The bare pattern requires a decimal part so plain
// integers (card digits, reference numbers) do not match.
var (
	colonAmountPattern  = regexp.MustCompile(`₡\s*([0-9][0-9.,]*[0-9]|[0-9])`)
	dollarAmountPattern = regexp.MustCompile(`\$\s*([0-9][0-9.,]*[0-9]|[0-9])`)
	bareAmountPattern   = regexp.MustCompile(`\b[0-9]{1,3}(?:,[0-9]{3})*\.[0-9]{2}\b`)
)

// genericDatePattern finds date-like substrings covering the supported
// numeric and month-name formats.
var genericDatePattern = regexp.MustCompile(
	`(?i)\b(\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2}|` +
		`\d{1,2}\s+de\s+[a-záéíóúñ]+\s+de\s+\d{4}|\d{1,2}\s+[a-záéíóúñ]+\s+\d{4}|` +
		`[a-záéíóúñ]{3,10}\.?\s+\d{1,2},\s*\d{4})\b`,
)

// Merchant heuristics in priority order: Spanish transaction labels,
// English "at X on/for" phrasing, then a leading all-caps line.
var (
	merchantLabelPattern = regexp.MustCompile(`(?i)(?:comercio|establecimiento)\s*:?\s*([^\r\n]+)`)
	merchantAtPattern    = regexp.MustCompile(`\bat\s+([A-Z0-9][A-Za-z0-9 .&'-]*?)\s+(?:on|for)\b`)
)

const (
	maxDescriptionLen = 200
	descriptionWindow = 100
)

// amountMatch is one located amount occurrence in a body.
type amountMatch struct {
	value      decimal.Decimal
	currency   string
	start, end int
}

// genericExtract is the fallback strategy for banks with no active
// parsing rule. Every amount occurrence spawns an independent
// candidate, so itemized notices produce multiple transactions from one
// email. This intentionally also accepts a stated total alongside its
// items; only exact (amount, date, description) duplicates collapse
// later.
func genericExtract(rec model.EmailRecord) []model.Candidate {
	body := rec.Body
	matches := findAmounts(body)
	if len(matches) == 0 {
		return nil
	}

	dates := findDates(body)
	merchant := findMerchant(body)

	candidates := make([]model.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, model.Candidate{
			Amount:      m.value,
			Currency:    m.currency,
			Date:        nearestDate(dates, m.start, rec.Date),
			Merchant:    merchant,
			Description: describeWindow(body, m.start, m.end),
		})
	}

	return candidates
}

// findAmounts scans the body with each pattern in priority order,
// skipping spans already claimed by a higher-priority pattern so the
// bare-decimal pattern does not re-match the digits of a symbol match.
func findAmounts(body string) []amountMatch {
	var matches []amountMatch
	var taken [][2]int

	scan := func(re *regexp.Regexp, currency string) {
		for _, loc := range re.FindAllStringSubmatchIndex(body, -1) {
			start, end := loc[0], loc[1]
			if overlapsAny(taken, start, end) {
				continue
			}

			rawStart, rawEnd := start, end
			if len(loc) > 3 && loc[2] >= 0 {
				rawStart, rawEnd = loc[2], loc[3]
			}

			value, ok := ParseAmount(body[rawStart:rawEnd])
			if !ok {
				continue
			}

			taken = append(taken, [2]int{start, end})
			matches = append(matches, amountMatch{
				value:    value,
				currency: currency,
				start:    start,
				end:      end,
			})
		}
	}

	scan(colonAmountPattern, "crc")
	scan(dollarAmountPattern, "usd")
	scan(bareAmountPattern, "")

	return matches
}

func overlapsAny(taken [][2]int, start, end int) bool {
	for _, span := range taken {
		if start < span[1] && end > span[0] {
			return true
		}
	}
	return false
}

// datedSpan is a parsed date with its position in the body.
type datedSpan struct {
	date time.Time
	pos  int
}

// findDates locates and parses every date-like substring in the body.
func findDates(body string) []datedSpan {
	var spans []datedSpan
	for _, loc := range genericDatePattern.FindAllStringIndex(body, -1) {
		if d, ok := ParseDate(body[loc[0]:loc[1]]); ok {
			spans = append(spans, datedSpan{date: d, pos: loc[0]})
		}
	}
	return spans
}

// nearestDate picks the parsed date closest to the amount match,
// falling back to the email's own timestamp, then to the current date.
func nearestDate(dates []datedSpan, pos int, emailDate time.Time) time.Time {
	var (
		best     time.Time
		bestDist = -1
	)
	for _, span := range dates {
		dist := span.pos - pos
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = span.date
			bestDist = dist
		}
	}
	if bestDist >= 0 {
		return best
	}
	if !emailDate.IsZero() {
		return emailDate
	}
	return time.Now()
}

// findMerchant resolves the merchant name via the ordered heuristics.
func findMerchant(body string) string {
	if m := merchantLabelPattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := merchantAtPattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return leadingAllCapsLine(body)
}

// leadingAllCapsLine returns the first line that is entirely upper-case
// and contains at least one letter, a common header style in bank
// notification templates.
func leadingAllCapsLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 3 || len(line) > 60 {
			continue
		}
		if line != strings.ToUpper(line) {
			continue
		}
		if strings.IndexFunc(line, func(r rune) bool {
			return r >= 'A' && r <= 'Z'
		}) < 0 {
			continue
		}
		return line
	}
	return ""
}

// describeWindow returns a whitespace-normalized, length-capped window
// of text surrounding an amount match.
func describeWindow(body string, start, end int) string {
	lo := start - descriptionWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + descriptionWindow
	if hi > len(body) {
		hi = len(body)
	}
	return normalizeWhitespace(body[lo:hi], maxDescriptionLen)
}

// normalizeWhitespace collapses whitespace runs and caps the length,
// backing off to a rune boundary so the cut never splits a character.
func normalizeWhitespace(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
