package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/emontero/bancamail/internal/model"
)

// bankRule is a compiled bank-specific parsing rule. Amount and date
// patterns are required; merchant and description are optional extras.
type bankRule struct {
	amount      *regexp.Regexp
	date        *regexp.Regexp
	merchant    *regexp.Regexp
	description *regexp.Regexp
}

// compileRule compiles a parsing rule's patterns case-insensitively.
func compileRule(rule model.ParsingRule) (*bankRule, error) {
	compile := func(pattern string) (*regexp.Regexp, error) {
		if pattern == "" {
			return nil, nil
		}
		return regexp.Compile("(?i)" + pattern)
	}

	var (
		compiled bankRule
		err      error
	)
	if compiled.amount, err = compile(rule.AmountPattern); err != nil {
		return nil, fmt.Errorf("amount pattern for %s: %w", rule.Bank, err)
	}
	if compiled.amount == nil {
		return nil, fmt.Errorf("rule for %s has no amount pattern", rule.Bank)
	}
	if compiled.date, err = compile(rule.DatePattern); err != nil {
		return nil, fmt.Errorf("date pattern for %s: %w", rule.Bank, err)
	}
	if compiled.date == nil {
		return nil, fmt.Errorf("rule for %s has no date pattern", rule.Bank)
	}
	if compiled.merchant, err = compile(rule.MerchantPattern); err != nil {
		return nil, fmt.Errorf("merchant pattern for %s: %w", rule.Bank, err)
	}
	if compiled.description, err = compile(rule.DescriptionPattern); err != nil {
		return nil, fmt.Errorf("description pattern for %s: %w", rule.Bank, err)
	}

	return &compiled, nil
}

// extract applies the rule to a message body. Amount and date must both
// match and parse, otherwise the rule yields nothing: a rule-configured
// bank never partially falls back to the generic strategy.
func (r *bankRule) extract(rec model.EmailRecord) []model.Candidate {
	body := rec.Body

	amountText, full, ok := firstMatch(r.amount, body)
	if !ok {
		return nil
	}
	amount, ok := ParseAmount(amountText)
	if !ok {
		return nil
	}

	dateText, _, ok := firstMatch(r.date, body)
	if !ok {
		return nil
	}
	date, ok := ParseDate(dateText)
	if !ok {
		return nil
	}

	cand := model.Candidate{
		Amount:   amount,
		Currency: currencyHint(full),
		Date:     date,
	}

	if r.merchant != nil {
		if m, _, ok := firstMatch(r.merchant, body); ok {
			cand.Merchant = strings.TrimSpace(m)
		}
	}
	if r.description != nil {
		if d, _, ok := firstMatch(r.description, body); ok {
			cand.Description = normalizeWhitespace(d, maxDescriptionLen)
		}
	}

	return []model.Candidate{cand}
}

// firstMatch returns the first capture group when the pattern defines
// one, else the whole match, plus the whole match for context.
func firstMatch(re *regexp.Regexp, s string) (value, full string, ok bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", "", false
	}
	if len(m) > 1 && m[1] != "" {
		return m[1], m[0], true
	}
	return m[0], m[0], true
}
