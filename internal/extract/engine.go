package extract

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/emontero/bancamail/internal/model"
)

// maxExcerptLen bounds the raw-text excerpt attached to candidates.
const maxExcerptLen = 500

// Engine converts an email record into zero or more validated candidate
// transactions. Two mutually exclusive strategies exist: a bank-pattern
// strategy used when an active parsing rule exists for the account's
// bank, and a generic heuristic fallback used otherwise.
type Engine struct {
	ceiling decimal.Decimal
	log     zerolog.Logger
}

// NewEngine creates an extraction engine. ceiling is the upper sanity
// bound; candidates at or above it are rejected as garbled.
func NewEngine(ceiling decimal.Decimal, log zerolog.Logger) *Engine {
	return &Engine{ceiling: ceiling, log: log}
}

// Extract runs the strategy selected by rule presence, then validates,
// deduplicates, and annotates the surviving candidates. A rule that
// exists but fails to match yields nothing; it never hands the email to
// the fallback strategy.
func (e *Engine) Extract(rec model.EmailRecord, rule *model.ParsingRule) []model.Candidate {
	var candidates []model.Candidate

	if rule != nil && rule.Active {
		compiled, err := compileRule(*rule)
		if err != nil {
			e.log.Warn().
				Str("bank", rule.Bank).
				Err(err).
				Msg("parsing rule failed to compile")
			return nil
		}
		candidates = compiled.extract(rec)
	} else {
		candidates = genericExtract(rec)
	}

	return e.finalize(rec, candidates)
}

// finalize rejects implausible amounts, deduplicates on
// (amount, date, description) preserving first-occurrence order, and
// attaches the bounded excerpt and source message id.
func (e *Engine) finalize(rec model.EmailRecord, candidates []model.Candidate) []model.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	excerpt := normalizeWhitespace(rec.Body, maxExcerptLen)
	seen := make(map[string]struct{}, len(candidates))
	out := make([]model.Candidate, 0, len(candidates))

	for _, cand := range candidates {
		if !cand.Amount.IsPositive() || cand.Amount.GreaterThanOrEqual(e.ceiling) {
			continue
		}

		key := cand.Amount.String() + "|" + cand.Date.Format(time.RFC3339) + "|" + cand.Description
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		cand.RawText = excerpt
		cand.MessageID = rec.MessageID
		out = append(out, cand)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
