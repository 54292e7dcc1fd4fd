package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emontero/bancamail/internal/extract"
	"github.com/emontero/bancamail/internal/model"
	"github.com/emontero/bancamail/internal/store"
)

// MessageSource retrieves parsed notification messages for an account
// and date window. The mailbox client implements it; tests substitute
// fakes.
type MessageSource interface {
	Messages(
		ctx context.Context,
		account model.MailAccount,
		since time.Time,
		until *time.Time,
	) ([]model.EmailRecord, error)
}

// RuleSource looks up the active parsing rule for a bank.
type RuleSource interface {
	ActiveRuleForBank(ctx context.Context, bank string) (*model.ParsingRule, error)
}

// TransactionSink atomically persists one email's candidates.
type TransactionSink interface {
	SaveTransactions(
		ctx context.Context,
		account model.MailAccount,
		rec model.EmailRecord,
		candidates []model.Candidate,
	) (store.PersistResult, error)
}

// EmailResult reports the outcome for a single email in a run.
type EmailResult struct {
	MessageID string
	Created   int
	Skipped   bool
	Err       error
}

// RunSummary aggregates one account's ingestion run. Fatal errors
// (connection, authentication) abort the run instead and are returned
// from Run; everything in here is per-email outcomes and non-fatal
// warnings.
type RunSummary struct {
	Account  string
	Fetched  int
	Created  int
	Skipped  int
	Failed   int
	Results  []EmailResult
	Warnings []string
}

// Ingestor drives the pipeline for one account: fetch messages,
// extract candidates, persist transactions.
type Ingestor struct {
	source       MessageSource
	rules        RuleSource
	engine       *extract.Engine
	sink         TransactionSink
	lookbackDays int
	log          zerolog.Logger
}

// NewIngestor composes an ingestor. lookbackDays sets the default
// search window for Run; values below 1 fall back to 30.
func NewIngestor(
	source MessageSource,
	rules RuleSource,
	engine *extract.Engine,
	sink TransactionSink,
	lookbackDays int,
	log zerolog.Logger,
) *Ingestor {
	if lookbackDays < 1 {
		lookbackDays = 30
	}
	return &Ingestor{
		source:       source,
		rules:        rules,
		engine:       engine,
		sink:         sink,
		lookbackDays: lookbackDays,
		log:          log,
	}
}

// Run ingests the account's default lookback window.
func (in *Ingestor) Run(ctx context.Context, account model.MailAccount) (*RunSummary, error) {
	since := time.Now().AddDate(0, 0, -in.lookbackDays)
	return in.RunWindow(ctx, account, since, nil)
}

// RunWindow ingests one account over an explicit date window.
// Processing is strictly sequential: the mailbox connection is stateful
// and exclusively owned by this invocation. Per-email persistence
// failures are recorded in the summary and do not stop the run.
func (in *Ingestor) RunWindow(
	ctx context.Context,
	account model.MailAccount,
	since time.Time,
	until *time.Time,
) (*RunSummary, error) {
	summary := &RunSummary{Account: account.Email}

	records, err := in.source.Messages(ctx, account, since, until)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(records)

	rule, err := in.rules.ActiveRuleForBank(ctx, account.Bank)
	if err != nil {
		return nil, fmt.Errorf("loading parsing rule for %s: %w", account.Bank, err)
	}

	for _, rec := range records {
		result := EmailResult{MessageID: rec.MessageID}

		candidates := in.engine.Extract(rec, rule)
		if len(candidates) == 0 {
			result.Skipped = true
			summary.Skipped++
			summary.Results = append(summary.Results, result)
			continue
		}

		persisted, err := in.sink.SaveTransactions(ctx, account, rec, candidates)
		if err != nil {
			result.Err = err
			summary.Failed++
			summary.Warnings = append(summary.Warnings,
				fmt.Sprintf("email %s: %v", rec.MessageID, err))
			in.log.Warn().
				Str("account", account.Email).
				Str("message_id", rec.MessageID).
				Err(err).
				Msg("persisting transactions failed")
		} else {
			result.Created = persisted.Created
			summary.Created += persisted.Created
			if persisted.Skipped {
				result.Skipped = true
				summary.Skipped++
			}
		}

		summary.Results = append(summary.Results, result)
	}

	in.log.Info().
		Str("account", account.Email).
		Int("fetched", summary.Fetched).
		Int("created", summary.Created).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("ingestion run finished")

	return summary, nil
}
