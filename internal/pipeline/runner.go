package pipeline

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/emontero/bancamail/internal/model"
)

// AccountResult pairs one account with its run outcome.
type AccountResult struct {
	Account string
	Summary *RunSummary
	Err     error
}

// Runner executes ingestion for multiple accounts concurrently. Each
// account is an independent pipeline invocation with its own mailbox
// connection and no shared mutable state; the only cross-invocation
// synchronization is the idempotency ledger's unique constraint.
type Runner struct {
	ingestor *Ingestor
	log      zerolog.Logger
}

// NewRunner creates a runner over the given ingestor.
func NewRunner(ingestor *Ingestor, log zerolog.Logger) *Runner {
	return &Runner{ingestor: ingestor, log: log}
}

// RunAll processes every active account and returns one result per
// account in input order. Inactive accounts are skipped.
func (r *Runner) RunAll(ctx context.Context, accounts []model.MailAccount) []AccountResult {
	active := make([]model.MailAccount, 0, len(accounts))
	for _, account := range accounts {
		if account.Active {
			active = append(active, account)
		}
	}

	results := make([]AccountResult, len(active))
	var wg sync.WaitGroup

	for i, account := range active {
		wg.Add(1)
		go func(i int, account model.MailAccount) {
			defer wg.Done()

			summary, err := r.ingestor.Run(ctx, account)
			if err != nil {
				r.log.Error().
					Str("account", account.Email).
					Err(err).
					Msg("ingestion run aborted")
			}
			results[i] = AccountResult{
				Account: account.Email,
				Summary: summary,
				Err:     err,
			}
		}(i, account)
	}

	wg.Wait()
	return results
}
