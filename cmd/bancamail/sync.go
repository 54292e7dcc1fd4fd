package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/emontero/bancamail/internal/credential"
	"github.com/emontero/bancamail/internal/extract"
	"github.com/emontero/bancamail/internal/mailbox"
	"github.com/emontero/bancamail/internal/model"
	"github.com/emontero/bancamail/internal/pipeline"
	"github.com/emontero/bancamail/internal/store"
)

var syncAccount string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch notification emails and extract expenses",
	Long: "Sync runs the ingestion pipeline for every active account\n" +
		"(or one account with --account): search the mailbox, extract\n" +
		"candidate transactions, and persist them exactly once.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ceiling, err := decimal.NewFromString(cfg.AmountCeiling)
		if err != nil {
			return fmt.Errorf("invalid amount_ceiling %q: %w", cfg.AmountCeiling, err)
		}

		accounts, err := configuredAccounts(cmd)
		if err != nil {
			return err
		}
		if syncAccount != "" {
			filtered := accounts[:0]
			for _, account := range accounts {
				if account.Email == syncAccount {
					filtered = append(filtered, account)
				}
			}
			accounts = filtered
		}
		if len(accounts) == 0 {
			return fmt.Errorf("no accounts to sync — add accounts to the config file")
		}

		manager := mailbox.NewManager(credential.KeyringProvider{}, log)
		builder := mailbox.NewBuilder(model.KnownTransactionSenders, model.TransactionKeywords)
		fetcher := mailbox.NewFetcher(log, cfg.Search.ResultLimit)
		client := mailbox.NewClient(manager, builder, fetcher)

		engine := extract.NewEngine(ceiling, log)
		persister := store.NewPersister(db, cfg.DefaultCurrency, ceiling, nil, log)

		ingestor := pipeline.NewIngestor(
			client, db, engine, persister, cfg.Search.LookbackDays, log,
		)
		runner := pipeline.NewRunner(ingestor, log)

		results := runner.RunAll(cmd.Context(), accounts)

		var failed int
		for _, res := range results {
			if res.Err != nil {
				failed++
				fmt.Printf("%s: run aborted: %v\n", res.Account, res.Err)
				continue
			}
			s := res.Summary
			fmt.Printf("%s: %d fetched, %d expenses created, %d skipped, %d failed\n",
				res.Account, s.Fetched, s.Created, s.Skipped, s.Failed)
			for _, warning := range s.Warnings {
				fmt.Printf("  warning: %s\n", warning)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d account runs aborted", failed, len(results))
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncAccount, "account", "", "sync a single account by email")
}
