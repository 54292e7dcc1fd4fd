package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emontero/bancamail/internal/logger"
	"github.com/emontero/bancamail/internal/model"
	"github.com/emontero/bancamail/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

var (
	configPath string
	cfg        *model.AppConfig
	db         *store.SQLiteStore
	log        zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bancamail",
	Short: "bancamail - extract expenses from bank notification emails",
	Long: "Bancamail ingests bank transaction-notification emails over IMAP,\n" +
		"extracts structured expenses from multilingual notification bodies,\n" +
		"and persists each email's transactions exactly once.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.New()

		path := configPath
		if path == "" {
			path = model.DefaultConfigPath()
		}

		var err error
		cfg, err = model.LoadConfig(path)
		if err != nil {
			return err
		}

		db, err = store.NewSQLiteStore(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database %s: %w", cfg.Database, err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the bancamail version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("bancamail", Version)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.AddCommand(syncCmd, accountsCmd, expensesCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// configuredAccounts maps config entries onto model accounts and
// upserts them so persisted rows carry stable ids.
func configuredAccounts(cmd *cobra.Command) ([]model.MailAccount, error) {
	accounts := make([]model.MailAccount, 0, len(cfg.Accounts))
	for _, ac := range cfg.Accounts {
		account := model.MailAccount{
			Email:    ac.Email,
			Provider: model.Provider(ac.Provider),
			Bank:     ac.Bank,
			UseOAuth: ac.UseOAuth,
			Host:     ac.Host,
			Port:     ac.Port,
			Active:   ac.Active,
		}
		if account.Provider == "" {
			account.Provider = model.ProviderCustom
		}

		stored, err := db.UpsertAccount(cmd.Context(), account)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, stored)
	}
	return accounts, nil
}
