package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emontero/bancamail/internal/mailbox"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List configured mail accounts and their resolved servers",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := configuredAccounts(cmd)
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("no accounts configured")
			return nil
		}

		for _, account := range accounts {
			srv := mailbox.Resolve(account)
			state := "active"
			if !account.Active {
				state = "inactive"
			}
			auth := "password"
			if account.UseOAuth {
				auth = "oauth"
			}
			fmt.Printf("%s  bank=%s  %s:%d  %s  %s\n",
				account.Email, account.Bank, srv.Host, srv.Port, auth, state)
		}
		return nil
	},
}
