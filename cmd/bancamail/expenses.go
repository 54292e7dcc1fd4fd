package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emontero/bancamail/internal/store"
)

var (
	expensesLimit   int
	expensesAccount string
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "List recently extracted expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.ExpenseFilter{Limit: expensesLimit}

		if expensesAccount != "" {
			account, err := db.GetAccountByEmail(cmd.Context(), expensesAccount)
			if err != nil {
				return err
			}
			filter.AccountID = &account.ID
		}

		expenses, err := db.GetExpenses(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			fmt.Println("no expenses found")
			return nil
		}

		for _, e := range expenses {
			merchant := e.Merchant
			if merchant == "" {
				merchant = "-"
			}
			category := e.Category
			if category == "" {
				category = "-"
			}
			fmt.Printf("%s  %10s %s  %-25s  %-12s  %s\n",
				e.TransactionDate.Format("2006-01-02"),
				e.Amount.StringFixed(2), e.Currency,
				merchant, category, e.Status)
		}
		return nil
	},
}

func init() {
	expensesCmd.Flags().IntVar(&expensesLimit, "limit", 50, "maximum expenses to list")
	expensesCmd.Flags().StringVar(&expensesAccount, "account", "", "filter by account email")
}
