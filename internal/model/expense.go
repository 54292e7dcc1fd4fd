package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the processing state of a persisted expense.
type ExpenseStatus string

const (
	StatusPending   ExpenseStatus = "pending"
	StatusProcessed ExpenseStatus = "processed"
	StatusFailed    ExpenseStatus = "failed"
)

// DefaultCurrency is applied when extraction could not determine one.
const DefaultCurrency = "crc"

// SupportedCurrencies is the enumerated set accepted by validation.
var SupportedCurrencies = map[string]bool{
	"crc": true,
	"usd": true,
	"eur": true,
}

// Expense is a financial transaction extracted from a notification email.
type Expense struct {
	ID        string
	AccountID string

	Amount          decimal.Decimal
	Currency        string
	TransactionDate time.Time

	// Merchant is the name as extracted; MerchantNormalized is
	// lower-cased with collapsed whitespace for grouping.
	Merchant           string
	MerchantNormalized string

	Description string
	Status      ExpenseStatus
	Bank        string

	// RawText is a truncated excerpt of the source email body.
	RawText string

	// MessageID ties the expense back to its source email.
	MessageID string

	// Categorization metadata, populated only when an injected
	// categorizer returned a confident result.
	Category           string
	CategoryConfidence float64
	CategorizedBy      string
	CategorizedAt      *time.Time

	CreatedAt time.Time
}

// Validate checks the invariants required before an expense may be
// persisted: strictly positive amount below the ceiling, a supported
// currency, and a transaction date.
func (e *Expense) Validate(ceiling decimal.Decimal) error {
	if !e.Amount.IsPositive() {
		return fmt.Errorf("amount %s is not positive", e.Amount)
	}
	if e.Amount.GreaterThanOrEqual(ceiling) {
		return fmt.Errorf("amount %s is at or above the ceiling %s", e.Amount, ceiling)
	}
	if !SupportedCurrencies[e.Currency] {
		return fmt.Errorf("unsupported currency %q", e.Currency)
	}
	if e.TransactionDate.IsZero() {
		return fmt.Errorf("missing transaction date")
	}
	return nil
}

// NormalizeMerchant lower-cases a merchant name and collapses internal
// whitespace runs to single spaces.
func NormalizeMerchant(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
