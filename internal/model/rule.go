package model

import "time"

// ParsingRule is the externally administered per-bank regex
// configuration driving the bank-pattern extraction strategy. This
// system only reads rules; it never creates or updates them.
type ParsingRule struct {
	ID   string
	Bank string

	// Active controls whether the rule participates in strategy
	// selection. An inactive rule is the same as no rule.
	Active bool

	// AmountPattern and DatePattern are required; an email that fails
	// either yields no candidates from this rule.
	AmountPattern string
	DatePattern   string

	// MerchantPattern and DescriptionPattern are optional extras.
	MerchantPattern    string
	DescriptionPattern string

	CreatedAt time.Time
}
