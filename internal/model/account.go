package model

import (
	"strings"
	"time"
)

// Provider identifies the mailbox provider kind for an account.
type Provider string

const (
	ProviderGmail   Provider = "gmail"
	ProviderOutlook Provider = "outlook"
	ProviderYahoo   Provider = "yahoo"
	ProviderICloud  Provider = "icloud"
	ProviderCustom  Provider = "custom"
)

// MailAccount is a monitored mailbox belonging to one bank customer.
// Credentials are not stored on the struct; they live in the system
// keyring and are looked up by email address.
type MailAccount struct {
	// ID is the unique identifier for this account.
	ID string

	// Email is the mailbox address, also the keyring credential key.
	Email string

	// Provider identifies the mailbox provider kind.
	Provider Provider

	// Bank selects which parsing rule set applies to this account's
	// notification emails.
	Bank string

	// UseOAuth selects XOAUTH2 authentication instead of password login.
	UseOAuth bool

	// Host and Port, when set, override IMAP server resolution.
	Host string
	Port int

	// Active controls whether ingestion runs process this account.
	Active bool

	CreatedAt time.Time
}

// Domain returns the normalized domain part of the account's email
// address, or "" if the address has no domain.
func (a MailAccount) Domain() string {
	at := strings.LastIndex(a.Email, "@")
	if at < 0 || at == len(a.Email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(a.Email[at+1:]))
}
