package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmailRecord is the transient parsed form of one fetched message.
// Records live only for the duration of a single ingestion run and are
// discarded after extraction.
type EmailRecord struct {
	UID       uint32
	MessageID string
	Sender    string
	Subject   string
	Date      time.Time

	TextBody string
	HTMLBody string

	// Body is the text chosen for extraction: the HTML part rendered to
	// plain text when present, else the plain-text part, else the raw
	// undifferentiated body.
	Body string
}

// Candidate is an unvalidated extraction result prior to persistence.
type Candidate struct {
	Amount   decimal.Decimal
	Currency string
	Date     time.Time

	Merchant    string
	Description string

	// RawText is a bounded excerpt of the source body.
	RawText string

	// MessageID identifies the email the candidate came from.
	MessageID string
}
