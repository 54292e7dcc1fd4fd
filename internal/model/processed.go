package model

import "time"

// ProcessedEmail is one row of the idempotency ledger. The pair
// (AccountID, MessageID) is unique in storage; the database constraint,
// not any in-process check, is what guarantees exactly-once processing
// under concurrent runs. Rows are append-only and never updated.
type ProcessedEmail struct {
	ID          string
	AccountID   string
	MessageID   string
	ProcessedAt time.Time
}
