package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/emontero/bancamail/internal/model"
)

// categoryConfidenceThreshold is the minimum confidence at which a
// categorizer result is applied to an expense.
const categoryConfidenceThreshold = 0.7

// Categorization is the result of one categorizer invocation.
type Categorization struct {
	Category   string
	Confidence float64
	Method     string
}

// Categorizer assigns a category to a persisted expense. It is
// best-effort: a nil result, low confidence, or error leaves the
// expense uncategorized and never affects persistence.
type Categorizer interface {
	Categorize(ctx context.Context, expense model.Expense) (*Categorization, error)
}

// PersistResult reports the outcome of persisting one email's candidates.
type PersistResult struct {
	// Created is the number of expense rows written.
	Created int

	// Skipped is true when the email was promotional or already in the
	// idempotency ledger; a skip is a successful no-op.
	Skipped bool
}

// Persister atomically writes one email's validated candidates as
// expenses plus an idempotency ledger entry: all records commit
// together or not at all.
type Persister struct {
	store           *SQLiteStore
	defaultCurrency string
	ceiling         decimal.Decimal
	categorizer     Categorizer
	log             zerolog.Logger
}

// NewPersister creates a persister. categorizer may be nil to disable
// categorization entirely.
func NewPersister(
	store *SQLiteStore,
	defaultCurrency string,
	ceiling decimal.Decimal,
	categorizer Categorizer,
	log zerolog.Logger,
) *Persister {
	return &Persister{
		store:           store,
		defaultCurrency: strings.ToLower(defaultCurrency),
		ceiling:         ceiling,
		categorizer:     categorizer,
		log:             log,
	}
}

// SaveTransactions persists the full candidate set for one email in a
// single transaction. Promotional senders and already-processed emails
// return a successful no-op. The unique constraint on
// processed_emails(account_id, message_id) is the authoritative
// idempotency guard: a concurrent duplicate insert fails there and is
// reported as already processed. Any record failing validation rolls
// the whole transaction back, leaving the email unprocessed so a retry
// starts clean.
func (p *Persister) SaveTransactions(
	ctx context.Context,
	account model.MailAccount,
	rec model.EmailRecord,
	candidates []model.Candidate,
) (PersistResult, error) {
	if model.IsPromotionalSender(rec.Sender) {
		return PersistResult{Skipped: true}, nil
	}

	tx, err := p.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return PersistResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Ledger entry first: the constraint races concurrent runs so the
	// first writer wins and the loser rolls back before writing rows.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO processed_emails (id, account_id, message_id, processed_at)
		VALUES (?, ?, ?, ?)`,
		uuid.New().String(), account.ID, rec.MessageID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return PersistResult{Skipped: true}, nil
		}
		return PersistResult{}, fmt.Errorf("recording processed email %s: %w", rec.MessageID, err)
	}

	expenses := make([]model.Expense, 0, len(candidates))
	for _, cand := range candidates {
		expense := p.buildExpense(account, rec, cand)
		if err := expense.Validate(p.ceiling); err != nil {
			return PersistResult{}, fmt.Errorf("validating expense for %s: %w", rec.MessageID, err)
		}
		if err := insertExpense(ctx, tx, expense); err != nil {
			return PersistResult{}, err
		}
		expenses = append(expenses, expense)
	}

	if err := tx.Commit(); err != nil {
		return PersistResult{}, fmt.Errorf("committing transactions for %s: %w", rec.MessageID, err)
	}

	for i := range expenses {
		p.categorize(ctx, &expenses[i])
	}

	return PersistResult{Created: len(expenses)}, nil
}

// buildExpense maps a candidate onto a persisted expense, applying the
// documented defaults.
func (p *Persister) buildExpense(account model.MailAccount, rec model.EmailRecord, cand model.Candidate) model.Expense {
	currency := strings.ToLower(cand.Currency)
	if currency == "" {
		currency = p.defaultCurrency
	}

	date := cand.Date
	if date.IsZero() {
		date = time.Now()
	}

	messageID := cand.MessageID
	if messageID == "" {
		messageID = rec.MessageID
	}

	return model.Expense{
		ID:                 uuid.New().String(),
		AccountID:          account.ID,
		Amount:             cand.Amount,
		Currency:           currency,
		TransactionDate:    date,
		Merchant:           cand.Merchant,
		MerchantNormalized: model.NormalizeMerchant(cand.Merchant),
		Description:        cand.Description,
		Status:             model.StatusPending,
		Bank:               account.Bank,
		RawText:            cand.RawText,
		MessageID:          messageID,
		CreatedAt:          time.Now(),
	}
}

// categorize invokes the injected categorizer for one committed
// expense. Failures and low-confidence results are logged and ignored.
func (p *Persister) categorize(ctx context.Context, expense *model.Expense) {
	if p.categorizer == nil {
		return
	}

	result, err := p.categorizer.Categorize(ctx, *expense)
	if err != nil {
		p.log.Warn().
			Str("expense", expense.ID).
			Err(err).
			Msg("categorization failed")
		return
	}
	if result == nil || result.Confidence <= categoryConfidenceThreshold {
		return
	}

	now := time.Now()
	expense.Category = result.Category
	expense.CategoryConfidence = result.Confidence
	expense.CategorizedBy = result.Method
	expense.CategorizedAt = &now

	if err := p.store.setCategorization(ctx, *expense); err != nil {
		p.log.Warn().
			Str("expense", expense.ID).
			Err(err).
			Msg("saving categorization failed")
	}
}

// insertExpense writes one expense row inside the given transaction.
func insertExpense(ctx context.Context, tx *sqlx.Tx, e model.Expense) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO expenses (
			id, account_id, amount, currency, transaction_date,
			merchant, merchant_normalized, description, status, bank,
			raw_text, message_id,
			category, category_confidence, categorized_by, categorized_at,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.AccountID, e.Amount.String(), e.Currency, e.TransactionDate.UTC(),
		e.Merchant, e.MerchantNormalized, e.Description, string(e.Status), e.Bank,
		e.RawText, e.MessageID,
		e.Category, e.CategoryConfidence, e.CategorizedBy, e.CategorizedAt,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting expense %s: %w", e.ID, err)
	}
	return nil
}

// setCategorization updates the categorization columns of one expense.
func (s *SQLiteStore) setCategorization(ctx context.Context, e model.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET category = ?, category_confidence = ?, categorized_by = ?, categorized_at = ?
		WHERE id = ?`,
		e.Category, e.CategoryConfidence, e.CategorizedBy, e.CategorizedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating categorization for %s: %w", e.ID, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ExpenseFilter controls filtering for expense queries.
type ExpenseFilter struct {
	AccountID *string
	Status    *model.ExpenseStatus
	Since     *time.Time
	Limit     int
}

// GetExpenses retrieves expenses matching the filter, newest first.
func (s *SQLiteStore) GetExpenses(ctx context.Context, f ExpenseFilter) ([]model.Expense, error) {
	var conditions []string
	var args []interface{}

	if f.AccountID != nil {
		conditions = append(conditions, "account_id = ?")
		args = append(args, *f.AccountID)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*f.Status))
	}
	if f.Since != nil {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, f.Since.UTC())
	}

	query := "SELECT * FROM expenses"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY transaction_date DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	return expenses, rows.Err()
}

// CountExpenses returns the total number of expense rows.
func (s *SQLiteStore) CountExpenses(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM expenses"); err != nil {
		return 0, fmt.Errorf("counting expenses: %w", err)
	}
	return count, nil
}

// CountProcessedEmails returns the size of the idempotency ledger.
func (s *SQLiteStore) CountProcessedEmails(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM processed_emails"); err != nil {
		return 0, fmt.Errorf("counting processed emails: %w", err)
	}
	return count, nil
}

// scanExpense scans an expense row from a sqlx.Rows result set.
func scanExpense(rows *sqlx.Rows) (model.Expense, error) {
	var (
		expense         model.Expense
		amount          string
		status          string
		transactionDate time.Time
		categorizedAt   *time.Time
		createdAt       time.Time
	)

	err := rows.Scan(
		&expense.ID, &expense.AccountID, &amount, &expense.Currency, &transactionDate,
		&expense.Merchant, &expense.MerchantNormalized, &expense.Description, &status, &expense.Bank,
		&expense.RawText, &expense.MessageID,
		&expense.Category, &expense.CategoryConfidence, &expense.CategorizedBy, &categorizedAt,
		&createdAt,
	)
	if err != nil {
		return model.Expense{}, fmt.Errorf("scanning expense row: %w", err)
	}

	expense.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing stored amount %q: %w", amount, err)
	}
	expense.Status = model.ExpenseStatus(status)
	expense.TransactionDate = transactionDate
	expense.CategorizedAt = categorizedAt
	expense.CreatedAt = createdAt

	return expense, nil
}
