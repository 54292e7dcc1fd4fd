package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emontero/bancamail/internal/logger"
	"github.com/emontero/bancamail/internal/model"
	"github.com/emontero/bancamail/internal/store"
	"github.com/emontero/bancamail/tests/testutil"
)

func seedAccount(t *testing.T, s *store.SQLiteStore) model.MailAccount {
	t.Helper()

	account, err := s.UpsertAccount(context.Background(), model.MailAccount{
		Email:    "ana@gmail.com",
		Provider: model.ProviderGmail,
		Bank:     "bac",
		Active:   true,
	})
	if err != nil {
		t.Fatalf("seeding account: %v", err)
	}
	return account
}

func newPersister(s *store.SQLiteStore, categorizer store.Categorizer) *store.Persister {
	return store.NewPersister(
		s, model.DefaultCurrency, decimal.NewFromInt(10_000_000), categorizer, logger.Nop(),
	)
}

func candidate(amount string, date time.Time) model.Candidate {
	return model.Candidate{
		Amount:      decimal.RequireFromString(amount),
		Currency:    "crc",
		Date:        date,
		Merchant:    "AUTOMERCADO ESCAZU",
		Description: "compra aprobada",
	}
}

func TestSaveTransactions(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	rec := model.EmailRecord{
		MessageID: "<m1@bank>",
		Sender:    "notificaciones@notificacionesbaccr.com",
	}
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)

	result, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("25500", date),
		candidate("4550.50", date),
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}
	if result.Created != 2 || result.Skipped {
		t.Fatalf("SaveTransactions() = %+v, want 2 created", result)
	}

	expenses, err := s.GetExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(expenses))
	}

	e := expenses[0]
	if e.AccountID != account.ID {
		t.Errorf("account id = %q, want %q", e.AccountID, account.ID)
	}
	if e.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", e.Status)
	}
	if e.Bank != "bac" {
		t.Errorf("bank = %q, want bac", e.Bank)
	}
	if e.MessageID != rec.MessageID {
		t.Errorf("message id = %q, want %q", e.MessageID, rec.MessageID)
	}
	if e.MerchantNormalized != "automercado escazu" {
		t.Errorf("merchant normalized = %q, want automercado escazu", e.MerchantNormalized)
	}
}

func TestSaveTransactionsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}
	candidates := []model.Candidate{
		candidate("25500", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
	}

	if _, err := persister.SaveTransactions(ctx, account, rec, candidates); err != nil {
		t.Fatalf("first SaveTransactions() error: %v", err)
	}

	// The second delivery of the same message is a successful no-op.
	result, err := persister.SaveTransactions(ctx, account, rec, candidates)
	if err != nil {
		t.Fatalf("second SaveTransactions() error: %v", err)
	}
	if !result.Skipped || result.Created != 0 {
		t.Fatalf("second SaveTransactions() = %+v, want skipped", result)
	}

	count, err := s.CountExpenses(ctx)
	if err != nil {
		t.Fatalf("CountExpenses() error: %v", err)
	}
	if count != 1 {
		t.Errorf("expense count = %d, want 1", count)
	}
}

func TestSaveTransactionsRollsBackOnInvalidCandidate(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}

	_, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("50.00", date),
		candidate("-25.00", date),
	})
	if err == nil {
		t.Fatal("SaveTransactions() succeeded, want validation error")
	}

	// Nothing may survive a partial failure: no expenses, no ledger
	// entry, so a retry starts clean.
	expenseCount, err := s.CountExpenses(ctx)
	if err != nil {
		t.Fatalf("CountExpenses() error: %v", err)
	}
	if expenseCount != 0 {
		t.Errorf("expense count = %d, want 0 after rollback", expenseCount)
	}

	ledgerCount, err := s.CountProcessedEmails(ctx)
	if err != nil {
		t.Fatalf("CountProcessedEmails() error: %v", err)
	}
	if ledgerCount != 0 {
		t.Errorf("ledger count = %d, want 0 after rollback", ledgerCount)
	}
}

func TestSaveTransactionsSkipsPromotionalSender(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	rec := model.EmailRecord{
		MessageID: "<promo@bank>",
		Sender:    "ofertas@banco.cr",
	}

	result, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("500", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}
	if !result.Skipped {
		t.Fatal("promotional sender not skipped")
	}

	// Promotional skips never touch the ledger.
	ledgerCount, err := s.CountProcessedEmails(ctx)
	if err != nil {
		t.Fatalf("CountProcessedEmails() error: %v", err)
	}
	if ledgerCount != 0 {
		t.Errorf("ledger count = %d, want 0", ledgerCount)
	}
}

func TestSaveTransactionsDefaultsCurrencyAndDate(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}

	_, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		{Amount: decimal.RequireFromString("1200")},
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}

	expenses, err := s.GetExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses, want 1", len(expenses))
	}
	if expenses[0].Currency != model.DefaultCurrency {
		t.Errorf("currency = %q, want default %q", expenses[0].Currency, model.DefaultCurrency)
	}
	if expenses[0].TransactionDate.IsZero() {
		t.Error("transaction date not defaulted")
	}
}

// fakeCategorizer returns a fixed result or error for every expense.
type fakeCategorizer struct {
	result *store.Categorization
	err    error
	calls  int
}

func (f *fakeCategorizer) Categorize(ctx context.Context, expense model.Expense) (*store.Categorization, error) {
	f.calls++
	return f.result, f.err
}

func TestSaveTransactionsCategorizes(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	ctx := context.Background()

	categorizer := &fakeCategorizer{
		result: &store.Categorization{Category: "groceries", Confidence: 0.92, Method: "rules"},
	}
	persister := newPersister(s, categorizer)

	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}
	_, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("25500", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}
	if categorizer.calls != 1 {
		t.Fatalf("categorizer called %d times, want 1", categorizer.calls)
	}

	expenses, err := s.GetExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if expenses[0].Category != "groceries" {
		t.Errorf("category = %q, want groceries", expenses[0].Category)
	}
	if expenses[0].CategorizedAt == nil {
		t.Error("categorized_at not set")
	}
}

func TestSaveTransactionsIgnoresLowConfidenceCategory(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	ctx := context.Background()

	categorizer := &fakeCategorizer{
		result: &store.Categorization{Category: "groceries", Confidence: 0.7, Method: "rules"},
	}
	persister := newPersister(s, categorizer)

	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}
	_, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("25500", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}

	expenses, err := s.GetExpenses(ctx, store.ExpenseFilter{})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if expenses[0].Category != "" {
		t.Errorf("category = %q, want empty at threshold confidence", expenses[0].Category)
	}
}

func TestSaveTransactionsCategorizerErrorNonFatal(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	ctx := context.Background()

	categorizer := &fakeCategorizer{err: errors.New("model unavailable")}
	persister := newPersister(s, categorizer)

	rec := model.EmailRecord{MessageID: "<m1@bank>", Sender: "mensajero@bncr.fi.cr"}
	result, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
		candidate("25500", time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("SaveTransactions() error: %v", err)
	}
	if result.Created != 1 {
		t.Errorf("created = %d, want 1 despite categorizer failure", result.Created)
	}
}

func TestGetExpensesFilter(t *testing.T) {
	s := testutil.NewTestStore(t)
	account := seedAccount(t, s)
	persister := newPersister(s, nil)
	ctx := context.Background()

	for i, day := range []int{10, 15, 20} {
		rec := model.EmailRecord{
			MessageID: string(rune('a'+i)) + "@bank",
			Sender:    "mensajero@bncr.fi.cr",
		}
		date := time.Date(2025, 8, day, 0, 0, 0, 0, time.UTC)
		if _, err := persister.SaveTransactions(ctx, account, rec, []model.Candidate{
			candidate("100", date),
		}); err != nil {
			t.Fatalf("SaveTransactions() error: %v", err)
		}
	}

	since := time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC)
	expenses, err := s.GetExpenses(ctx, store.ExpenseFilter{Since: &since})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("got %d expenses since %v, want 2", len(expenses), since)
	}
	// Newest first.
	if !expenses[0].TransactionDate.After(expenses[1].TransactionDate) {
		t.Error("expenses not ordered newest first")
	}

	expenses, err = s.GetExpenses(ctx, store.ExpenseFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetExpenses() error: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("got %d expenses with limit 1, want 1", len(expenses))
	}
}
