package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/emontero/bancamail/internal/model"
)

// UpsertAccount inserts or updates an account keyed by email address.
// An existing row keeps its id so owned expenses and ledger entries
// stay attached. The stored account (with id populated) is returned.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, account model.MailAccount) (model.MailAccount, error) {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, email, provider, bank, use_oauth, host, port, active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			provider = excluded.provider,
			bank = excluded.bank,
			use_oauth = excluded.use_oauth,
			host = excluded.host,
			port = excluded.port,
			active = excluded.active`,
		account.ID, account.Email, string(account.Provider), account.Bank,
		boolToInt(account.UseOAuth), account.Host, account.Port,
		boolToInt(account.Active), time.Now().UTC(),
	)
	if err != nil {
		return model.MailAccount{}, fmt.Errorf("upserting account %s: %w", account.Email, err)
	}

	stored, err := s.GetAccountByEmail(ctx, account.Email)
	if err != nil {
		return model.MailAccount{}, err
	}
	return *stored, nil
}

// GetAccountByEmail retrieves a single account by its email address.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*model.MailAccount, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM accounts WHERE email = ?", email)
	if err != nil {
		return nil, fmt.Errorf("querying account %s: %w", email, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying account %s: %w", email, err)
		}
		return nil, fmt.Errorf("account %s not found", email)
	}

	account, err := scanAccount(rows)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetAccounts retrieves all accounts, optionally only active ones.
func (s *SQLiteStore) GetAccounts(ctx context.Context, activeOnly bool) ([]model.MailAccount, error) {
	query := "SELECT * FROM accounts"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY email"

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.MailAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

// scanAccount scans an account row from a sqlx.Rows result set.
func scanAccount(rows *sqlx.Rows) (model.MailAccount, error) {
	var (
		account   model.MailAccount
		provider  string
		useOAuth  int
		active    int
		createdAt time.Time
	)

	err := rows.Scan(
		&account.ID, &account.Email, &provider, &account.Bank,
		&useOAuth, &account.Host, &account.Port, &active, &createdAt,
	)
	if err != nil {
		return model.MailAccount{}, fmt.Errorf("scanning account row: %w", err)
	}

	account.Provider = model.Provider(provider)
	account.UseOAuth = useOAuth != 0
	account.Active = active != 0
	account.CreatedAt = createdAt

	return account, nil
}
