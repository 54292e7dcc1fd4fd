package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	provider   TEXT NOT NULL DEFAULT 'custom',
	bank       TEXT NOT NULL DEFAULT '',
	use_oauth  INTEGER NOT NULL DEFAULT 0 CHECK(use_oauth IN (0, 1)),
	host       TEXT NOT NULL DEFAULT '',
	port       INTEGER NOT NULL DEFAULT 0,
	active     INTEGER NOT NULL DEFAULT 1 CHECK(active IN (0, 1)),
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS parsing_rules (
	id                  TEXT PRIMARY KEY,
	bank                TEXT NOT NULL,
	active              INTEGER NOT NULL DEFAULT 1 CHECK(active IN (0, 1)),
	amount_pattern      TEXT NOT NULL,
	date_pattern        TEXT NOT NULL,
	merchant_pattern    TEXT NOT NULL DEFAULT '',
	description_pattern TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS expenses (
	id                  TEXT PRIMARY KEY,
	account_id          TEXT NOT NULL REFERENCES accounts(id),
	amount              TEXT NOT NULL,
	currency            TEXT NOT NULL,
	transaction_date    DATETIME NOT NULL,
	merchant            TEXT NOT NULL DEFAULT '',
	merchant_normalized TEXT NOT NULL DEFAULT '',
	description         TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'pending'
	                    CHECK(status IN ('pending', 'processed', 'failed')),
	bank                TEXT NOT NULL DEFAULT '',
	raw_text            TEXT NOT NULL DEFAULT '',
	message_id          TEXT NOT NULL DEFAULT '',
	category            TEXT NOT NULL DEFAULT '',
	category_confidence REAL NOT NULL DEFAULT 0,
	categorized_by      TEXT NOT NULL DEFAULT '',
	categorized_at      DATETIME,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS processed_emails (
	id           TEXT PRIMARY KEY,
	account_id   TEXT NOT NULL REFERENCES accounts(id),
	message_id   TEXT NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(account_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_parsing_rules_bank ON parsing_rules(bank, active);
CREATE INDEX IF NOT EXISTS idx_expenses_account_id ON expenses(account_id);
CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses(status);
CREATE INDEX IF NOT EXISTS idx_expenses_transaction_date ON expenses(transaction_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_expenses_account_date
	ON expenses(account_id, transaction_date);

CREATE INDEX IF NOT EXISTS idx_expenses_merchant_normalized
	ON expenses(merchant_normalized);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
