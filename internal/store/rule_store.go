package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/emontero/bancamail/internal/model"
)

// ActiveRuleForBank retrieves the active parsing rule for a bank, or
// nil when none exists. Rules are externally administered configuration;
// this system only reads them.
func (s *SQLiteStore) ActiveRuleForBank(ctx context.Context, bank string) (*model.ParsingRule, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT * FROM parsing_rules
		WHERE bank = ? AND active = 1
		ORDER BY created_at DESC
		LIMIT 1`,
		bank,
	)
	if err != nil {
		return nil, fmt.Errorf("querying parsing rule for %s: %w", bank, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("querying parsing rule for %s: %w", bank, err)
		}
		return nil, nil
	}

	rule, err := scanRule(rows)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// scanRule scans a parsing rule row from a sqlx.Rows result set.
func scanRule(rows *sqlx.Rows) (model.ParsingRule, error) {
	var (
		rule      model.ParsingRule
		active    int
		createdAt time.Time
	)

	err := rows.Scan(
		&rule.ID, &rule.Bank, &active,
		&rule.AmountPattern, &rule.DatePattern,
		&rule.MerchantPattern, &rule.DescriptionPattern,
		&createdAt,
	)
	if err != nil {
		return model.ParsingRule{}, fmt.Errorf("scanning parsing rule row: %w", err)
	}

	rule.Active = active != 0
	rule.CreatedAt = createdAt

	return rule, nil
}
