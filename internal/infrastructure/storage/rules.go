package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
)

const ruleColumns = `id, name, pattern, pattern_field, is_regex, case_sensitive,
	amount_min, amount_max, transaction_type_filter,
	auto_category_id, auto_account_id, auto_transaction_type, auto_tags, auto_notes,
	priority, active, match_count, last_matched_at, is_system, created_at, updated_at`

// ListRules returns all rules, highest priority first
func (s *Storage) ListRules(ctx context.Context) ([]rules.Rule, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT `+ruleColumns+` FROM transaction_rules ORDER BY priority DESC, created_at, id
	`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []rules.Rule{}
	for rows.Next() {
		r, err := s.scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetRule retrieves a rule by ID
func (s *Storage) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+ruleColumns+` FROM transaction_rules WHERE id = ?`), id)
	r, err := s.scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

// SaveRule inserts or updates a rule. Match statistics are only written on
// insert; IncrementRuleMatches owns them afterwards.
func (s *Storage) SaveRule(ctx context.Context, r *rules.Rule) error {
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if r.PatternField == "" {
		r.PatternField = matcher.FieldDescription
	}

	var autoType sql.NullString
	if r.AutoTransactionType != nil {
		autoType = nullString(string(*r.AutoTransactionType))
	}

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO transaction_rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			pattern = excluded.pattern,
			pattern_field = excluded.pattern_field,
			is_regex = excluded.is_regex,
			case_sensitive = excluded.case_sensitive,
			amount_min = excluded.amount_min,
			amount_max = excluded.amount_max,
			transaction_type_filter = excluded.transaction_type_filter,
			auto_category_id = excluded.auto_category_id,
			auto_account_id = excluded.auto_account_id,
			auto_transaction_type = excluded.auto_transaction_type,
			auto_tags = excluded.auto_tags,
			auto_notes = excluded.auto_notes,
			priority = excluded.priority,
			active = excluded.active,
			is_system = excluded.is_system,
			updated_at = excluded.updated_at
	`),
		r.ID, r.Name, r.Pattern, string(r.PatternField), r.IsRegex, r.CaseSensitive,
		nullDecimal(r.AmountMin), nullDecimal(r.AmountMax), string(r.TransactionTypeFilter),
		nullStringPtr(r.AutoCategoryID), nullStringPtr(r.AutoAccountID), autoType,
		encodeTags(r.AutoTags), nullStringPtr(r.AutoNotes),
		r.Priority, r.Active, r.MatchCount, r.LastMatchedAt, r.IsSystem, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save rule %s: %w", r.ID, err)
	}
	return nil
}

// DeleteRule removes a rule
func (s *Storage) DeleteRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM transaction_rules WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementRuleMatches adds each delta to the stored counter in place so
// concurrent writers never lose increments.
func (s *Storage) IncrementRuleMatches(ctx context.Context, deltas map[string]int, at time.Time) error {
	if len(deltas) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for id, delta := range deltas {
			if delta <= 0 {
				continue
			}
			if _, err := tx.ExecContext(ctx, s.q(`
				UPDATE transaction_rules
				SET match_count = match_count + ?, last_matched_at = ?
				WHERE id = ?
			`), delta, at.UTC(), id); err != nil {
				return fmt.Errorf("increment rule %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *Storage) scanRule(row scanner) (*rules.Rule, error) {
	var r rules.Rule
	var field, typeFilter, tags string
	var amountMin, amountMax decimal.NullDecimal
	var category, account, autoType, notes sql.NullString
	var lastMatched sql.NullTime
	if err := row.Scan(
		&r.ID, &r.Name, &r.Pattern, &field, &r.IsRegex, &r.CaseSensitive,
		&amountMin, &amountMax, &typeFilter,
		&category, &account, &autoType, &tags, &notes,
		&r.Priority, &r.Active, &r.MatchCount, &lastMatched, &r.IsSystem, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}
	r.PatternField = matcher.Field(field)
	r.TransactionTypeFilter = rules.TransactionType(typeFilter)
	if amountMin.Valid {
		r.AmountMin = &amountMin.Decimal
	}
	if amountMax.Valid {
		r.AmountMax = &amountMax.Decimal
	}
	r.AutoCategoryID = stringPtr(category)
	r.AutoAccountID = stringPtr(account)
	if autoType.Valid && autoType.String != "" {
		t := rules.TransactionType(autoType.String)
		r.AutoTransactionType = &t
	}
	r.AutoTags = s.decodeTags(tags, "rule_id", r.ID)
	r.AutoNotes = stringPtr(notes)
	if lastMatched.Valid {
		at := lastMatched.Time
		r.LastMatchedAt = &at
	}
	return &r, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
