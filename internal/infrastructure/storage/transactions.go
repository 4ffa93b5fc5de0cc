package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
)

const transactionColumns = `id, description, amount, date, transaction_type, category_id, account_id,
	group_id, payer_id, split_method, split_values, split_status, tags, notes, applied_rule_id,
	created_at, updated_at`

// SaveTransaction inserts or replaces a transaction. Participant and
// category split rows are rewritten in the same database transaction.
func (s *Storage) SaveTransaction(ctx context.Context, t *Transaction) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	var splitValues sql.NullString
	if len(t.SplitValues) > 0 {
		data, err := json.Marshal(t.SplitValues)
		if err != nil {
			return err
		}
		splitValues = sql.NullString{String: string(data), Valid: true}
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				description = excluded.description,
				amount = excluded.amount,
				date = excluded.date,
				transaction_type = excluded.transaction_type,
				category_id = excluded.category_id,
				account_id = excluded.account_id,
				group_id = excluded.group_id,
				payer_id = excluded.payer_id,
				split_method = excluded.split_method,
				split_values = excluded.split_values,
				split_status = excluded.split_status,
				tags = excluded.tags,
				notes = excluded.notes,
				applied_rule_id = excluded.applied_rule_id,
				updated_at = excluded.updated_at
		`),
			t.ID, t.Description, t.Amount, t.Date, t.Type,
			nullString(t.CategoryID), nullString(t.AccountID),
			nullString(t.GroupID), nullString(t.PayerID), nullString(string(t.SplitMethod)),
			splitValues, nullString(t.SplitStatus), encodeTags(t.Tags), t.Notes,
			nullString(t.AppliedRuleID), t.CreatedAt, t.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("save transaction %s: %w", t.ID, err)
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM transaction_participants WHERE transaction_id = ?`), t.ID); err != nil {
			return err
		}
		for _, p := range t.Participants {
			if _, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO transaction_participants (transaction_id, participant_id, name, is_payer, amount)
				VALUES (?, ?, ?, ?, ?)
			`), t.ID, p.ID, p.Name, p.IsPayer, p.Amount); err != nil {
				return fmt.Errorf("save participant %s: %w", p.ID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM category_splits WHERE transaction_id = ?`), t.ID); err != nil {
			return err
		}
		for i, cs := range t.CategorySplits {
			if _, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO category_splits (transaction_id, position, category_id, amount)
				VALUES (?, ?, ?, ?)
			`), t.ID, i, cs.CategoryID, cs.Amount); err != nil {
				return fmt.Errorf("save category split: %w", err)
			}
		}
		return nil
	})
}

// GetTransaction retrieves a transaction with its split rows
func (s *Storage) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`), id)
	t, err := s.scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadSplitRows(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListTransactions returns transactions newest first
func (s *Storage) ListTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []any
	if filters.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, filters.GroupID)
	}
	if filters.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, filters.CategoryID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, id"
	if filters.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}

	txns := []Transaction{}
	for rows.Next() {
		t, err := s.scanTransaction(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range txns {
		if err := s.loadSplitRows(ctx, &txns[i]); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

// DeleteTransaction removes a transaction and its split rows
func (s *Storage) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM transactions WHERE id = ?`), id)
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

// SaveRuleAssignments writes the rule-managed fields of each change's After
// state. A row is only written while it still holds the change's Before
// state, so an edit that lands between reading and saving is kept. It
// returns how many rows were written.
func (s *Storage) SaveRuleAssignments(ctx context.Context, changes []rules.Change) (int, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	written := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.q(`
			UPDATE transactions
			SET transaction_type = ?, category_id = ?, account_id = ?, tags = ?, notes = ?,
			    applied_rule_id = ?, updated_at = ?
			WHERE id = ?
			  AND description = ? AND amount = ? AND transaction_type = ?
			  AND COALESCE(category_id, '') = ? AND COALESCE(account_id, '') = ?
			  AND tags = ? AND notes = ?
		`))
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()

		for _, c := range changes {
			after, before := c.After, c.Before
			res, err := stmt.ExecContext(ctx,
				string(after.Type), nullString(after.CategoryID), nullString(after.AccountID),
				encodeTags(after.Tags), after.Notes, nullString(c.RuleID), now,
				after.ID,
				before.Description, before.Amount, string(before.Type),
				before.CategoryID, before.AccountID,
				encodeTags(before.Tags), before.Notes,
			)
			if err != nil {
				return fmt.Errorf("update transaction %s: %w", after.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				s.logger.Info("transaction changed since it was read, keeping the stored version", "transaction_id", after.ID)
				continue
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (s *Storage) scanTransaction(row scanner) (*Transaction, error) {
	var t Transaction
	var category, account, group, payer, method, values, status, rule sql.NullString
	var tags string
	if err := row.Scan(
		&t.ID, &t.Description, &t.Amount, &t.Date, &t.Type, &category, &account,
		&group, &payer, &method, &values, &status, &tags, &t.Notes, &rule,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.CategoryID = category.String
	t.AccountID = account.String
	t.GroupID = group.String
	t.PayerID = payer.String
	t.SplitMethod = splitter.Kind(method.String)
	t.SplitStatus = status.String
	t.AppliedRuleID = rule.String
	t.Tags = s.decodeTags(tags, "transaction_id", t.ID)

	parsed, err := splitter.ParseValues([]byte(values.String))
	if err != nil {
		s.logger.Warn("invalid split values on transaction", "transaction_id", t.ID, "error", err)
		parsed = splitter.Values{}
	}
	t.SplitValues = parsed
	return &t, nil
}

func (s *Storage) loadSplitRows(ctx context.Context, t *Transaction) error {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT participant_id, name, is_payer, amount
		FROM transaction_participants WHERE transaction_id = ?
		ORDER BY is_payer DESC, participant_id
	`), t.ID)
	if err != nil {
		return err
	}
	t.Participants = []Participant{}
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.IsPayer, &p.Amount); err != nil {
			_ = rows.Close()
			return err
		}
		t.Participants = append(t.Participants, p)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	rows, err = s.db.QueryContext(ctx, s.q(`
		SELECT category_id, amount FROM category_splits WHERE transaction_id = ? ORDER BY position
	`), t.ID)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	t.CategorySplits = []splitter.CategorySplit{}
	for rows.Next() {
		var cs splitter.CategorySplit
		var amount decimal.Decimal
		if err := rows.Scan(&cs.CategoryID, &amount); err != nil {
			return err
		}
		cs.Amount = amount
		t.CategorySplits = append(t.CategorySplits, cs)
	}
	return rows.Err()
}
