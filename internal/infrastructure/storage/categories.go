package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ListCategories returns all categories ordered by name
func (s *Storage) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, name, icon, color, parent_id FROM categories ORDER BY name, id
	`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category by ID
func (s *Storage) GetCategory(ctx context.Context, id string) (*Category, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, icon, color, parent_id FROM categories WHERE id = ?
	`), id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// SaveCategory inserts or updates a category
func (s *Storage) SaveCategory(ctx context.Context, c *Category) error {
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO categories (id, name, icon, color, parent_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			icon = excluded.icon,
			color = excluded.color,
			parent_id = excluded.parent_id
	`), c.ID, c.Name, c.Icon, c.Color, nullStringPtr(c.ParentID))
	if err != nil {
		return fmt.Errorf("save category %s: %w", c.ID, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (*Category, error) {
	var c Category
	var parent sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &parent); err != nil {
		return nil, err
	}
	c.ParentID = stringPtr(parent)
	return &c, nil
}

// ListAccounts returns all accounts ordered by name
func (s *Storage) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, name, currency_code FROM accounts ORDER BY name, id
	`))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	accounts := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CurrencyCode); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetAccount retrieves an account by ID
func (s *Storage) GetAccount(ctx context.Context, id string) (*Account, error) {
	var a Account
	err := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, currency_code FROM accounts WHERE id = ?
	`), id).Scan(&a.ID, &a.Name, &a.CurrencyCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAccount inserts or updates an account
func (s *Storage) SaveAccount(ctx context.Context, a *Account) error {
	currency := a.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO accounts (id, name, currency_code)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			currency_code = excluded.currency_code
	`), a.ID, a.Name, currency)
	if err != nil {
		return fmt.Errorf("save account %s: %w", a.ID, err)
	}
	return nil
}
