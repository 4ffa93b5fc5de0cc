package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
)

// ListGroups returns all groups with their members
func (s *Storage) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, name, default_split_method, default_split_values,
		       auto_include_all, default_payer, created_at
		FROM expense_groups ORDER BY name, id
	`))
	if err != nil {
		return nil, err
	}

	groups := []Group{}
	for rows.Next() {
		g, err := s.scanGroup(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		groups = append(groups, *g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		members, err := s.groupMembers(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Members = members
	}
	return groups, nil
}

// GetGroup retrieves a group with its members
func (s *Storage) GetGroup(ctx context.Context, id string) (*Group, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, name, default_split_method, default_split_values,
		       auto_include_all, default_payer, created_at
		FROM expense_groups WHERE id = ?
	`), id)
	g, err := s.scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	g.Members, err = s.groupMembers(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// SaveGroup inserts or replaces a group and its member list
func (s *Storage) SaveGroup(ctx context.Context, g *Group) error {
	var values sql.NullString
	if len(g.DefaultSplitValues) > 0 {
		data, err := json.Marshal(g.DefaultSplitValues)
		if err != nil {
			return err
		}
		values = sql.NullString{String: string(data), Valid: true}
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO expense_groups
			(id, name, default_split_method, default_split_values, auto_include_all, default_payer, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				default_split_method = excluded.default_split_method,
				default_split_values = excluded.default_split_values,
				auto_include_all = excluded.auto_include_all,
				default_payer = excluded.default_payer
		`), g.ID, g.Name, string(g.DefaultSplitMethod), values, g.AutoIncludeAll, nullString(g.DefaultPayer), g.CreatedAt)
		if err != nil {
			return fmt.Errorf("save group %s: %w", g.ID, err)
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM group_members WHERE group_id = ?`), g.ID); err != nil {
			return err
		}
		for i, m := range g.Members {
			if _, err := tx.ExecContext(ctx, s.q(`
				INSERT INTO group_members (group_id, member_id, name, position) VALUES (?, ?, ?, ?)
			`), g.ID, m.ID, m.Name, i); err != nil {
				return fmt.Errorf("save member %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (s *Storage) groupMembers(ctx context.Context, groupID string) ([]splitter.Member, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT member_id, name FROM group_members WHERE group_id = ? ORDER BY position, member_id
	`), groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	members := []splitter.Member{}
	for rows.Next() {
		var m splitter.Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// scanGroup decodes a group row. Stored default values may be a JSON object
// or a JSON string holding one; anything undecodable is logged and the group
// falls back to an equal split.
func (s *Storage) scanGroup(row scanner) (*Group, error) {
	var g Group
	var method string
	var values, payer sql.NullString
	if err := row.Scan(&g.ID, &g.Name, &method, &values, &g.AutoIncludeAll, &payer, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.DefaultSplitMethod = splitter.Kind(method)
	g.DefaultPayer = payer.String

	parsed, err := splitter.ParseValues([]byte(values.String))
	if err != nil {
		s.logger.Warn("invalid default split values, using equal split",
			"group_id", g.ID, "error", err)
		parsed = splitter.Values{}
		g.DefaultValuesInvalid = true
	}
	g.DefaultSplitValues = parsed
	return &g, nil
}

// SplitGroups adapts a GroupRepository to the split engine's lookup.
// A missing group is reported as nil, nil.
func SplitGroups(repo GroupRepository) splitter.GroupRepository {
	return splitGroups{repo: repo}
}

type splitGroups struct {
	repo GroupRepository
}

func (l splitGroups) GetGroup(ctx context.Context, id string) (*splitter.Group, error) {
	g, err := l.repo.GetGroup(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return g.SplitGroup(), nil
}
