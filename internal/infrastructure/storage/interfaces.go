package storage

import (
	"context"
	"errors"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	CategoryRepository
	AccountRepository
	GroupRepository
	TransactionRepository
	RuleRepository
	Ping(ctx context.Context) error
	Close() error
}

// CategoryRepository handles categories
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	SaveCategory(ctx context.Context, c *Category) error
}

// AccountRepository handles accounts
type AccountRepository interface {
	ListAccounts(ctx context.Context) ([]Account, error)
	GetAccount(ctx context.Context, id string) (*Account, error)
	SaveAccount(ctx context.Context, a *Account) error
}

// GroupRepository handles shared-expense groups and their members
type GroupRepository interface {
	ListGroups(ctx context.Context) ([]Group, error)

	// GetGroup returns ErrNotFound when the group does not exist
	GetGroup(ctx context.Context, id string) (*Group, error)

	// SaveGroup inserts or replaces a group including its member list
	SaveGroup(ctx context.Context, g *Group) error
}

// TransactionRepository handles transactions with their split rows
type TransactionRepository interface {
	// SaveTransaction inserts or replaces a transaction together with its
	// participants and category splits
	SaveTransaction(ctx context.Context, t *Transaction) error

	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	ListTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// SaveRuleAssignments writes the rule-managed fields (category, account,
	// type, tags, notes) of each change in one database transaction. Rows
	// that no longer hold the change's Before state are left alone. It
	// returns how many rows were written.
	SaveRuleAssignments(ctx context.Context, changes []rules.Change) (int, error)
}

// TransactionFilters defines filters for listing transactions
type TransactionFilters struct {
	GroupID    string // empty = all
	CategoryID string // empty = all
	Limit      int    // 0 = no limit
	Offset     int
}

// RuleRepository handles categorization rules
type RuleRepository interface {
	ListRules(ctx context.Context) ([]rules.Rule, error)
	GetRule(ctx context.Context, id string) (*rules.Rule, error)
	SaveRule(ctx context.Context, r *rules.Rule) error
	DeleteRule(ctx context.Context, id string) error

	// IncrementRuleMatches adds deltas to match_count atomically and stamps
	// last_matched_at
	IncrementRuleMatches(ctx context.Context, deltas map[string]int, at time.Time) error
}
