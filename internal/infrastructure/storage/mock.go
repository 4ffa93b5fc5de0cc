package storage

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu           sync.Mutex
	categories   map[string]Category
	accounts     map[string]Account
	groups       map[string]Group
	transactions map[string]Transaction
	rules        map[string]rules.Rule

	// Hooks for test assertions
	SaveTransactionCalled bool
	LastSavedTransaction  *Transaction
	SaveAssignmentsCalled bool
	LastMatchDeltas       map[string]int

	// Error injection for testing error paths
	SaveTransactionErr error
	GetGroupErr        error
	ListRulesErr       error
	SaveRuleErr        error
	SaveAssignmentsErr error
	IncrementErr       error
	PingErr            error

	// Latency injection
	ListTransactionsDelay time.Duration
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories:   make(map[string]Category),
		accounts:     make(map[string]Account),
		groups:       make(map[string]Group),
		transactions: make(map[string]Transaction),
		rules:        make(map[string]rules.Rule),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) ListCategories(ctx context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetCategory(ctx context.Context, id string) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *MockRepository) SaveCategory(ctx context.Context, c *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[c.ID] = *c
	return nil
}

func (m *MockRepository) ListAccounts(ctx context.Context) ([]Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetAccount(ctx context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *MockRepository) SaveAccount(ctx context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = *a
	return nil
}

func (m *MockRepository) ListGroups(ctx context.Context) ([]Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockRepository) GetGroup(ctx context.Context, id string) (*Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetGroupErr != nil {
		return nil, m.GetGroupErr
	}
	g, ok := m.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	g.DefaultSplitValues = g.DefaultSplitValues.Clone()
	return &g, nil
}

func (m *MockRepository) SaveGroup(ctx context.Context, g *Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *g
	copied.DefaultSplitValues = g.DefaultSplitValues.Clone()
	m.groups[g.ID] = copied
	return nil
}

func (m *MockRepository) SaveTransaction(ctx context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveTransactionCalled = true
	m.LastSavedTransaction = t
	if m.SaveTransactionErr != nil {
		return m.SaveTransactionErr
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	m.transactions[t.ID] = *t
	return nil
}

func (m *MockRepository) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MockRepository) ListTransactions(ctx context.Context, filters TransactionFilters) ([]Transaction, error) {
	if m.ListTransactionsDelay > 0 {
		time.Sleep(m.ListTransactionsDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Transaction{}
	for _, t := range m.transactions {
		if filters.GroupID != "" && t.GroupID != filters.GroupID {
			continue
		}
		if filters.CategoryID != "" && t.CategoryID != filters.CategoryID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return []Transaction{}, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (m *MockRepository) DeleteTransaction(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockRepository) SaveRuleAssignments(ctx context.Context, changes []rules.Change) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveAssignmentsCalled = true
	if m.SaveAssignmentsErr != nil {
		return 0, m.SaveAssignmentsErr
	}
	written := 0
	for _, c := range changes {
		t, ok := m.transactions[c.After.ID]
		if !ok || !sameRuleView(t.RuleView(), c.Before) {
			continue
		}
		t.SetRuleView(c.After)
		t.AppliedRuleID = c.RuleID
		m.transactions[c.After.ID] = t
		written++
	}
	return written, nil
}

func sameRuleView(a, b rules.Transaction) bool {
	return a.ID == b.ID &&
		a.Description == b.Description &&
		a.Amount.Equal(b.Amount) &&
		a.Type == b.Type &&
		a.CategoryID == b.CategoryID &&
		a.AccountID == b.AccountID &&
		slices.Equal(a.Tags, b.Tags) &&
		a.Notes == b.Notes
}

func (m *MockRepository) ListRules(ctx context.Context) ([]rules.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListRulesErr != nil {
		return nil, m.ListRulesErr
	}
	out := make([]rules.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockRepository) GetRule(ctx context.Context, id string) (*rules.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MockRepository) SaveRule(ctx context.Context, r *rules.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveRuleErr != nil {
		return m.SaveRuleErr
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	if existing, ok := m.rules[r.ID]; ok {
		r.MatchCount = existing.MatchCount
		r.LastMatchedAt = existing.LastMatchedAt
	}
	m.rules[r.ID] = *r
	return nil
}

func (m *MockRepository) DeleteRule(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[id]; !ok {
		return ErrNotFound
	}
	delete(m.rules, id)
	return nil
}

func (m *MockRepository) IncrementRuleMatches(ctx context.Context, deltas map[string]int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastMatchDeltas = deltas
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	for id, delta := range deltas {
		r, ok := m.rules[id]
		if !ok || delta <= 0 {
			continue
		}
		r.MatchCount += delta
		stamp := at
		r.LastMatchedAt = &stamp
		m.rules[id] = r
	}
	return nil
}
