package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
)

// Category is a spending category
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
	ParentID *string `json:"parentId"`
}

// Account is a money account
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currencyCode"`
}

// Group is a shared-expense group
type Group struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	DefaultSplitMethod splitter.Kind     `json:"defaultSplitMethod"`
	DefaultSplitValues splitter.Values   `json:"defaultSplitValues"`
	Members            []splitter.Member `json:"members"`
	AutoIncludeAll     bool              `json:"autoIncludeAll"`
	DefaultPayer       string            `json:"defaultPayer,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`

	// DefaultValuesInvalid is set when the stored default values could not
	// be decoded. Such a group splits equally.
	DefaultValuesInvalid bool `json:"-"`
}

// MemberIDs returns the member ids in display order
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// SplitGroup converts the group for the split engine
func (g *Group) SplitGroup() *splitter.Group {
	out := &splitter.Group{
		ID:             g.ID,
		Name:           g.Name,
		DefaultMethod:  g.DefaultSplitMethod,
		DefaultValues:  g.DefaultSplitValues.Clone(),
		Members:        append([]splitter.Member(nil), g.Members...),
		AutoIncludeAll: g.AutoIncludeAll,
		DefaultPayer:   g.DefaultPayer,
	}
	if g.DefaultValuesInvalid {
		out.DefaultMethod = splitter.KindEqual
		out.DefaultValues = splitter.Values{}
	}
	return out
}

// Participant is a stored per-participant share of a transaction
type Participant struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	IsPayer bool            `json:"isPayer"`
	Amount  decimal.Decimal `json:"amount"`
}

// Transaction is a stored transaction
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Type        string          `json:"transactionType"`
	CategoryID  string          `json:"categoryId,omitempty"`
	AccountID   string          `json:"accountId,omitempty"`
	Tags        []string        `json:"tags"`
	Notes       string          `json:"notes,omitempty"`

	// Group split
	GroupID      string          `json:"groupId,omitempty"`
	PayerID      string          `json:"payerId,omitempty"`
	SplitMethod  splitter.Kind   `json:"splitMethod,omitempty"`
	SplitValues  splitter.Values `json:"-"`
	SplitStatus  string          `json:"splitStatus,omitempty"`
	Participants []Participant   `json:"participants"`

	CategorySplits []splitter.CategorySplit `json:"categorySplits"`

	AppliedRuleID string    `json:"appliedRuleId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RuleView returns the fields the rule engine reads and writes
func (t *Transaction) RuleView() rules.Transaction {
	return rules.Transaction{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        rules.TransactionType(t.Type),
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		Tags:        append([]string(nil), t.Tags...),
		Notes:       t.Notes,
	}
}

// SetRuleView copies rule-managed fields back onto the transaction
func (t *Transaction) SetRuleView(v rules.Transaction) {
	t.Type = string(v.Type)
	t.CategoryID = v.CategoryID
	t.AccountID = v.AccountID
	t.Tags = append([]string(nil), v.Tags...)
	t.Notes = v.Notes
}

// Owed returns the per-participant amounts for balance netting
func (t *Transaction) Owed() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(t.Participants))
	for _, p := range t.Participants {
		out[p.ID] = p.Amount
	}
	return out
}
