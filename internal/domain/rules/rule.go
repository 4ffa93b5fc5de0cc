package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// TransactionType classifies a transaction.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
)

// TransactionTypes lists the valid transaction types.
var TransactionTypes = validator.TransactionTypes

// Rule is a user-defined categorization rule.
type Rule struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Pattern       string        `json:"pattern"`
	PatternField  matcher.Field `json:"patternField"`
	IsRegex       bool          `json:"isRegex"`
	CaseSensitive bool          `json:"caseSensitive"`

	AmountMin             *decimal.Decimal `json:"amountMin,omitempty"`
	AmountMax             *decimal.Decimal `json:"amountMax,omitempty"`
	TransactionTypeFilter TransactionType  `json:"transactionTypeFilter,omitempty"`

	AutoCategoryID      *string          `json:"autoCategoryId,omitempty"`
	AutoAccountID       *string          `json:"autoAccountId,omitempty"`
	AutoTransactionType *TransactionType `json:"autoTransactionType,omitempty"`
	AutoTags            []string         `json:"autoTags"`
	AutoNotes           *string          `json:"autoNotes,omitempty"`

	Priority      int        `json:"priority"`
	Active        bool       `json:"active"`
	MatchCount    int        `json:"matchCount"`
	LastMatchedAt *time.Time `json:"lastMatchedAt,omitempty"`
	IsSystem      bool       `json:"isSystem"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MatcherPattern returns the rule's pattern in matcher form.
func (r *Rule) MatcherPattern() matcher.Pattern {
	return matcher.Pattern{Text: r.Pattern, IsRegex: r.IsRegex, CaseSensitive: r.CaseSensitive}
}

// AmountRange returns the rule's amount bounds.
func (r *Rule) AmountRange() matcher.AmountRange {
	return matcher.AmountRange{Min: r.AmountMin, Max: r.AmountMax}
}

// Assignments returns what the rule sets on a matching transaction.
func (r *Rule) Assignments() Assignments {
	return Assignments{
		CategoryID:      r.AutoCategoryID,
		AccountID:       r.AutoAccountID,
		TransactionType: r.AutoTransactionType,
		Tags:            r.AutoTags,
		Notes:           r.AutoNotes,
	}
}

// Transaction is the view of a transaction the rule engine works on.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"transactionType"`
	CategoryID  string          `json:"categoryId,omitempty"`
	AccountID   string          `json:"accountId,omitempty"`
	Tags        []string        `json:"tags"`
	Notes       string          `json:"notes,omitempty"`
}

// Assignments are the fields a matching rule writes. Nil fields leave the
// transaction untouched; tags are added to the existing ones.
type Assignments struct {
	CategoryID      *string          `json:"categoryId,omitempty"`
	AccountID       *string          `json:"accountId,omitempty"`
	TransactionType *TransactionType `json:"transactionType,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

// Empty reports whether the assignments would change nothing on any
// transaction.
func (a Assignments) Empty() bool {
	return a.CategoryID == nil && a.AccountID == nil && a.TransactionType == nil &&
		len(a.Tags) == 0 && a.Notes == nil
}

// ApplyAssignments returns txn with a applied, and whether anything changed.
// txn is not modified.
func ApplyAssignments(txn Transaction, a Assignments) (Transaction, bool) {
	out := txn
	out.Tags = append([]string(nil), txn.Tags...)
	changed := false

	if a.CategoryID != nil && *a.CategoryID != out.CategoryID {
		out.CategoryID = *a.CategoryID
		changed = true
	}
	if a.AccountID != nil && *a.AccountID != out.AccountID {
		out.AccountID = *a.AccountID
		changed = true
	}
	if a.TransactionType != nil && *a.TransactionType != out.Type {
		out.Type = *a.TransactionType
		changed = true
	}
	if a.Notes != nil && *a.Notes != out.Notes {
		out.Notes = *a.Notes
		changed = true
	}

	have := make(map[string]bool, len(out.Tags))
	for _, tag := range out.Tags {
		have[tag] = true
	}
	for _, tag := range a.Tags {
		if tag == "" || have[tag] {
			continue
		}
		have[tag] = true
		out.Tags = append(out.Tags, tag)
		changed = true
	}

	return out, changed
}
