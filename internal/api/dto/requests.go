package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
)

// AmountField accepts an amount as a JSON number or string. Parsing and
// validation happen later so bad input becomes a field error, not a decode
// error.
type AmountField string

// UnmarshalJSON implements json.Unmarshaler.
func (a *AmountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountField(s)
		return nil
	}
	*a = AmountField(data)
	return nil
}

// TransactionListParams are the query parameters for listing transactions.
type TransactionListParams struct {
	GroupID    string `json:"groupId"`
	CategoryID string `json:"categoryId"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
}

// DefaultTransactionListParams returns default values for list params.
func DefaultTransactionListParams() TransactionListParams {
	return TransactionListParams{Limit: 50}
}

// TransactionRequest is the body of POST and PUT /api/transactions.
// The edit form sends the total as totalAmount, the create form as amount.
type TransactionRequest struct {
	Description     string      `json:"description"`
	Amount          AmountField `json:"amount"`
	TotalAmount     AmountField `json:"totalAmount,omitempty"`
	Date            string      `json:"date"`
	TransactionType string      `json:"transactionType"`
	CategoryID      string      `json:"categoryId,omitempty"`
	AccountID       string      `json:"accountId,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	Notes           string      `json:"notes,omitempty"`

	GroupID      string             `json:"groupId,omitempty"`
	PayerID      string             `json:"payerId,omitempty"`
	SplitWith    []string           `json:"splitWith,omitempty"`
	SplitMethod  splitter.Kind      `json:"splitMethod,omitempty"`
	SplitValue   map[string]float64 `json:"splitValue,omitempty"`
	SplitDetails *splitter.Payload  `json:"splitDetails,omitempty"`

	CategorySplits []splitter.CategorySplit `json:"categorySplits,omitempty"`
}

// SplitValues converts the flat splitValue map.
func (r TransactionRequest) SplitValues() splitter.Values {
	return floatValues(r.SplitValue)
}

// RuleRequest is the body of POST and PUT /api/transaction-rules.
type RuleRequest struct {
	Name          string        `json:"name"`
	Pattern       string        `json:"pattern"`
	PatternField  matcher.Field `json:"patternField"`
	IsRegex       bool          `json:"isRegex"`
	CaseSensitive bool          `json:"caseSensitive"`

	AmountMin             *decimal.Decimal      `json:"amountMin"`
	AmountMax             *decimal.Decimal      `json:"amountMax"`
	TransactionTypeFilter rules.TransactionType `json:"transactionTypeFilter"`

	AutoCategoryID      *string                `json:"autoCategoryId"`
	AutoAccountID       *string                `json:"autoAccountId"`
	AutoTransactionType *rules.TransactionType `json:"autoTransactionType"`
	AutoTags            []string               `json:"autoTags"`
	AutoNotes           *string                `json:"autoNotes"`

	Priority int   `json:"priority"`
	Active   *bool `json:"active"` // defaults to true
}

// Rule converts the request into a rule definition.
func (r RuleRequest) Rule() rules.Rule {
	active := r.Active == nil || *r.Active
	tags := r.AutoTags
	if tags == nil {
		tags = []string{}
	}
	return rules.Rule{
		Name:                  r.Name,
		Pattern:               r.Pattern,
		PatternField:          r.PatternField,
		IsRegex:               r.IsRegex,
		CaseSensitive:         r.CaseSensitive,
		AmountMin:             r.AmountMin,
		AmountMax:             r.AmountMax,
		TransactionTypeFilter: r.TransactionTypeFilter,
		AutoCategoryID:        blankToNil(r.AutoCategoryID),
		AutoAccountID:         blankToNil(r.AutoAccountID),
		AutoTransactionType:   r.AutoTransactionType,
		AutoTags:              tags,
		AutoNotes:             r.AutoNotes,
		Priority:              r.Priority,
		Active:                active,
	}
}

// SuggestRequest is the body of POST /api/transaction-rules/suggest.
type SuggestRequest struct {
	TransactionID string `json:"transactionId"`
	CategoryID    string `json:"categoryId"`
}

// SplitPreviewRequest is the body of POST /api/splits/preview.
type SplitPreviewRequest struct {
	GroupID     string             `json:"groupId,omitempty"`
	Amount      AmountField        `json:"amount"`
	PayerID     string             `json:"payerId,omitempty"`
	SplitWith   []string           `json:"splitWith,omitempty"`
	SplitMethod splitter.Kind      `json:"splitMethod,omitempty"`
	SplitValue  map[string]float64 `json:"splitValue,omitempty"`

	// Edit applies one value change on top of the state above.
	Edit *SplitEdit `json:"edit,omitempty"`
}

// SplitValues converts the flat splitValue map.
func (r SplitPreviewRequest) SplitValues() splitter.Values {
	return floatValues(r.SplitValue)
}

// SplitEdit is a single participant value change.
type SplitEdit struct {
	ParticipantID string  `json:"participantId"`
	Value         float64 `json:"value"`
}

// GroupRequest is the body of POST /api/groups.
type GroupRequest struct {
	ID                 string             `json:"id,omitempty"`
	Name               string             `json:"name"`
	DefaultSplitMethod splitter.Kind      `json:"defaultSplitMethod"`
	DefaultSplitValues map[string]float64 `json:"defaultSplitValues"`
	Members            []splitter.Member  `json:"members"`
	AutoIncludeAll     bool               `json:"autoIncludeAll"`
	DefaultPayer       string             `json:"defaultPayer,omitempty"`
}

// SplitValues converts the default values.
func (r GroupRequest) SplitValues() splitter.Values {
	return floatValues(r.DefaultSplitValues)
}

func floatValues(in map[string]float64) splitter.Values {
	if len(in) == 0 {
		return nil
	}
	out := make(splitter.Values, len(in))
	for k, v := range in {
		out[k] = money.FromFloat(v)
	}
	return out
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
