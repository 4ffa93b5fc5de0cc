package dto

import (
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/balances"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/domain/splitter"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Database:  "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// CategoryListResponse is returned when listing categories.
type CategoryListResponse struct {
	Categories []storage.Category `json:"categories"`
}

// AccountListResponse is returned when listing accounts.
type AccountListResponse struct {
	Accounts []storage.Account `json:"accounts"`
}

// GroupListResponse is returned when listing groups.
type GroupListResponse struct {
	Groups []storage.Group `json:"groups"`
}

// BalancesResponse is returned for a group's balances.
type BalancesResponse struct {
	GroupID  string             `json:"groupId"`
	Balances []balances.Balance `json:"balances"`
}

// TransactionListResponse is returned when listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}

// TransactionResponse is a stored transaction with its split payload.
type TransactionResponse struct {
	storage.Transaction
	SplitDetails *splitter.Payload `json:"splitDetails,omitempty"`
}

// NewTransactionResponse builds the response form of a stored transaction.
func NewTransactionResponse(t storage.Transaction) TransactionResponse {
	resp := TransactionResponse{Transaction: t}
	if t.SplitMethod != "" {
		resp.SplitDetails = &splitter.Payload{Type: t.SplitMethod, Values: t.SplitValues.Floats()}
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	return resp
}

// TransactionWriteResponse is returned after a create or update.
type TransactionWriteResponse struct {
	Transaction            TransactionResponse              `json:"transaction"`
	SplitSummary           string                           `json:"splitSummary,omitempty"`
	CategoryReconciliation *splitter.CategoryReconciliation `json:"categoryReconciliation,omitempty"`
	AppliedRuleID          string                           `json:"appliedRuleId,omitempty"`
	Diagnostics            []rules.Diagnostic               `json:"diagnostics,omitempty"`
}

// RuleListResponse is returned when listing rules.
type RuleListResponse struct {
	Rules []rules.Rule `json:"rules"`
}

// BulkApplyResponse is returned by bulk apply.
type BulkApplyResponse struct {
	Processed   int                `json:"processed"`
	Updated     int                `json:"updated"`
	Diagnostics []rules.Diagnostic `json:"diagnostics,omitempty"`
}

// BulkApplyTimeoutResponse is the 504 body when bulk apply runs out of
// time. The counts cover the transactions saved before the deadline.
type BulkApplyTimeoutResponse struct {
	APIError
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
}

// SuggestResponse wraps an optional rule suggestion.
type SuggestResponse struct {
	Suggestion *rules.RuleDraft `json:"suggestion"`
}
