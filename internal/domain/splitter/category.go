package splitter

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// CategorySplit assigns part of a transaction to a category.
type CategorySplit struct {
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

// CategoryReconciliation is the result of reconciling category splits
// against the transaction total.
type CategoryReconciliation struct {
	Counted        []CategorySplit      `json:"counted"`
	Reconciliation money.Reconciliation `json:"reconciliation"`
}

// ReconcileCategorySplits sums the rows that have both a category and a
// positive amount and compares the sum against total. Incomplete rows are
// ignored rather than rejected.
func ReconcileCategorySplits(rows []CategorySplit, total decimal.Decimal) CategoryReconciliation {
	counted := make([]CategorySplit, 0, len(rows))
	assigned := decimal.Zero
	for _, row := range rows {
		if strings.TrimSpace(row.CategoryID) == "" || !row.Amount.IsPositive() {
			continue
		}
		counted = append(counted, row)
		assigned = assigned.Add(row.Amount)
	}
	return CategoryReconciliation{
		Counted:        counted,
		Reconciliation: money.Reconcile(assigned, total, money.AmountEpsilon),
	}
}

// ResolveTotal returns the transaction's declared total. The edit form and
// the create form carry it in different fields, so the first non-empty
// source wins.
func ResolveTotal(sources ...string) (decimal.Decimal, error) {
	for _, raw := range sources {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		return validator.ParsePositiveAmount("amount", raw)
	}
	return decimal.Zero, validator.New("amount", "is required")
}
