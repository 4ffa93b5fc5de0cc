// Package money provides the currency arithmetic shared by the split and
// rule engines.
//
// All amounts are decimal.Decimal so that allocations and reconciliation
// never accumulate float error. Reconciliation compares an assigned total
// against a target within a tolerance:
//
//	|assigned - target| <  epsilon  -> balanced
//	 assigned < target              -> underfunded
//	 assigned > target              -> overfunded
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Status is the reconciliation outcome of an allocation.
type Status string

const (
	StatusBalanced    Status = "balanced"
	StatusUnderfunded Status = "underfunded"
	StatusOverfunded  Status = "overfunded"
)

// Tolerances used when reconciling allocations.
var (
	// AmountEpsilon applies to currency-valued allocations (custom, category splits).
	AmountEpsilon = decimal.RequireFromString("0.01")

	// PercentEpsilon applies to percentage allocations (in percentage points).
	PercentEpsilon = decimal.RequireFromString("0.1")

	// Hundred is the percentage target.
	Hundred = decimal.NewFromInt(100)
)

// Reconciliation describes how an assigned total compares to its target.
type Reconciliation struct {
	Status        Status          `json:"status"`
	TotalAssigned decimal.Decimal `json:"total_assigned"`
	Target        decimal.Decimal `json:"target"`

	// Difference is target - assigned. Positive means there is still
	// something left to assign.
	Difference decimal.Decimal `json:"difference"`
}

// Reconcile compares assigned against target using the given epsilon.
func Reconcile(assigned, target, epsilon decimal.Decimal) Reconciliation {
	diff := target.Sub(assigned)

	status := StatusBalanced
	if diff.Abs().GreaterThanOrEqual(epsilon) {
		if diff.IsPositive() {
			status = StatusUnderfunded
		} else {
			status = StatusOverfunded
		}
	}

	return Reconciliation{
		Status:        status,
		TotalAssigned: assigned,
		Target:        target,
		Difference:    diff,
	}
}

// Balanced reports whether the reconciliation is within tolerance.
func (r Reconciliation) Balanced() bool {
	return r.Status == StatusBalanced
}

// Sum adds the given amounts. An empty slice sums to zero.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// RoundCents rounds an amount to 2 decimal places (half away from zero).
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ParseAmount parses user input into an amount. Surrounding whitespace and
// thousands separators are ignored.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount %q is not a number", raw)
	}
	return d, nil
}

// FromFloat converts a float input value (as entered in a form) to a decimal.
func FromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
