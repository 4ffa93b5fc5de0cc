// Package splitter computes how a transaction amount divides among the
// members of a shared-expense group.
//
// Supported methods:
//   - equal: total / n for everyone, always balanced
//   - percentage: each participant's percentage of the total, reconciled against 100
//   - custom: absolute amounts, reconciled against the total
//   - shares: relative weights, amount_i = total * shares_i / sum(shares)
//   - group_default: the referenced group's stored method and values
//
// Example usage:
//
//	spec := splitter.Spec{Method: splitter.Percentage{Values: vals}, TotalAmount: total, PayerID: "alice"}
//	result, err := splitter.ComputeSplit(ctx, spec, participants, groups)
//	if err == nil && result.Status() != money.StatusBalanced {
//		// surface the mismatch, it never blocks submission
//	}
package splitter

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/allocator"
	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// ErrNoParticipants is returned when there is nobody to split with.
var ErrNoParticipants = validator.New("participants", "select participants to split with")

// Participant takes part in a single split computation.
type Participant struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IsPayer bool   `json:"is_payer"`
}

// Spec describes the split requested for one transaction.
type Spec struct {
	Method      Method
	TotalAmount decimal.Decimal
	PayerID     string
}

// Result is the outcome of a split computation.
type Result struct {
	Method       Kind
	Resolution   Resolution
	Participants []Participant

	// Values holds the effective input per participant after defaults were
	// filled in: percentages, amounts or share weights. Empty for equal.
	Values Values

	// Amounts is what each participant owes, in currency.
	Amounts map[string]decimal.Decimal

	Reconciliation money.Reconciliation
}

// Status returns the reconciliation status.
func (r *Result) Status() money.Status {
	return r.Reconciliation.Status
}

// TotalAssigned returns the assigned total (percentage points for the
// percentage method, currency otherwise).
func (r *Result) TotalAssigned() decimal.Decimal {
	return r.Reconciliation.TotalAssigned
}

// ComputeSplit divides spec.TotalAmount among participants. The payer is
// always included even when missing from the selection. groups may be nil,
// in which case group_default falls back to equal.
func ComputeSplit(ctx context.Context, spec Spec, participants []Participant, groups GroupRepository) (*Result, error) {
	if spec.Method == nil {
		spec.Method = Equal{}
	}
	if err := validator.ValidatePositiveAmount("amount", spec.TotalAmount); err != nil {
		return nil, err
	}

	method, resolution := resolve(ctx, spec.Method, groups)

	people := withPayer(dedupe(participants), spec.PayerID, "")
	if len(people) == 0 {
		return nil, ErrNoParticipants
	}
	ids := make([]string, len(people))
	for i, p := range people {
		ids[i] = p.ID
	}

	result := &Result{
		Method:       method.Kind(),
		Resolution:   resolution,
		Participants: people,
	}

	var err error
	switch m := method.(type) {
	case Equal:
		err = computeEqual(result, ids, spec.TotalAmount)
	case Percentage:
		err = computePercentage(result, ids, m.Values, spec.TotalAmount)
	case Custom:
		err = computeCustom(result, ids, m.Values, spec.TotalAmount)
	case Shares:
		err = computeShares(result, ids, m.Values, spec.TotalAmount)
	default:
		err = fmt.Errorf("unsupported split method %T", method)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func computeEqual(r *Result, ids []string, total decimal.Decimal) error {
	alloc, err := allocator.Equal(ids, total, 2)
	if err != nil {
		return err
	}
	r.Values = Values{}
	r.Amounts = alloc.ByKey()
	r.Reconciliation = money.Reconcile(total, total, money.AmountEpsilon)
	return nil
}

func computePercentage(r *Result, ids []string, given Values, total decimal.Decimal) error {
	defaults, err := allocator.Equal(ids, money.Hundred, 2)
	if err != nil {
		return err
	}
	values, err := fillValues(ids, given, defaults.ByKey())
	if err != nil {
		return err
	}
	for id, pct := range values {
		if pct.GreaterThan(money.Hundred) {
			return validator.Newf("values."+id, "percentage cannot exceed 100 (got %s)", pct.String())
		}
	}

	r.Values = values
	r.Amounts = make(map[string]decimal.Decimal, len(ids))
	assigned := decimal.Zero
	for _, id := range ids {
		assigned = assigned.Add(values[id])
		r.Amounts[id] = money.RoundCents(total.Mul(values[id]).Div(money.Hundred))
	}
	r.Reconciliation = money.Reconcile(assigned, money.Hundred, money.PercentEpsilon)
	return nil
}

func computeCustom(r *Result, ids []string, given Values, total decimal.Decimal) error {
	defaults, err := allocator.Equal(ids, total, 2)
	if err != nil {
		return err
	}
	values, err := fillValues(ids, given, defaults.ByKey())
	if err != nil {
		return err
	}

	r.Values = values
	r.Amounts = make(map[string]decimal.Decimal, len(ids))
	assigned := decimal.Zero
	for _, id := range ids {
		assigned = assigned.Add(values[id])
		r.Amounts[id] = values[id]
	}
	r.Reconciliation = money.Reconcile(assigned, total, money.AmountEpsilon)
	return nil
}

// computeShares treats missing and zero weights as one share.
func computeShares(r *Result, ids []string, given Values, total decimal.Decimal) error {
	one := decimal.NewFromInt(1)
	weights := make(Values, len(ids))
	parts := make([]allocator.Part, len(ids))
	for i, id := range ids {
		w, ok := given[id]
		if ok && w.IsNegative() {
			return validator.Newf("values."+id, "shares cannot be negative (got %s)", w.String())
		}
		if !ok || w.IsZero() {
			w = one
		}
		weights[id] = w
		parts[i] = allocator.Part{Key: id, Weight: w}
	}

	alloc, err := allocator.Allocate(parts, total, 2)
	if err != nil {
		return err
	}

	r.Values = weights
	r.Amounts = alloc.ByKey()
	r.Reconciliation = money.Reconcile(alloc.TotalAllocated, total, money.AmountEpsilon)
	return nil
}

// fillValues takes the given value for each participant, or its default.
// Values for ids outside the participant set are dropped.
func fillValues(ids []string, given, defaults Values) (Values, error) {
	out := make(Values, len(ids))
	for _, id := range ids {
		v, ok := given[id]
		if !ok {
			out[id] = defaults[id]
			continue
		}
		if v.IsNegative() {
			return nil, validator.Newf("values."+id, "cannot be negative (got %s)", v.String())
		}
		out[id] = v
	}
	return out, nil
}

// dedupe drops repeated and blank participant ids, keeping the first.
func dedupe(participants []Participant) []Participant {
	seen := make(map[string]bool, len(participants))
	out := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}

// withPayer marks the payer, appending them when they were not selected.
func withPayer(participants []Participant, payerID, payerName string) []Participant {
	if payerID == "" {
		return participants
	}
	out := make([]Participant, 0, len(participants)+1)
	found := false
	for _, p := range participants {
		p.IsPayer = p.ID == payerID
		if p.IsPayer {
			found = true
		}
		out = append(out, p)
	}
	if !found {
		out = append(out, Participant{ID: payerID, Name: payerName, IsPayer: true})
	}
	return out
}
