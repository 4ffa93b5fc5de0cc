// Package allocator distributes a total across weighted parts.
//
// The pro-rata allocator divides a total proportionally to each part's
// weight and rounds every share to a fixed number of places:
//
//	share_i = round(total * weight_i / sum(weights), places)
//
// Rounding residue is added to the largest share so the shares always sum to
// exactly the (rounded) total. Equal splits are the special case where every
// weight is 1.
package allocator

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Part is a weighted recipient of an allocation.
type Part struct {
	Key    string
	Weight decimal.Decimal
}

// Allocation is the share assigned to a single part.
type Allocation struct {
	Key    string
	Weight decimal.Decimal
	Amount decimal.Decimal
}

// Result contains the allocation results in input order.
type Result struct {
	Allocations    []Allocation
	TotalAllocated decimal.Decimal
}

// ByKey returns the allocations as a map keyed by part key.
func (r *Result) ByKey() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(r.Allocations))
	for _, a := range r.Allocations {
		out[a.Key] = a.Amount
	}
	return out
}

var (
	ErrNoParts        = errors.New("no parts to allocate")
	ErrNegativeTotal  = errors.New("total cannot be negative")
	ErrNegativeWeight = errors.New("weight cannot be negative")
)

// Allocate distributes total across parts proportionally to their weights,
// rounding each share to places decimal places.
func Allocate(parts []Part, total decimal.Decimal, places int32) (*Result, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	if total.IsNegative() {
		return nil, ErrNegativeTotal
	}

	totalWeight := decimal.Zero
	for _, p := range parts {
		if p.Weight.IsNegative() {
			return nil, ErrNegativeWeight
		}
		totalWeight = totalWeight.Add(p.Weight)
	}

	allocations := make([]Allocation, len(parts))

	if totalWeight.IsZero() {
		// Nothing carries weight - distribute nothing
		for i, p := range parts {
			allocations[i] = Allocation{Key: p.Key, Weight: p.Weight, Amount: decimal.Zero}
		}
		return &Result{Allocations: allocations, TotalAllocated: decimal.Zero}, nil
	}

	target := total.Round(places)
	allocated := decimal.Zero
	for i, p := range parts {
		share := total.Mul(p.Weight).Div(totalWeight).Round(places)
		allocations[i] = Allocation{Key: p.Key, Weight: p.Weight, Amount: share}
		allocated = allocated.Add(share)
	}

	// Fix rounding - the largest share absorbs the residue
	if diff := target.Sub(allocated); !diff.IsZero() {
		maxIdx := 0
		for i, a := range allocations {
			if a.Amount.GreaterThan(allocations[maxIdx].Amount) {
				maxIdx = i
			}
		}
		allocations[maxIdx].Amount = allocations[maxIdx].Amount.Add(diff)
		allocated = allocated.Add(diff)
	}

	return &Result{
		Allocations:    allocations,
		TotalAllocated: allocated,
	}, nil
}

// Equal splits total evenly across keys. The first key absorbs any rounding
// residue.
func Equal(keys []string, total decimal.Decimal, places int32) (*Result, error) {
	parts := make([]Part, len(keys))
	for i, k := range keys {
		parts[i] = Part{Key: k, Weight: decimal.NewFromInt(1)}
	}
	return Allocate(parts, total, places)
}
