package rules

import (
	"context"
)

// Change records a transaction rewritten by bulk apply.
type Change struct {
	RuleID string      `json:"ruleId"`
	Before Transaction `json:"before"`
	After  Transaction `json:"after"`
}

// BulkResult summarizes a bulk apply run.
type BulkResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`

	Changes []Change `json:"-"`

	// MatchDeltas counts matches per rule id. Every positive match counts,
	// whether or not the transaction changed, so repeated runs keep
	// advancing the counters while Updated drops to zero. A rule counts at
	// most once per transaction.
	MatchDeltas map[string]int `json:"-"`

	// Diagnostics holds at most one entry per failing rule.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// BulkApply re-evaluates every transaction against rules, settling each one
// the way Apply does. Only transactions whose fields actually change are
// reported in Changes, which makes a second run over the result a no-op. The
// context is checked between transactions; on cancellation the partial
// result is returned with ctx.Err().
func (e *Engine) BulkApply(ctx context.Context, txns []Transaction, rules []Rule) (*BulkResult, error) {
	ordered := Ordered(rules)
	result := &BulkResult{
		MatchDeltas: make(map[string]int),
	}
	reported := make(map[string]bool)

	for _, txn := range txns {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Processed++

		out := e.apply(txn, ordered)
		for _, d := range out.Diagnostics {
			if !reported[d.RuleID] {
				reported[d.RuleID] = true
				result.Diagnostics = append(result.Diagnostics, d)
			}
		}
		for _, r := range out.Matched {
			result.MatchDeltas[r.ID]++
		}
		if !out.Changed {
			continue
		}
		result.Updated++
		result.Changes = append(result.Changes, Change{RuleID: out.RuleID, Before: txn, After: out.Transaction})
	}

	return result, nil
}
