// Package rules evaluates categorization rules against transactions.
//
// Rules run in priority order (highest first, ties in input order) and the
// first matching rule wins. A rule matches when all of its filters pass:
//   - transaction type filter, if set
//   - inclusive bounds on the absolute amount, if set
//   - the pattern test on the description or on the amount text
//
// A rule whose pattern cannot be compiled is skipped and reported as a
// Diagnostic. It never stops the remaining rules from running.
//
// Example usage:
//
//	engine := rules.NewEngine()
//	ev := engine.Evaluate(txn, ruleSet)
//	if ev.Rule != nil {
//		txn, _ = rules.ApplyAssignments(txn, ev.Assignments)
//	}
package rules

import (
	"fmt"
	"sort"
	"time"

	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
)

// Diagnostic reports a rule that could not be evaluated.
type Diagnostic struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

// Evaluation is the outcome of evaluating one transaction.
type Evaluation struct {
	// Rule is the matching rule with its match counters already advanced,
	// or nil when nothing matched.
	Rule        *Rule
	Assignments Assignments
	Diagnostics []Diagnostic
}

// Matched reports whether a rule matched.
func (e Evaluation) Matched() bool {
	return e.Rule != nil
}

// Engine evaluates rules. It is safe for concurrent use.
type Engine struct {
	now   func() time.Time
	cache *matcher.Cache
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for LastMatchedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithCache shares a compiled-pattern cache between engines.
func WithCache(c *matcher.Cache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

// NewEngine creates a rule engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:   time.Now,
		cache: matcher.NewCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Prune drops compiled patterns that no rule in rules uses, so edited and
// deleted rules do not pin their matchers for the life of the engine.
func (e *Engine) Prune(rules []Rule) int {
	keep := make([]matcher.Pattern, len(rules))
	for i := range rules {
		keep[i] = rules[i].MatcherPattern()
	}
	return e.cache.Retain(keep)
}

// Ordered returns the active rules sorted by priority, highest first.
// Rules with equal priority keep their input order.
func Ordered(rules []Rule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

// Evaluate finds the first rule matching txn. The input rules are not
// modified.
func (e *Engine) Evaluate(txn Transaction, rules []Rule) Evaluation {
	return e.evaluate(txn, Ordered(rules))
}

func (e *Engine) evaluate(txn Transaction, ordered []Rule) Evaluation {
	var ev Evaluation
	for i := range ordered {
		r := &ordered[i]
		ok, err := e.matches(r, txn)
		if err != nil {
			ev.Diagnostics = append(ev.Diagnostics, Diagnostic{
				RuleID:   r.ID,
				RuleName: r.Name,
				Message:  err.Error(),
				Err:      err,
			})
			continue
		}
		if !ok {
			continue
		}

		matched := *r
		matched.MatchCount++
		now := e.now()
		matched.LastMatchedAt = &now
		ev.Rule = &matched
		ev.Assignments = matched.Assignments()
		return ev
	}
	return ev
}

// Outcome is the result of applying rules to one transaction until it
// stops changing.
type Outcome struct {
	Transaction Transaction
	Changed     bool

	// RuleID is the last rule whose assignments changed the transaction.
	// When nothing changed it is the first matching rule, if any.
	RuleID string

	// Matched holds each matching rule once, in the order it first matched,
	// with its counters advanced.
	Matched     []*Rule
	Diagnostics []Diagnostic
}

// Apply evaluates txn and applies the winning rule's assignments, then
// evaluates the result again until no rule changes it. A rule that rewrites
// the transaction type can hand the transaction to a rule filtered on the
// new type; settling here keeps a later run over the result a no-op. The
// number of passes is bounded by the number of active rules.
func (e *Engine) Apply(txn Transaction, rules []Rule) Outcome {
	return e.apply(txn, Ordered(rules))
}

func (e *Engine) apply(txn Transaction, ordered []Rule) Outcome {
	out := Outcome{Transaction: txn}
	seen := make(map[string]bool)
	reported := make(map[string]bool)

	for pass := 0; pass < len(ordered); pass++ {
		ev := e.evaluate(out.Transaction, ordered)
		for _, d := range ev.Diagnostics {
			if !reported[d.RuleID] {
				reported[d.RuleID] = true
				out.Diagnostics = append(out.Diagnostics, d)
			}
		}
		if !ev.Matched() {
			break
		}
		if !seen[ev.Rule.ID] {
			seen[ev.Rule.ID] = true
			out.Matched = append(out.Matched, ev.Rule)
			if out.RuleID == "" {
				out.RuleID = ev.Rule.ID
			}
		}

		updated, changed := ApplyAssignments(out.Transaction, ev.Assignments)
		if !changed {
			break
		}
		out.Transaction = updated
		out.Changed = true
		out.RuleID = ev.Rule.ID
	}
	return out
}

func (e *Engine) matches(r *Rule, txn Transaction) (bool, error) {
	if r.TransactionTypeFilter != "" && r.TransactionTypeFilter != txn.Type {
		return false, nil
	}
	if !r.AmountRange().Contains(txn.Amount) {
		return false, nil
	}

	var value string
	switch r.PatternField {
	case matcher.FieldDescription, "":
		value = txn.Description
	case matcher.FieldAmount:
		value = matcher.AmountText(txn.Amount)
	default:
		return false, fmt.Errorf("unknown pattern field %q", r.PatternField)
	}

	m, err := e.cache.Get(r.MatcherPattern())
	if err != nil {
		return false, err
	}
	return m.Match(value), nil
}
