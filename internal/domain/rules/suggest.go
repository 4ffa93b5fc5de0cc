package rules

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
)

// SuggestedPriority is the priority given to suggested rules.
const SuggestedPriority = 50

// similarDistance is the largest edit distance at which an existing pattern
// counts as a near duplicate of a suggestion.
const similarDistance = 3

// RuleDraft is a proposed rule awaiting user confirmation.
type RuleDraft struct {
	Name           string        `json:"name"`
	Pattern        string        `json:"pattern"`
	PatternField   matcher.Field `json:"patternField"`
	AutoCategoryID string        `json:"autoCategoryId"`
	AutoAccountID  string        `json:"autoAccountId,omitempty"`
	Priority       int           `json:"priority"`
	Active         bool          `json:"active"`

	// SimilarRuleID points at an existing rule whose pattern is nearly the
	// same, so the user can edit it instead.
	SimilarRuleID string `json:"similarRuleId,omitempty"`
}

// Rule converts the draft into a rule ready to be saved.
func (d RuleDraft) Rule() Rule {
	r := Rule{
		Name:         d.Name,
		Pattern:      d.Pattern,
		PatternField: d.PatternField,
		Priority:     d.Priority,
		Active:       d.Active,
	}
	if d.AutoCategoryID != "" {
		category := d.AutoCategoryID
		r.AutoCategoryID = &category
	}
	if d.AutoAccountID != "" {
		account := d.AutoAccountID
		r.AutoAccountID = &account
	}
	return r
}

// Suggest proposes a rule after txn was manually moved to newCategoryID.
// It returns nil when the description is blank, the category did not
// change, or an existing rule already puts txn in that category. Nothing is
// saved.
func (e *Engine) Suggest(txn Transaction, newCategoryID string, existing []Rule) *RuleDraft {
	description := strings.TrimSpace(txn.Description)
	if description == "" || newCategoryID == "" || newCategoryID == txn.CategoryID {
		return nil
	}

	ev := e.Evaluate(txn, existing)
	if ev.Matched() && ev.Rule.AutoCategoryID != nil && *ev.Rule.AutoCategoryID == newCategoryID {
		return nil
	}

	draft := &RuleDraft{
		Name:           description,
		Pattern:        description,
		PatternField:   matcher.FieldDescription,
		AutoCategoryID: newCategoryID,
		AutoAccountID:  txn.AccountID,
		Priority:       SuggestedPriority,
		Active:         true,
		SimilarRuleID:  similarRule(description, existing),
	}
	return draft
}

// similarRule returns the id of the closest existing literal description
// rule within similarDistance edits, or "".
func similarRule(pattern string, existing []Rule) string {
	target := strings.ToLower(pattern)
	best, bestID := similarDistance+1, ""
	for _, r := range existing {
		if r.IsRegex || (r.PatternField != "" && r.PatternField != matcher.FieldDescription) {
			continue
		}
		dist := levenshtein.ComputeDistance(target, strings.ToLower(r.Pattern))
		if dist < best {
			best, bestID = dist, r.ID
		}
	}
	return bestID
}
