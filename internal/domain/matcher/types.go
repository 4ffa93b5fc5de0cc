package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Field names the transaction field a pattern is tested against.
type Field string

const (
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
)

// Pattern is a text pattern as stored on a rule.
type Pattern struct {
	Text          string
	IsRegex       bool
	CaseSensitive bool
}

// key identifies a compiled pattern in the cache.
func (p Pattern) key() string {
	return fmt.Sprintf("%t|%t|%s", p.IsRegex, p.CaseSensitive, p.Text)
}

// AmountRange bounds the absolute value of an amount. Nil bounds are open.
type AmountRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// Contains reports whether |amount| falls inside the range, bounds included.
func (r AmountRange) Contains(amount decimal.Decimal) bool {
	abs := amount.Abs()
	if r.Min != nil && abs.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && abs.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// Valid reports whether the range is non-empty.
func (r AmountRange) Valid() bool {
	return r.Min == nil || r.Max == nil || r.Min.LessThanOrEqual(*r.Max)
}

// AmountText renders an amount the way amount patterns see it: absolute
// value with two decimals, e.g. "12.50".
func AmountText(amount decimal.Decimal) string {
	return amount.Abs().StringFixed(2)
}
