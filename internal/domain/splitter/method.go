package splitter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// Kind is the wire name of a split method.
type Kind string

const (
	KindEqual        Kind = "equal"
	KindPercentage   Kind = "percentage"
	KindCustom       Kind = "custom"
	KindShares       Kind = "shares"
	KindGroupDefault Kind = "group_default"
)

// Kinds lists every split method in display order.
var Kinds = []Kind{KindEqual, KindPercentage, KindCustom, KindShares, KindGroupDefault}

// Values maps participant ids to the number entered for them: a percentage,
// an absolute amount or a share weight depending on the method.
type Values map[string]decimal.Decimal

// Clone returns a copy of v. A nil map clones to an empty one.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Floats converts the values to float64 for wire payloads.
func (v Values) Floats() map[string]float64 {
	out := make(map[string]float64, len(v))
	for k, val := range v {
		out[k] = val.InexactFloat64()
	}
	return out
}

// Method is one of Equal, Percentage, Custom, Shares or GroupDefault.
type Method interface {
	Kind() Kind
	isMethod()
}

// Equal divides the amount evenly. It carries no values.
type Equal struct{}

// Percentage assigns each participant a percentage of the total.
type Percentage struct{ Values Values }

// Custom assigns each participant an absolute amount.
type Custom struct{ Values Values }

// Shares divides the total proportionally to relative weights.
type Shares struct{ Values Values }

// GroupDefault defers to the referenced group's stored default method.
type GroupDefault struct{ GroupID string }

func (Equal) Kind() Kind        { return KindEqual }
func (Percentage) Kind() Kind   { return KindPercentage }
func (Custom) Kind() Kind       { return KindCustom }
func (Shares) Kind() Kind       { return KindShares }
func (GroupDefault) Kind() Kind { return KindGroupDefault }

func (Equal) isMethod()        {}
func (Percentage) isMethod()   {}
func (Custom) isMethod()       {}
func (Shares) isMethod()       {}
func (GroupDefault) isMethod() {}

// NewMethod builds a Method from its wire form.
func NewMethod(kind Kind, values Values, groupID string) (Method, error) {
	switch kind {
	case KindEqual, "":
		return Equal{}, nil
	case KindPercentage:
		return Percentage{Values: values.Clone()}, nil
	case KindCustom:
		return Custom{Values: values.Clone()}, nil
	case KindShares:
		return Shares{Values: values.Clone()}, nil
	case KindGroupDefault:
		return GroupDefault{GroupID: groupID}, nil
	default:
		return nil, validator.Newf("split_method", "unknown split method %q", kind)
	}
}

// ValuesOf returns the values carried by m (nil for Equal and GroupDefault).
func ValuesOf(m Method) Values {
	switch mm := m.(type) {
	case Percentage:
		return mm.Values
	case Custom:
		return mm.Values
	case Shares:
		return mm.Values
	default:
		return nil
	}
}

// withValues returns m carrying v. Methods without values are returned as is.
func withValues(m Method, v Values) Method {
	switch m.(type) {
	case Percentage:
		return Percentage{Values: v}
	case Custom:
		return Custom{Values: v}
	case Shares:
		return Shares{Values: v}
	default:
		return m
	}
}

// ParseValues decodes stored split values. The stored form is either a JSON
// object ({"alice": 60}) or a JSON string holding such an object
// ("{\"alice\": 60}"). Empty input and null decode to an empty map.
func ParseValues(raw []byte) (Values, error) {
	return parseValues(raw, true)
}

func parseValues(raw []byte, allowString bool) (Values, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Values{}, nil
	}

	if trimmed[0] == '"' {
		if !allowString {
			return nil, fmt.Errorf("split values are double-encoded")
		}
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fmt.Errorf("decode split values string: %w", err)
		}
		return parseValues([]byte(inner), false)
	}

	var values Values
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return nil, fmt.Errorf("decode split values: %w", err)
	}
	if values == nil {
		values = Values{}
	}
	return values, nil
}
