package splitter

import (
	"fmt"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
)

// Payload is the split_details object attached to a transaction write:
// {"type": "percentage", "values": {"alice": 60, "bob": 40}}.
type Payload struct {
	Type   Kind               `json:"type"`
	Values map[string]float64 `json:"values"`
}

// Payload serializes the resolved method and its effective values.
func (r *Result) Payload() Payload {
	return Payload{Type: r.Method, Values: r.Values.Floats()}
}

// Method rebuilds the split method carried by the payload.
func (p Payload) Method(groupID string) (Method, error) {
	values := make(Values, len(p.Values))
	for k, v := range p.Values {
		values[k] = money.FromFloat(v)
	}
	return NewMethod(p.Type, values, groupID)
}

// Describe renders a one-line summary for display next to the split form.
func (r *Result) Describe(fc money.FormattingContext) string {
	rec := r.Reconciliation
	switch r.Method {
	case KindEqual:
		return "Equal Split"
	case KindPercentage:
		return fmt.Sprintf("%s of 100%% (%s)", fc.FormatPercent(rec.TotalAssigned), rec.Status)
	default:
		return fmt.Sprintf("%s of %s assigned (%s)", fc.Format(rec.TotalAssigned), fc.Format(rec.Target), rec.Status)
	}
}
