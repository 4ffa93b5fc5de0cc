package splitter

import (
	"context"

	"github.com/shopspring/decimal"
)

// State is the live state of a split form. Result and Err are derived: every
// Reduce recomputes them from Spec and Participants.
type State struct {
	Spec         Spec
	Participants []Participant
	Result       *Result
	Err          error
}

// Action is a single edit applied to a State.
type Action interface {
	apply(ctx context.Context, s *State, groups GroupRepository)
}

// SetAmount changes the transaction total.
type SetAmount struct{ Amount decimal.Decimal }

// SetMethod switches the split method.
type SetMethod struct{ Method Method }

// SetValue changes one participant's entered value.
type SetValue struct {
	ParticipantID string
	Value         decimal.Decimal
}

// SetParticipants replaces the split-with selection.
type SetParticipants struct{ Participants []Participant }

// SetPayer changes who paid.
type SetPayer struct{ PayerID string }

func (a SetAmount) apply(_ context.Context, s *State, _ GroupRepository) {
	s.Spec.TotalAmount = a.Amount
}

func (a SetMethod) apply(_ context.Context, s *State, _ GroupRepository) {
	m := a.Method
	if v := ValuesOf(m); v != nil {
		m = withValues(m, v.Clone())
	}
	s.Spec.Method = m
}

// A value edit on a group default materializes the group's resolved method
// so the edit has something to apply to. Equal has no values to edit.
func (a SetValue) apply(ctx context.Context, s *State, groups GroupRepository) {
	m := s.Spec.Method
	if _, ok := m.(GroupDefault); ok {
		m, _ = resolve(ctx, m, groups)
	}
	values := ValuesOf(m)
	switch m.(type) {
	case Percentage, Custom, Shares:
	default:
		return
	}
	values = values.Clone()
	values[a.ParticipantID] = a.Value
	s.Spec.Method = withValues(m, values)
}

func (a SetParticipants) apply(_ context.Context, s *State, _ GroupRepository) {
	s.Participants = append([]Participant(nil), a.Participants...)
}

func (a SetPayer) apply(_ context.Context, s *State, _ GroupRepository) {
	s.Spec.PayerID = a.PayerID
}

// Reduce applies action to a copy of state and recomputes the split. The
// input state is never modified.
func Reduce(ctx context.Context, state State, action Action, groups GroupRepository) State {
	next := State{
		Spec:         state.Spec,
		Participants: append([]Participant(nil), state.Participants...),
	}
	if next.Spec.Method == nil {
		next.Spec.Method = Equal{}
	}
	if v := ValuesOf(next.Spec.Method); v != nil {
		next.Spec.Method = withValues(next.Spec.Method, v.Clone())
	}

	if action != nil {
		action.apply(ctx, &next, groups)
	}

	next.Result, next.Err = ComputeSplit(ctx, next.Spec, next.Participants, groups)
	return next
}
