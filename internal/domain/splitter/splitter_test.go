package splitter

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// mockGroups implements GroupRepository for testing
type mockGroups struct {
	mock.Mock
}

func (m *mockGroups) GetGroup(ctx context.Context, id string) (*Group, error) {
	args := m.Called(ctx, id)
	group, _ := args.Get(0).(*Group)
	return group, args.Error(1)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func people(ids ...string) []Participant {
	out := make([]Participant, len(ids))
	for i, id := range ids {
		out[i] = Participant{ID: id, Name: id}
	}
	return out
}

// amounts renders result amounts as fixed strings for comparison
func amounts(r *Result) map[string]string {
	out := make(map[string]string, len(r.Amounts))
	for k, v := range r.Amounts {
		out[k] = v.StringFixed(2)
	}
	return out
}

// TestComputeSplit_EqualAlwaysBalanced tests that equal splits balance for any total and group size
func TestComputeSplit_EqualAlwaysBalanced(t *testing.T) {
	totals := []string{"0.01", "1", "10", "33.33", "100", "99.99", "1000000.01"}
	groups := [][]string{{"a"}, {"a", "b"}, {"a", "b", "c"}, {"a", "b", "c", "d", "e", "f", "g"}}

	for _, total := range totals {
		for _, ids := range groups {
			result, err := ComputeSplit(context.Background(), Spec{Method: Equal{}, TotalAmount: d(total)}, people(ids...), nil)
			require.NoError(t, err)

			assert.Equal(t, money.StatusBalanced, result.Status(), "total %s over %d", total, len(ids))
			sum := decimal.Zero
			for _, a := range result.Amounts {
				sum = sum.Add(a)
			}
			assert.True(t, sum.Equal(d(total)), "amounts for %s over %d sum to %s", total, len(ids), sum)
			assert.Empty(t, result.Values)
		}
	}
}

// TestComputeSplit_PercentageRoundTrip tests that a percentage edit moves the status to overfunded
func TestComputeSplit_PercentageRoundTrip(t *testing.T) {
	ctx := context.Background()
	participants := people("A", "B", "C")

	// Arrange: 50/30/20 of 100
	spec := Spec{
		Method:      Percentage{Values: Values{"A": d("50"), "B": d("30"), "C": d("20")}},
		TotalAmount: d("100"),
		PayerID:     "A",
	}

	// Act
	result, err := ComputeSplit(ctx, spec, participants, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, money.StatusBalanced, result.Status())
	assert.Equal(t, "100", result.TotalAssigned().String())
	assert.Equal(t, map[string]string{"A": "50.00", "B": "30.00", "C": "20.00"}, amounts(result))

	// Act: C moves to 25
	spec.Method = Percentage{Values: Values{"A": d("50"), "B": d("30"), "C": d("25")}}
	result, err = ComputeSplit(ctx, spec, participants, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, money.StatusOverfunded, result.Status())
	assert.Equal(t, "105", result.TotalAssigned().String())
	assert.Equal(t, "-5", result.Reconciliation.Difference.String())
}

// TestComputeSplit_PercentageDefaults tests that absent participants default to 100/n
func TestComputeSplit_PercentageDefaults(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Percentage{},
		TotalAmount: d("60"),
	}, people("A", "B", "C"), nil)

	require.NoError(t, err)
	assert.Equal(t, money.StatusBalanced, result.Status())
	assert.Equal(t, "33.34", result.Values["A"].StringFixed(2))
	assert.Equal(t, "33.33", result.Values["B"].StringFixed(2))
	assert.Equal(t, "33.33", result.Values["C"].StringFixed(2))
}

// TestComputeSplit_PercentageUnderfunded tests a partial percentage assignment
func TestComputeSplit_PercentageUnderfunded(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Percentage{Values: Values{"A": d("40"), "B": d("40")}},
		TotalAmount: d("50"),
	}, people("A", "B"), nil)

	require.NoError(t, err)
	assert.Equal(t, money.StatusUnderfunded, result.Status())
	assert.Equal(t, "20", result.Reconciliation.Difference.String())
	assert.Equal(t, map[string]string{"A": "20.00", "B": "20.00"}, amounts(result))
}

// TestComputeSplit_PercentageTolerance tests the 0.1 point tolerance
func TestComputeSplit_PercentageTolerance(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Percentage{Values: Values{"A": d("33.3"), "B": d("33.3"), "C": d("33.35")}},
		TotalAmount: d("10"),
	}, people("A", "B", "C"), nil)

	require.NoError(t, err)
	assert.Equal(t, money.StatusBalanced, result.Status())
}

// TestComputeSplit_PercentageRejectsOutOfRange tests validation of percentage values
func TestComputeSplit_PercentageRejectsOutOfRange(t *testing.T) {
	ctx := context.Background()

	t.Run("over 100", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{Method: Percentage{Values: Values{"A": d("120")}}, TotalAmount: d("10")}, people("A", "B"), nil)
		require.Error(t, err)
		assert.True(t, validator.IsValidation(err))
	})

	t.Run("negative", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{Method: Percentage{Values: Values{"B": d("-1")}}, TotalAmount: d("10")}, people("A", "B"), nil)
		require.Error(t, err)
		assert.True(t, validator.IsValidation(err))
	})
}

// TestComputeSplit_CustomDefaultFill tests that absent custom values default to total/n
func TestComputeSplit_CustomDefaultFill(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Custom{},
		TotalAmount: d("90"),
	}, people("A", "B", "C"), nil)

	require.NoError(t, err)
	assert.Equal(t, money.StatusBalanced, result.Status())
	assert.Equal(t, map[string]string{"A": "30.00", "B": "30.00", "C": "30.00"}, amounts(result))
	assert.Equal(t, "90", result.TotalAssigned().String())
}

// TestComputeSplit_CustomMismatch tests custom amounts that do not cover the total
func TestComputeSplit_CustomMismatch(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Custom{Values: Values{"A": d("50"), "B": d("25")}},
		TotalAmount: d("90"),
	}, people("A", "B"), nil)

	require.NoError(t, err)
	assert.Equal(t, money.StatusUnderfunded, result.Status())
	assert.Equal(t, "15", result.Reconciliation.Difference.String())
}

// TestComputeSplit_Shares tests proportional allocation from share weights
func TestComputeSplit_Shares(t *testing.T) {
	ctx := context.Background()

	t.Run("double share pays double", func(t *testing.T) {
		result, err := ComputeSplit(ctx, Spec{
			Method:      Shares{Values: Values{"A": d("2")}},
			TotalAmount: d("90"),
		}, people("A", "B", "C"), nil)

		require.NoError(t, err)
		assert.Equal(t, money.StatusBalanced, result.Status())
		assert.Equal(t, map[string]string{"A": "45.00", "B": "22.50", "C": "22.50"}, amounts(result))
		assert.Equal(t, "1", result.Values["B"].String())
	})

	t.Run("zero share counts as one", func(t *testing.T) {
		result, err := ComputeSplit(ctx, Spec{
			Method:      Shares{Values: Values{"A": d("0"), "B": d("1")}},
			TotalAmount: d("10"),
		}, people("A", "B"), nil)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "5.00", "B": "5.00"}, amounts(result))
	})

	t.Run("residue keeps the sum exact", func(t *testing.T) {
		result, err := ComputeSplit(ctx, Spec{
			Method:      Shares{Values: Values{"A": d("1"), "B": d("1"), "C": d("1")}},
			TotalAmount: d("10"),
		}, people("A", "B", "C"), nil)

		require.NoError(t, err)
		assert.Equal(t, money.StatusBalanced, result.Status())
		assert.Equal(t, "10", result.TotalAssigned().String())
	})

	t.Run("negative share rejected", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{
			Method:      Shares{Values: Values{"A": d("-2")}},
			TotalAmount: d("10"),
		}, people("A", "B"), nil)

		require.Error(t, err)
		assert.True(t, validator.IsValidation(err))
	})
}

// TestComputeSplit_PayerIncluded tests that the payer is always a participant
func TestComputeSplit_PayerIncluded(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Equal{},
		TotalAmount: d("90"),
		PayerID:     "A",
	}, people("B", "C"), nil)

	require.NoError(t, err)
	require.Len(t, result.Participants, 3)
	assert.Equal(t, "A", result.Participants[2].ID)
	assert.True(t, result.Participants[2].IsPayer)
	assert.False(t, result.Participants[0].IsPayer)
	assert.Equal(t, map[string]string{"A": "30.00", "B": "30.00", "C": "30.00"}, amounts(result))
}

// TestComputeSplit_DuplicateParticipants tests that repeated ids count once
func TestComputeSplit_DuplicateParticipants(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Equal{},
		TotalAmount: d("20"),
	}, people("A", "A", "B"), nil)

	require.NoError(t, err)
	assert.Len(t, result.Participants, 2)
	assert.Equal(t, map[string]string{"A": "10.00", "B": "10.00"}, amounts(result))
}

// TestComputeSplit_StaleValuesDropped tests that values for removed participants are ignored
func TestComputeSplit_StaleValuesDropped(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Custom{Values: Values{"A": d("10"), "Z": d("500")}},
		TotalAmount: d("20"),
	}, people("A", "B"), nil)

	require.NoError(t, err)
	assert.NotContains(t, result.Values, "Z")
	assert.Equal(t, money.StatusBalanced, result.Status())
}

// TestComputeSplit_Errors tests the validation failures
func TestComputeSplit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no participants", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{Method: Custom{}, TotalAmount: d("10")}, nil, nil)
		assert.ErrorIs(t, err, ErrNoParticipants)
		assert.True(t, validator.IsValidation(err))
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{Method: Equal{}, TotalAmount: decimal.Zero}, people("A"), nil)
		require.Error(t, err)
		assert.True(t, validator.IsValidation(err))
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := ComputeSplit(ctx, Spec{Method: Equal{}, TotalAmount: d("-5")}, people("A"), nil)
		assert.True(t, validator.IsValidation(err))
	})

	t.Run("nil method is equal", func(t *testing.T) {
		result, err := ComputeSplit(ctx, Spec{TotalAmount: d("5")}, people("A"), nil)
		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
	})
}

// TestComputeSplit_GroupDefault tests resolution of a group's stored defaults
func TestComputeSplit_GroupDefault(t *testing.T) {
	ctx := context.Background()
	participants := people("A", "B")

	t.Run("resolves like the direct method", func(t *testing.T) {
		// Arrange
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g1").Return(&Group{
			ID:            "g1",
			DefaultMethod: KindPercentage,
			DefaultValues: Values{"A": d("60"), "B": d("40")},
		}, nil)

		direct, err := ComputeSplit(ctx, Spec{
			Method:      Percentage{Values: Values{"A": d("60"), "B": d("40")}},
			TotalAmount: d("200"),
		}, participants, nil)
		require.NoError(t, err)

		// Act
		viaGroup, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g1"}, TotalAmount: d("200")}, participants, groups)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, KindPercentage, viaGroup.Method)
		assert.Equal(t, amounts(direct), amounts(viaGroup))
		assert.Equal(t, map[string]string{"A": "120.00", "B": "80.00"}, amounts(viaGroup))
		assert.Equal(t, direct.Status(), viaGroup.Status())
		assert.True(t, direct.TotalAssigned().Equal(viaGroup.TotalAssigned()))
		assert.Equal(t, KindGroupDefault, viaGroup.Resolution.Requested)
		assert.False(t, viaGroup.Resolution.FellBack)
		groups.AssertExpectations(t)
	})

	t.Run("group without defaults is equal", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g2").Return(&Group{ID: "g2"}, nil)

		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g2"}, TotalAmount: d("10")}, participants, groups)

		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
		assert.True(t, result.Resolution.FellBack)
		assert.Equal(t, money.StatusBalanced, result.Status())
	})

	t.Run("method without values uses defaults", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g3").Return(&Group{ID: "g3", DefaultMethod: KindCustom}, nil)

		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g3"}, TotalAmount: d("10")}, participants, groups)

		require.NoError(t, err)
		assert.Equal(t, KindCustom, result.Method)
		assert.Equal(t, map[string]string{"A": "5.00", "B": "5.00"}, amounts(result))
	})

	t.Run("missing group is equal", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "nope").Return(nil, nil)

		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "nope"}, TotalAmount: d("10")}, participants, groups)

		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
		assert.Equal(t, "group not found", result.Resolution.Reason)
	})

	t.Run("lookup error is equal", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g4").Return(nil, errors.New("connection refused"))

		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g4"}, TotalAmount: d("10")}, participants, groups)

		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
		assert.Contains(t, result.Resolution.Reason, "connection refused")
	})

	t.Run("stored group default does not recurse", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g5").Return(&Group{ID: "g5", DefaultMethod: KindGroupDefault}, nil).Once()

		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g5"}, TotalAmount: d("10")}, participants, groups)

		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
		groups.AssertNumberOfCalls(t, "GetGroup", 1)
	})

	t.Run("no repository is equal", func(t *testing.T) {
		result, err := ComputeSplit(ctx, Spec{Method: GroupDefault{GroupID: "g1"}, TotalAmount: d("10")}, participants, nil)

		require.NoError(t, err)
		assert.Equal(t, KindEqual, result.Method)
	})
}

func TestNewMethod(t *testing.T) {
	m, err := NewMethod("", nil, "")
	require.NoError(t, err)
	assert.Equal(t, KindEqual, m.Kind())

	m, err = NewMethod(KindShares, Values{"A": d("2")}, "")
	require.NoError(t, err)
	assert.Equal(t, "2", ValuesOf(m)["A"].String())

	m, err = NewMethod(KindGroupDefault, nil, "g1")
	require.NoError(t, err)
	assert.Equal(t, GroupDefault{GroupID: "g1"}, m)

	_, err = NewMethod("weighted", nil, "")
	require.Error(t, err)
	assert.True(t, validator.IsValidation(err))
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{name: "object", raw: `{"A": 60, "B": 40}`, want: map[string]string{"A": "60", "B": "40"}},
		{name: "string encoded object", raw: `"{\"A\": 60, \"B\": 40}"`, want: map[string]string{"A": "60", "B": "40"}},
		{name: "empty", raw: ``, want: map[string]string{}},
		{name: "null", raw: `null`, want: map[string]string{}},
		{name: "decimal values", raw: `{"A": 33.5}`, want: map[string]string{"A": "33.5"}},
		{name: "malformed", raw: `{"A": 60`, wantErr: true},
		{name: "malformed inside string", raw: `"{A: 60}"`, wantErr: true},
		{name: "double encoded", raw: `"\"{}\""`, wantErr: true},
		{name: "array", raw: `[1, 2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := ParseValues([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := make(map[string]string, len(values))
			for k, v := range values {
				got[k] = v.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGroupParticipants(t *testing.T) {
	group := &Group{
		ID:             "g1",
		Members:        []Member{{ID: "A", Name: "Alice"}, {ID: "B", Name: "Bob"}, {ID: "C", Name: "Cara"}},
		AutoIncludeAll: true,
		DefaultPayer:   "B",
	}

	t.Run("auto include all", func(t *testing.T) {
		participants, payer := GroupParticipants(group, nil, "")

		assert.Equal(t, "B", payer)
		require.Len(t, participants, 3)
		assert.True(t, participants[1].IsPayer)
		assert.Equal(t, "Cara", participants[2].Name)
	})

	t.Run("explicit selection adds payer", func(t *testing.T) {
		participants, payer := GroupParticipants(group, []string{"A"}, "C")

		assert.Equal(t, "C", payer)
		require.Len(t, participants, 2)
		assert.Equal(t, Participant{ID: "C", Name: "Cara", IsPayer: true}, participants[1])
	})

	t.Run("no auto include", func(t *testing.T) {
		g := *group
		g.AutoIncludeAll = false
		participants, _ := GroupParticipants(&g, nil, "")

		assert.Len(t, participants, 1)
	})
}

func TestResult_Payload(t *testing.T) {
	result, err := ComputeSplit(context.Background(), Spec{
		Method:      Percentage{Values: Values{"A": d("60"), "B": d("40")}},
		TotalAmount: d("10"),
	}, people("A", "B"), nil)
	require.NoError(t, err)

	payload := result.Payload()

	assert.Equal(t, KindPercentage, payload.Type)
	assert.Equal(t, map[string]float64{"A": 60, "B": 40}, payload.Values)

	m, err := payload.Method("")
	require.NoError(t, err)
	assert.Equal(t, KindPercentage, m.Kind())
	assert.Equal(t, "60", ValuesOf(m)["A"].String())
}

func TestResult_Describe(t *testing.T) {
	ctx := context.Background()
	fc := money.DefaultFormatting()

	equal, err := ComputeSplit(ctx, Spec{Method: Equal{}, TotalAmount: d("90")}, people("A", "B"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Equal Split", equal.Describe(fc))

	custom, err := ComputeSplit(ctx, Spec{Method: Custom{}, TotalAmount: d("90")}, people("A", "B", "C"), nil)
	require.NoError(t, err)
	assert.Equal(t, "$90.00 of $90.00 assigned (balanced)", custom.Describe(fc))

	pct, err := ComputeSplit(ctx, Spec{Method: Percentage{Values: Values{"A": d("50")}}, TotalAmount: d("90")}, people("A", "B"), nil)
	require.NoError(t, err)
	assert.Equal(t, "100.0% of 100% (balanced)", pct.Describe(fc))

	euro := money.FormattingContext{CurrencySymbol: "€"}
	assert.Equal(t, "€90.00 of €90.00 assigned (balanced)", custom.Describe(euro))
}

// TestReconcileCategorySplits tests category split reconciliation against the transaction total
func TestReconcileCategorySplits(t *testing.T) {
	rows := []CategorySplit{
		{CategoryID: "cat1", Amount: d("30")},
		{CategoryID: "cat2", Amount: d("40")},
	}

	t.Run("balanced", func(t *testing.T) {
		rec := ReconcileCategorySplits(rows, d("70"))
		assert.Equal(t, money.StatusBalanced, rec.Reconciliation.Status)
		assert.Len(t, rec.Counted, 2)
	})

	t.Run("underfunded", func(t *testing.T) {
		rec := ReconcileCategorySplits(rows, d("100"))
		assert.Equal(t, money.StatusUnderfunded, rec.Reconciliation.Status)
		assert.Equal(t, "30", rec.Reconciliation.Difference.String())
	})

	t.Run("incomplete rows ignored", func(t *testing.T) {
		withBlanks := append([]CategorySplit{
			{CategoryID: "", Amount: d("10")},
			{CategoryID: "cat3", Amount: decimal.Zero},
			{CategoryID: "cat4", Amount: d("-5")},
		}, rows...)

		rec := ReconcileCategorySplits(withBlanks, d("70"))
		assert.Equal(t, money.StatusBalanced, rec.Reconciliation.Status)
		assert.Len(t, rec.Counted, 2)
	})

	t.Run("overfunded", func(t *testing.T) {
		rec := ReconcileCategorySplits(rows, d("50"))
		assert.Equal(t, money.StatusOverfunded, rec.Reconciliation.Status)
	})
}

func TestResolveTotal(t *testing.T) {
	total, err := ResolveTotal("", "70.00")
	require.NoError(t, err)
	assert.Equal(t, "70.00", total.StringFixed(2))

	total, err = ResolveTotal("55", "70")
	require.NoError(t, err)
	assert.Equal(t, "55", total.String())

	_, err = ResolveTotal("", " ")
	assert.True(t, validator.IsValidation(err))

	_, err = ResolveTotal("abc")
	assert.True(t, validator.IsValidation(err))
}

// TestReduce_Purity tests that reducing never mutates the input state
func TestReduce_Purity(t *testing.T) {
	ctx := context.Background()

	// Arrange
	state := State{
		Spec: Spec{
			Method:      Percentage{Values: Values{"A": d("50")}},
			TotalAmount: d("100"),
		},
		Participants: people("A", "B"),
	}

	// Act
	next := Reduce(ctx, state, SetValue{ParticipantID: "B", Value: d("60")}, nil)

	// Assert
	assert.Len(t, ValuesOf(state.Spec.Method), 1)
	assert.Nil(t, state.Result)
	require.NoError(t, next.Err)
	assert.Len(t, ValuesOf(next.Spec.Method), 2)
	assert.Equal(t, money.StatusOverfunded, next.Result.Status())

	// Act: another edit on the derived state leaves it alone too
	third := Reduce(ctx, next, SetValue{ParticipantID: "B", Value: d("50")}, nil)
	assert.Equal(t, "60", ValuesOf(next.Spec.Method)["B"].String())
	assert.Equal(t, money.StatusBalanced, third.Result.Status())
}

func TestReduce_Actions(t *testing.T) {
	ctx := context.Background()
	start := State{Participants: people("A", "B")}

	t.Run("amount recomputes", func(t *testing.T) {
		s := Reduce(ctx, start, nil, nil)
		require.Error(t, s.Err)
		assert.Nil(t, s.Result)

		s = Reduce(ctx, s, SetAmount{Amount: d("40")}, nil)
		require.NoError(t, s.Err)
		assert.Equal(t, map[string]string{"A": "20.00", "B": "20.00"}, amounts(s.Result))
	})

	t.Run("method switch", func(t *testing.T) {
		s := Reduce(ctx, start, SetAmount{Amount: d("40")}, nil)
		s = Reduce(ctx, s, SetMethod{Method: Custom{}}, nil)
		s = Reduce(ctx, s, SetValue{ParticipantID: "A", Value: d("10")}, nil)

		require.NoError(t, s.Err)
		assert.Equal(t, KindCustom, s.Result.Method)
		assert.Equal(t, money.StatusUnderfunded, s.Result.Status())
	})

	t.Run("value on equal ignored", func(t *testing.T) {
		s := Reduce(ctx, start, SetAmount{Amount: d("40")}, nil)
		s = Reduce(ctx, s, SetValue{ParticipantID: "A", Value: d("10")}, nil)

		require.NoError(t, s.Err)
		assert.Equal(t, KindEqual, s.Result.Method)
	})

	t.Run("value on group default materializes", func(t *testing.T) {
		groups := new(mockGroups)
		groups.On("GetGroup", mock.Anything, "g1").Return(&Group{
			ID:            "g1",
			DefaultMethod: KindPercentage,
			DefaultValues: Values{"A": d("60"), "B": d("40")},
		}, nil)

		s := Reduce(ctx, start, SetAmount{Amount: d("100")}, groups)
		s = Reduce(ctx, s, SetMethod{Method: GroupDefault{GroupID: "g1"}}, groups)
		s = Reduce(ctx, s, SetValue{ParticipantID: "B", Value: d("50")}, groups)

		require.NoError(t, s.Err)
		assert.Equal(t, KindPercentage, s.Spec.Method.Kind())
		assert.Equal(t, "110", s.Result.TotalAssigned().String())
	})

	t.Run("participants and payer", func(t *testing.T) {
		s := Reduce(ctx, start, SetAmount{Amount: d("30")}, nil)
		s = Reduce(ctx, s, SetParticipants{Participants: people("A")}, nil)
		s = Reduce(ctx, s, SetPayer{PayerID: "C"}, nil)

		require.NoError(t, s.Err)
		assert.Equal(t, map[string]string{"A": "15.00", "C": "15.00"}, amounts(s.Result))
	})
}
