// Package balances nets a group's ledger of split transactions into a
// short who-owes-whom list.
package balances

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
)

// Entry is one split transaction in a group ledger.
type Entry struct {
	PayerID string
	// Owed is what each participant owes for this transaction, the payer's
	// own share included.
	Owed map[string]decimal.Decimal
}

// Balance is a net amount one member owes another.
type Balance struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Net computes each member's position: positive means they are owed money,
// negative means they owe. The payer is credited with the sum of the owed
// amounts so positions always sum to zero. Every member in members appears
// in the result even without activity.
func Net(entries []Entry, members []string) map[string]decimal.Decimal {
	net := make(map[string]decimal.Decimal, len(members))
	for _, id := range members {
		net[id] = decimal.Zero
	}

	for _, e := range entries {
		if e.PayerID == "" {
			continue
		}
		for id, owed := range e.Owed {
			net[e.PayerID] = net[e.PayerID].Add(owed)
			net[id] = net[id].Sub(owed)
		}
	}
	return net
}

type position struct {
	id     string
	amount decimal.Decimal
}

// Settle turns net positions into transfers by repeatedly matching the
// largest debtor with the largest creditor. Transfers under one cent are
// dropped. The result is sorted by amount descending, then by From and To.
func Settle(net map[string]decimal.Decimal) []Balance {
	var creditors, debtors []position
	for id, amount := range net {
		amount = money.RoundCents(amount)
		switch {
		case amount.GreaterThanOrEqual(money.AmountEpsilon):
			creditors = append(creditors, position{id: id, amount: amount})
		case amount.Neg().GreaterThanOrEqual(money.AmountEpsilon):
			debtors = append(debtors, position{id: id, amount: amount.Neg()})
		}
	}
	byLargest := func(ps []position) {
		sort.Slice(ps, func(i, j int) bool {
			if !ps[i].amount.Equal(ps[j].amount) {
				return ps[i].amount.GreaterThan(ps[j].amount)
			}
			return ps[i].id < ps[j].id
		})
	}
	byLargest(creditors)
	byLargest(debtors)

	var out []Balance
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		pay := decimal.Min(debtors[i].amount, creditors[j].amount)
		if pay.GreaterThanOrEqual(money.AmountEpsilon) {
			out = append(out, Balance{From: debtors[i].id, To: creditors[j].id, Amount: pay})
		}
		debtors[i].amount = debtors[i].amount.Sub(pay)
		creditors[j].amount = creditors[j].amount.Sub(pay)
		if debtors[i].amount.LessThan(money.AmountEpsilon) {
			i++
		}
		if creditors[j].amount.LessThan(money.AmountEpsilon) {
			j++
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].Amount.Equal(out[b].Amount) {
			return out[a].Amount.GreaterThan(out[b].Amount)
		}
		if out[a].From != out[b].From {
			return out[a].From < out[b].From
		}
		return out[a].To < out[b].To
	})
	return out
}

// Compute nets entries and settles them.
func Compute(entries []Entry, members []string) []Balance {
	return Settle(Net(entries, members))
}
