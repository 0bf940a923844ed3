package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	UserID    string
	TotalPaid decimal.Decimal // Sum of expense amounts this person paid
	TotalOwed decimal.Decimal // Sum of this person's split amounts
	Net       decimal.Decimal // Positive = owed money, Negative = owes money
}

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

// Balance aggregates what participant paid and owes across expenses.
func Balance(participant string, expenses []*models.Expense) MemberBalance {
	bal := MemberBalance{UserID: participant}
	for _, e := range expenses {
		if e.PayerID == participant {
			bal.TotalPaid = bal.TotalPaid.Add(e.Amount)
		}
		if split, ok := e.SplitFor(participant); ok {
			bal.TotalOwed = bal.TotalOwed.Add(split.AmountOwed)
		}
	}
	bal.Net = bal.TotalPaid.Sub(bal.TotalOwed)
	return bal
}

// GroupBalances computes a balance for every member in one pass over the
// group's expenses. Members with no activity get zero balances. Anyone who
// paid or owes in expenses without being listed in members (e.g. a former
// member) is appended after the members, so the nets always sum to zero.
//
// Algorithm:
// - For each expense: payer contributed +amount, each participant owes their split
// - Aggregate: net = total_paid - total_owed
func GroupBalances(members []string, expenses []*models.Expense) []MemberBalance {
	balances := make(map[string]*MemberBalance, len(members))
	order := make([]string, 0, len(members))

	get := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{UserID: id}
		balances[id] = b
		order = append(order, id)
		return b
	}

	for _, m := range members {
		get(m)
	}

	for _, e := range expenses {
		payer := get(e.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		for _, s := range e.Splits {
			owed := get(s.UserID)
			owed.TotalOwed = owed.TotalOwed.Add(s.AmountOwed)
		}
	}

	result := make([]MemberBalance, len(order))
	for i, id := range order {
		b := balances[id]
		b.Net = b.TotalPaid.Sub(b.TotalOwed)
		result[i] = *b
	}
	return result
}

// ApplySettlements returns a copy of balances with confirmed settlements
// subtracted: the payer's net improves, the receiver's net drops. Pending
// settlements are ignored.
func ApplySettlements(balances []MemberBalance, settlements []*models.Settlement) []MemberBalance {
	out := make([]MemberBalance, len(balances))
	copy(out, balances)
	index := make(map[string]int, len(out))
	for i, b := range out {
		index[b.UserID] = i
	}

	for _, s := range settlements {
		if s.Status != models.SettlementConfirmed {
			continue
		}
		if i, ok := index[s.FromUserID]; ok {
			out[i].TotalPaid = out[i].TotalPaid.Add(s.Amount)
		}
		if i, ok := index[s.ToUserID]; ok {
			out[i].TotalOwed = out[i].TotalOwed.Add(s.Amount)
		}
	}
	for i := range out {
		out[i].Net = out[i].TotalPaid.Sub(out[i].TotalOwed)
	}
	return out
}

// SimplifyDebts turns net balances into a short list of payments that would
// clear them, matching the largest debtors with the largest creditors.
func SimplifyDebts(balances []MemberBalance) []DebtEdge {
	type entry struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []entry
	for _, b := range balances {
		switch b.Net.Sign() {
		case 1:
			creditors = append(creditors, entry{b.UserID, b.Net})
		case -1:
			debtors = append(debtors, entry{b.UserID, b.Net.Neg()})
		}
	}

	// Largest first; ties broken by ID so the output is stable.
	byAmount := func(list []entry) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return list[i].id < list[j].id
		}
	}
	sort.Slice(creditors, byAmount(creditors))
	sort.Slice(debtors, byAmount(debtors))

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if !debtors[i].amount.IsPositive() {
			i++
		}
		if !creditors[j].amount.IsPositive() {
			j++
		}
	}
	return edges
}
