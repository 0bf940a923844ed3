package calculator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Epsilon is the tolerance allowed between caller-supplied shares and the
// amount they must add up to. Results are always reconciled exactly.
var Epsilon = decimal.New(1, -2)

var hundred = decimal.NewFromInt(100)

var (
	ErrNoParticipants       = errors.New("must have at least one participant")
	ErrInvalidTotal         = errors.New("total must be greater than zero")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrUnknownParticipant   = errors.New("share assigned to someone who is not a participant")
	ErrNegativeShare        = errors.New("shares cannot be negative")
	ErrUnassignedItem       = errors.New("item must be assigned to at least one participant")
	ErrUnknownPolicy        = errors.New("unknown split policy")
)

// MismatchError reports caller-supplied shares that do not reconcile with
// the amount they must sum to.
type MismatchError struct {
	Policy   models.SplitType
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

// Delta is Actual minus Expected.
func (e *MismatchError) Delta() decimal.Decimal {
	return e.Actual.Sub(e.Expected)
}

func (e *MismatchError) Error() string {
	if e.Policy == models.SplitPercentage {
		return fmt.Sprintf("percentages sum to %s%%, expected 100%% (off by %s)",
			e.Actual.String(), e.Delta().String())
	}
	return fmt.Sprintf("%s split sums to %s, expected %s (off by %s)",
		e.Policy, e.Actual.StringFixed(2), e.Expected.StringFixed(2), e.Delta().StringFixed(2))
}

// Share is one participant's computed portion of an expense.
type Share struct {
	Participant string
	Amount      decimal.Decimal
}

// Item represents a single itemized line on a receipt.
type Item struct {
	Description string
	Price       decimal.Decimal
	AssignedTo  []string
}

// PersonSplit is one participant's itemized breakdown.
type PersonSplit struct {
	Subtotal decimal.Decimal // Sum of this person's item shares
	Extra    decimal.Decimal // Proportional share of tax and tip
	Total    decimal.Decimal
}

// Policy selects how ComputeSplits distributes a total.
// Only the fields relevant to Type are read.
type Policy struct {
	Type models.SplitType

	// Amounts holds explicit shares for SplitCustom.
	Amounts map[string]decimal.Decimal

	// Percentages holds per-participant percentages for SplitPercentage.
	Percentages map[string]decimal.Decimal

	// Items, Tax and Tip drive SplitItemized.
	Items []Item
	Tax   decimal.Decimal
	Tip   decimal.Decimal
}

// ComputeSplits distributes total (rounded to cents) among participants
// according to policy. The returned shares follow the order of participants
// and sum exactly to the rounded total.
//
// Equal splits give every participant floor(total/n) and hand the leftover
// cents, one each, to the first participants in order.
func ComputeSplits(total decimal.Decimal, participants []string, policy Policy) ([]Share, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	total = total.Round(2)
	if total.Sign() <= 0 {
		return nil, ErrInvalidTotal
	}
	if err := checkUnique(participants); err != nil {
		return nil, err
	}

	switch policy.Type {
	case models.SplitEqual, "":
		return splitEqual(total, participants), nil
	case models.SplitCustom:
		return splitCustom(total, participants, policy.Amounts)
	case models.SplitPercentage:
		return splitPercentage(total, participants, policy.Percentages)
	case models.SplitItemized:
		return splitItemized(total, participants, policy)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy.Type)
	}
}

func splitEqual(total decimal.Decimal, participants []string) []Share {
	cents := divideCents(toCents(total), len(participants))
	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{Participant: p, Amount: fromCents(cents[i])}
	}
	return shares
}

func splitCustom(total decimal.Decimal, participants []string, amounts map[string]decimal.Decimal) ([]Share, error) {
	if err := checkKeys(participants, amounts); err != nil {
		return nil, err
	}
	shares := make([]Share, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		amount := amounts[p].Round(2)
		if amount.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s owes %s", ErrNegativeShare, p, amount.StringFixed(2))
		}
		shares[i] = Share{Participant: p, Amount: amount}
		sum = sum.Add(amount)
	}
	if sum.Sub(total).Abs().GreaterThan(Epsilon) {
		return nil, &MismatchError{Policy: models.SplitCustom, Expected: total, Actual: sum}
	}
	reconcile(shares, total)
	return shares, nil
}

func splitPercentage(total decimal.Decimal, participants []string, percentages map[string]decimal.Decimal) ([]Share, error) {
	if err := checkKeys(participants, percentages); err != nil {
		return nil, err
	}
	sum := decimal.Zero
	for _, p := range participants {
		pct := percentages[p]
		if pct.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s has %s%%", ErrNegativeShare, p, pct.String())
		}
		sum = sum.Add(pct)
	}
	if sum.Sub(hundred).Abs().GreaterThan(Epsilon) {
		return nil, &MismatchError{Policy: models.SplitPercentage, Expected: hundred, Actual: sum}
	}

	// Largest remainder in whole cents: everyone gets the floor of their
	// exact share, then leftover cents go out by descending fractional part,
	// ties to the earlier participant. Weights use the actual sum, so the
	// floors never exceed the total.
	totalCents := toCents(total)
	whole := decimal.NewFromInt(totalCents)
	cents := make([]int64, len(participants))
	fractions := make([]decimal.Decimal, len(participants))
	var allocated int64
	for i, p := range participants {
		exact := whole.Mul(percentages[p]).Div(sum)
		floor := exact.Floor()
		cents[i] = floor.IntPart()
		fractions[i] = exact.Sub(floor)
		allocated += cents[i]
	}
	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fractions[order[a]].GreaterThan(fractions[order[b]])
	})
	for k := 0; allocated < totalCents; k++ {
		cents[order[k%len(order)]]++
		allocated++
	}

	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{Participant: p, Amount: fromCents(cents[i])}
	}
	return shares, nil
}

func splitItemized(total decimal.Decimal, participants []string, policy Policy) ([]Share, error) {
	splits, err := Itemize(policy.Items, participants, policy.Tax, policy.Tip)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		shares[i] = Share{Participant: p, Amount: splits[p].Total}
		sum = sum.Add(splits[p].Total)
	}
	if sum.Sub(total).Abs().GreaterThan(Epsilon) {
		return nil, &MismatchError{Policy: models.SplitItemized, Expected: total, Actual: sum}
	}
	reconcile(shares, total)
	return shares, nil
}

// Itemize computes each participant's item subtotal and proportional share
// of tax and tip. Each item's price is divided evenly among its assignees,
// with leftover cents going to the first assignees. Tax and tip are shared
// as extra * person_subtotal / items_subtotal, so participants without items
// pay none of it. When the items subtotal is zero, tax and tip are not
// distributed.
func Itemize(items []Item, participants []string, tax, tip decimal.Decimal) (map[string]*PersonSplit, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if tax.Sign() < 0 || tip.Sign() < 0 {
		return nil, fmt.Errorf("%w: tax and tip must be >= 0", ErrNegativeShare)
	}
	extra := tax.Round(2).Add(tip.Round(2))

	splits := make(map[string]*PersonSplit, len(participants))
	for _, p := range participants {
		splits[p] = &PersonSplit{Subtotal: decimal.Zero, Extra: decimal.Zero, Total: decimal.Zero}
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if len(item.AssignedTo) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnassignedItem, item.Description)
		}
		if err := checkUnique(item.AssignedTo); err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Description, err)
		}
		price := item.Price.Round(2)
		if price.Sign() < 0 {
			return nil, fmt.Errorf("%w: item %q costs %s", ErrNegativeShare, item.Description, price.StringFixed(2))
		}

		parts := divideCents(toCents(price), len(item.AssignedTo))
		for i, person := range item.AssignedTo {
			split, ok := splits[person]
			if !ok {
				return nil, fmt.Errorf("%w: %s on item %q", ErrUnknownParticipant, person, item.Description)
			}
			split.Subtotal = split.Subtotal.Add(fromCents(parts[i]))
		}
		subtotal = subtotal.Add(price)
	}

	if subtotal.IsPositive() && extra.IsPositive() {
		distributed := decimal.Zero
		last := ""
		for _, p := range participants {
			split := splits[p]
			if !split.Subtotal.IsPositive() {
				continue
			}
			split.Extra = extra.Mul(split.Subtotal).Div(subtotal).Round(2)
			distributed = distributed.Add(split.Extra)
			last = p
		}
		// Rounding leftovers go to the last participant who has items.
		splits[last].Extra = splits[last].Extra.Add(extra.Sub(distributed))
	}

	for _, split := range splits {
		split.Total = split.Subtotal.Add(split.Extra)
	}
	return splits, nil
}

// reconcile makes shares sum to total. A shortfall goes to the last share
// with a non-zero amount, or the last share if every amount is zero. An
// excess is taken back one cent at a time from the last share forward,
// skipping shares that are already zero.
func reconcile(shares []Share, total decimal.Decimal) {
	cents := make([]int64, len(shares))
	var sum int64
	for i, s := range shares {
		cents[i] = toCents(s.Amount)
		sum += cents[i]
	}
	residual := toCents(total) - sum
	if residual > 0 {
		idx := len(cents) - 1
		for i := len(cents) - 1; i >= 0; i-- {
			if cents[i] != 0 {
				idx = i
				break
			}
		}
		cents[idx] += residual
	}
	for residual < 0 {
		for i := len(cents) - 1; i >= 0 && residual < 0; i-- {
			if cents[i] > 0 {
				cents[i]--
				residual++
			}
		}
	}
	for i := range shares {
		shares[i].Amount = fromCents(cents[i])
	}
}

// divideCents splits cents into n parts that differ by at most one cent;
// the larger parts come first.
func divideCents(cents int64, n int) []int64 {
	parts := make([]int64, n)
	base := cents / int64(n)
	rem := cents % int64(n)
	for i := range parts {
		parts[i] = base
		if int64(i) < rem {
			parts[i]++
		}
	}
	return parts
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func checkUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, id)
		}
		seen[id] = true
	}
	return nil
}

func checkKeys(participants []string, values map[string]decimal.Decimal) error {
	allowed := make(map[string]bool, len(participants))
	for _, p := range participants {
		allowed[p] = true
	}
	for k := range values {
		if !allowed[k] {
			return fmt.Errorf("%w: %s", ErrUnknownParticipant, k)
		}
	}
	return nil
}
