package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// ExpenseInput describes a new expense.
type ExpenseInput struct {
	GroupID string
	// PayerID defaults to the actor.
	PayerID     string
	Amount      decimal.Decimal
	Description string
	Category    string
	// Date defaults to today.
	Date time.Time
	// Participants default to every current group member.
	Participants []string
	Policy       calculator.Policy
	Receipt      *models.Receipt
}

// ExpenseUpdate carries the editable fields; nil fields are left alone.
type ExpenseUpdate struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
}

// SearchQuery narrows SearchExpenses. An empty GroupID searches every
// expense the actor paid for or shares in.
type SearchQuery struct {
	GroupID  string
	Text     string
	Category string
	Limit    int
}

// Preview is the outcome of a split computation that was not persisted.
type Preview struct {
	Participants []string
	Shares       []calculator.Share
	// Breakdown is set for itemized policies.
	Breakdown map[string]*calculator.PersonSplit
}

// PreviewSplit computes shares without writing anything. With a GroupID the
// actor must be a member and participants default to the members.
func (l *Ledger) PreviewSplit(ctx context.Context, actor string, in ExpenseInput) (*Preview, error) {
	participants := in.Participants
	if in.GroupID != "" {
		group, err := l.memberGroup(ctx, l.store, in.GroupID, actor)
		if err != nil {
			return nil, err
		}
		if participants, err = resolveParticipants(group, in.Participants); err != nil {
			return nil, err
		}
	}

	shares, err := calculator.ComputeSplits(in.Amount, participants, in.Policy)
	if err != nil {
		return nil, splitError(err)
	}
	preview := &Preview{Participants: participants, Shares: shares}
	if in.Policy.Type == models.SplitItemized {
		preview.Breakdown, err = calculator.Itemize(in.Policy.Items, participants, in.Policy.Tax, in.Policy.Tip)
		if err != nil {
			return nil, splitError(err)
		}
	}
	return preview, nil
}

// CreateExpense validates input, computes splits and writes the expense, its
// line items and its splits in one transaction.
func (l *Ledger) CreateExpense(ctx context.Context, actor string, in ExpenseInput) (*models.Expense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalid("description is required")
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, invalid("%v", err)
	}

	group, err := l.memberGroup(ctx, l.store, in.GroupID, actor)
	if err != nil {
		return nil, err
	}
	payer := in.PayerID
	if payer == "" {
		payer = actor
	}
	if !group.HasMember(payer) {
		return nil, invalid("payer %s is not a member of the group", payer)
	}
	participants, err := resolveParticipants(group, in.Participants)
	if err != nil {
		return nil, err
	}

	shares, err := calculator.ComputeSplits(in.Amount, participants, in.Policy)
	if err != nil {
		return nil, splitError(err)
	}

	date := in.Date
	if date.IsZero() {
		date = l.today()
	}
	policy := in.Policy.Type
	if policy == "" {
		policy = models.SplitEqual
	}

	now := l.now().Unix()
	expense := &models.Expense{
		GroupID:     group.ID,
		PayerID:     payer,
		Amount:      in.Amount.Round(2),
		Description: description,
		Category:    category,
		Date:        civilDate(date),
		SplitType:   policy,
		Receipt:     in.Receipt,
		Splits:      toSplits(shares, payer),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if policy == models.SplitItemized {
		expense.Items = toLineItems(in.Policy.Items)
		if expense.Receipt == nil {
			expense.Receipt = itemizedReceipt(in.Policy)
		}
	}

	if err := l.writeExpense(ctx, l.store, expense); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.StringFixed(2),
		"participants", len(expense.Splits),
	)
	l.committed(ctx, "expense.create",
		events.New(events.ExpenseCreated, expense.GroupID, expense.ID, actor).WithAmount(expense.Amount.StringFixed(2)))
	return expense, nil
}

// writeExpense inserts the expense and its splits atomically.
func (l *Ledger) writeExpense(ctx context.Context, store storage.Store, expense *models.Expense) error {
	return store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateExpense(ctx, expense); err != nil {
			return translate(err)
		}
		for i := range expense.Splits {
			expense.Splits[i].ExpenseID = expense.ID
		}
		return tx.InsertSplits(ctx, expense.ID, expense.Splits)
	})
}

// GetExpense returns an expense visible to actor.
func (l *Ledger) GetExpense(ctx context.Context, actor, expenseID string) (*models.Expense, error) {
	expense, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, translate(err)
	}
	if _, err := l.memberGroup(ctx, l.store, expense.GroupID, actor); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense edits an expense. Only the payer may edit. A new amount is
// redistributed equally over the existing participants in stored order.
func (l *Ledger) UpdateExpense(ctx context.Context, actor, expenseID string, upd ExpenseUpdate) (*models.Expense, error) {
	if upd.Amount == nil && upd.Description == nil && upd.Category == nil {
		return nil, invalid("nothing to update")
	}

	var updated *models.Expense
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return translate(err)
		}
		if expense.PayerID != actor {
			return denied("only the payer can edit expense %s", expenseID)
		}

		if upd.Description != nil {
			d := strings.TrimSpace(*upd.Description)
			if d == "" {
				return invalid("description cannot be empty")
			}
			expense.Description = d
		}
		if upd.Category != nil {
			c, err := models.ParseCategory(*upd.Category)
			if err != nil {
				return invalid("%v", err)
			}
			expense.Category = c
		}

		resplit := upd.Amount != nil && !upd.Amount.Round(2).Equal(expense.Amount)
		if resplit {
			shares, err := calculator.ComputeSplits(*upd.Amount, expense.Participants(), calculator.Policy{Type: models.SplitEqual})
			if err != nil {
				return splitError(err)
			}
			expense.Amount = upd.Amount.Round(2)
			expense.SplitType = models.SplitEqual
			expense.Splits = toSplits(shares, expense.PayerID)
			for i := range expense.Splits {
				expense.Splits[i].ExpenseID = expense.ID
			}
		}

		expense.UpdatedAt = l.now().Unix()
		if err := tx.UpdateExpense(ctx, expense); err != nil {
			return translate(err)
		}
		if resplit {
			if err := tx.DeleteSplits(ctx, expense.ID); err != nil {
				return err
			}
			if err := tx.InsertSplits(ctx, expense.ID, expense.Splits); err != nil {
				return err
			}
		}
		updated = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", updated.ID, "group_id", updated.GroupID)
	l.committed(ctx, "expense.update",
		events.New(events.ExpenseUpdated, updated.GroupID, updated.ID, actor).WithAmount(updated.Amount.StringFixed(2)))
	return updated, nil
}

// DeleteExpense removes an expense. Only the payer may delete.
func (l *Ledger) DeleteExpense(ctx context.Context, actor, expenseID string) error {
	var groupID string
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		expense, err := tx.GetExpense(ctx, expenseID)
		if err != nil {
			return translate(err)
		}
		if expense.PayerID != actor {
			return denied("only the payer can delete expense %s", expenseID)
		}
		groupID = expense.GroupID
		return translate(tx.DeleteExpense(ctx, expenseID))
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Expense deleted", "expense_id", expenseID, "group_id", groupID)
	l.committed(ctx, "expense.delete", events.New(events.ExpenseDeleted, groupID, expenseID, actor))
	return nil
}

// ListGroupExpenses returns a group's expenses, newest first.
func (l *Ledger) ListGroupExpenses(ctx context.Context, actor, groupID string, limit int) ([]*models.Expense, error) {
	if _, err := l.memberGroup(ctx, l.store, groupID, actor); err != nil {
		return nil, err
	}
	expenses, err := l.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: groupID, Limit: clampLimit(limit)})
	return expenses, translate(err)
}

// SearchExpenses matches description text and category.
func (l *Ledger) SearchExpenses(ctx context.Context, actor string, q SearchQuery) ([]*models.Expense, error) {
	filter := storage.ExpenseFilter{
		Search: strings.TrimSpace(q.Text),
		Limit:  clampLimit(q.Limit),
	}
	if q.Category != "" {
		c, err := models.ParseCategory(q.Category)
		if err != nil {
			return nil, invalid("%v", err)
		}
		filter.Category = c
	}
	if q.GroupID != "" {
		if _, err := l.memberGroup(ctx, l.store, q.GroupID, actor); err != nil {
			return nil, err
		}
		filter.GroupID = q.GroupID
	} else {
		filter.UserID = actor
	}

	expenses, err := l.store.ListExpenses(ctx, filter)
	return expenses, translate(err)
}

// resolveParticipants defaults to every member and rejects non-members.
func resolveParticipants(group *models.Group, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return append([]string(nil), group.Members...), nil
	}
	for _, p := range requested {
		if !group.HasMember(p) {
			return nil, invalid("participant %s is not a member of the group", p)
		}
	}
	return requested, nil
}

func toSplits(shares []calculator.Share, payer string) []models.Split {
	splits := make([]models.Split, len(shares))
	for i, s := range shares {
		splits[i] = models.Split{
			UserID:     s.Participant,
			AmountOwed: s.Amount,
			Paid:       s.Participant == payer,
		}
	}
	return splits
}

func toLineItems(items []calculator.Item) []models.LineItem {
	out := make([]models.LineItem, len(items))
	for i, item := range items {
		out[i] = models.LineItem{
			Name:      item.Description,
			Price:     item.Price.Round(2),
			Assignees: item.AssignedTo,
		}
	}
	return out
}

func itemizedReceipt(p calculator.Policy) *models.Receipt {
	subtotal := decimal.Zero
	for _, item := range p.Items {
		subtotal = subtotal.Add(item.Price.Round(2))
	}
	return &models.Receipt{
		Subtotal: subtotal,
		Tax:      p.Tax.Round(2),
		Tip:      p.Tip.Round(2),
		Itemized: true,
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}
