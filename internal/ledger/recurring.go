package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// RecurringInput describes a monthly expense template. The actor pays.
type RecurringInput struct {
	GroupID     string
	Amount      decimal.Decimal
	Description string
	Category    string
	Frequency   string
	DayOfMonth  int
	StartDate   time.Time
	EndDate     time.Time
}

// CreateRecurring stores an active template.
func (l *Ledger) CreateRecurring(ctx context.Context, actor string, in RecurringInput) (*models.RecurringExpense, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, invalid("description is required")
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	if in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		return nil, invalid("day_of_month must be between 1 and 31, got %d", in.DayOfMonth)
	}
	frequency := models.Frequency(in.Frequency)
	if frequency == "" {
		frequency = models.FrequencyMonthly
	}
	if frequency != models.FrequencyMonthly {
		return nil, invalid("unsupported frequency %q", in.Frequency)
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, invalid("%v", err)
	}
	start, end := civilOrZero(in.StartDate), civilOrZero(in.EndDate)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, invalid("end_date is before start_date")
	}

	if _, err := l.memberGroup(ctx, l.store, in.GroupID, actor); err != nil {
		return nil, err
	}

	r := &models.RecurringExpense{
		GroupID:     in.GroupID,
		PayerID:     actor,
		Amount:      amount,
		Description: description,
		Category:    category,
		Frequency:   frequency,
		DayOfMonth:  in.DayOfMonth,
		StartDate:   start,
		EndDate:     end,
		Active:      true,
		CreatedAt:   l.now().Unix(),
	}
	if err := l.store.CreateRecurring(ctx, r); err != nil {
		return nil, translate(err)
	}

	slog.InfoContext(ctx, "Recurring expense created", "recurring_id", r.ID, "group_id", r.GroupID, "day_of_month", r.DayOfMonth)
	l.metrics.Write("recurring.create")
	return r, nil
}

// ListRecurring returns a group's templates.
func (l *Ledger) ListRecurring(ctx context.Context, actor, groupID string) ([]*models.RecurringExpense, error) {
	if _, err := l.memberGroup(ctx, l.store, groupID, actor); err != nil {
		return nil, err
	}
	return l.store.ListRecurring(ctx, storage.RecurringFilter{GroupID: groupID})
}

// ToggleRecurring flips a template between active and paused. Payer only.
func (l *Ledger) ToggleRecurring(ctx context.Context, actor, recurringID string) (*models.RecurringExpense, error) {
	var r *models.RecurringExpense
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		if r, err = l.ownedRecurring(ctx, tx, actor, recurringID); err != nil {
			return err
		}
		r.Active = !r.Active
		return translate(tx.SetRecurringActive(ctx, r.ID, r.Active))
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Recurring expense toggled", "recurring_id", r.ID, "active", r.Active)
	l.metrics.Write("recurring.toggle")
	return r, nil
}

// DeleteRecurring removes a template. Expenses it produced are kept.
func (l *Ledger) DeleteRecurring(ctx context.Context, actor, recurringID string) error {
	err := l.store.WithTx(ctx, func(tx storage.Store) error {
		if _, err := l.ownedRecurring(ctx, tx, actor, recurringID); err != nil {
			return err
		}
		return translate(tx.DeleteRecurring(ctx, recurringID))
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Recurring expense deleted", "recurring_id", recurringID)
	l.metrics.Write("recurring.delete")
	return nil
}

func (l *Ledger) ownedRecurring(ctx context.Context, store storage.Store, actor, recurringID string) (*models.RecurringExpense, error) {
	r, err := store.GetRecurring(ctx, recurringID)
	if err != nil {
		return nil, translate(err)
	}
	if r.PayerID != actor {
		return nil, denied("only the payer can change recurring expense %s", recurringID)
	}
	return r, nil
}

func civilOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return civilDate(t)
}

// AutoSuffix marks descriptions of expenses created from templates.
const AutoSuffix = " (Auto)"

// MaterializeRecurring creates the expense a template owes for period,
// dated day and split equally over the group's current members. It returns
// nil without error when the period was already materialized.
func (l *Ledger) MaterializeRecurring(ctx context.Context, r *models.RecurringExpense, day time.Time, period string) (*models.Expense, error) {
	done, err := l.store.HasRecurringExpense(ctx, r.ID, period)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, nil
	}

	group, err := l.store.GetGroup(ctx, r.GroupID)
	if err != nil {
		return nil, translate(err)
	}
	if !group.HasMember(r.PayerID) {
		return nil, invalid("payer %s left group %s", r.PayerID, r.GroupID)
	}

	shares, err := calculator.ComputeSplits(r.Amount, group.Members, calculator.Policy{Type: models.SplitEqual})
	if err != nil {
		return nil, splitError(err)
	}

	now := l.now().Unix()
	expense := &models.Expense{
		GroupID:         r.GroupID,
		PayerID:         r.PayerID,
		Amount:          r.Amount.Round(2),
		Description:     r.Description + AutoSuffix,
		Category:        r.Category,
		Date:            civilDate(day),
		SplitType:       models.SplitEqual,
		Splits:          toSplits(shares, r.PayerID),
		RecurringID:     r.ID,
		RecurringPeriod: period,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = l.writeExpense(ctx, l.store, expense)
	if errors.Is(err, storage.ErrConflict) {
		// Another run got there first.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.committed(ctx, "recurring.materialize",
		events.New(events.RecurringMaterialized, expense.GroupID, expense.ID, r.PayerID).WithAmount(expense.Amount.StringFixed(2)))
	return expense, nil
}
