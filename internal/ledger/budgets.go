package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// BudgetInput describes a spending ceiling. An empty GroupID covers every group.
type BudgetInput struct {
	GroupID  string
	Category string
	Amount   decimal.Decimal
	Period   string
}

// BudgetView is a budget with its evaluation for the current period.
type BudgetView struct {
	Budget *models.Budget
	Status calculator.BudgetStatus
}

// SetBudget creates or replaces the actor's budget for a category and scope.
func (l *Ledger) SetBudget(ctx context.Context, actor string, in BudgetInput) (*BudgetView, error) {
	if in.Category == "" {
		return nil, invalid("category is required")
	}
	category, err := models.ParseCategory(in.Category)
	if err != nil {
		return nil, invalid("%v", err)
	}
	amount := in.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, invalid("amount must be greater than zero")
	}
	period := models.BudgetPeriod(in.Period)
	if period == "" {
		period = models.BudgetMonthly
	}
	if period != models.BudgetMonthly {
		return nil, invalid("unsupported period %q", in.Period)
	}
	if in.GroupID != "" {
		if _, err := l.memberGroup(ctx, l.store, in.GroupID, actor); err != nil {
			return nil, err
		}
	}

	budget := &models.Budget{
		OwnerID:  actor,
		GroupID:  in.GroupID,
		Category: category,
		Amount:   amount,
		Period:   period,
	}
	if err := l.store.UpsertBudget(ctx, budget); err != nil {
		return nil, translate(err)
	}
	slog.InfoContext(ctx, "Budget set", "budget_id", budget.ID, "category", category, "group_id", in.GroupID)
	l.metrics.Write("budget.set")

	status, err := l.evaluate(ctx, budget)
	if err != nil {
		return nil, err
	}
	return &BudgetView{Budget: budget, Status: status}, nil
}

// ListBudgets returns the actor's budgets for a scope, each evaluated
// against spend since the start of the current month.
func (l *Ledger) ListBudgets(ctx context.Context, actor, groupID string) ([]BudgetView, error) {
	if groupID != "" {
		if _, err := l.memberGroup(ctx, l.store, groupID, actor); err != nil {
			return nil, err
		}
	}
	budgets, err := l.store.ListBudgets(ctx, storage.BudgetFilter{OwnerID: actor, GroupID: groupID})
	if err != nil {
		return nil, err
	}

	views := make([]BudgetView, len(budgets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.budgetConcurrency)
	for i, b := range budgets {
		g.Go(func() error {
			status, err := l.evaluate(gctx, b)
			if err != nil {
				return err
			}
			views[i] = BudgetView{Budget: b, Status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// DeleteBudget removes a budget. Owner only.
func (l *Ledger) DeleteBudget(ctx context.Context, actor, budgetID string) error {
	budget, err := l.store.GetBudget(ctx, budgetID)
	if err != nil {
		return translate(err)
	}
	if budget.OwnerID != actor {
		return denied("budget %s belongs to someone else", budgetID)
	}
	if err := l.store.DeleteBudget(ctx, budgetID); err != nil {
		return translate(err)
	}
	slog.InfoContext(ctx, "Budget deleted", "budget_id", budgetID)
	l.metrics.Write("budget.delete")
	return nil
}

// evaluate sums the owner's shares in the budget's category this month.
func (l *Ledger) evaluate(ctx context.Context, b *models.Budget) (calculator.BudgetStatus, error) {
	expenses, err := l.store.ListExpenses(ctx, storage.ExpenseFilter{
		GroupID:  b.GroupID,
		UserID:   b.OwnerID,
		Category: b.Category,
		Since:    calculator.MonthStart(l.now()),
	})
	if err != nil {
		return calculator.BudgetStatus{}, err
	}
	return calculator.EvaluateBudget(b.Amount, calculator.SumOwed(b.OwnerID, expenses)), nil
}
