package service

import (
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalidArgument(fmt.Errorf("%s must use the YYYY-MM-DD format, got %q", field, s))
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(models.DateLayout)
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group, users map[string]*models.User) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, id := range g.Members {
		members[i] = api.Member{UserID: id}
		if u := users[id]; u != nil {
			members[i].Email = u.Email
			members[i].DisplayName = u.DisplayName
		}
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		CreatedBy:   g.CreatedBy,
		Members:     members,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    string(e.Category),
		Date:        formatDate(e.Date),
		SplitType:   string(e.SplitType),
		Splits:      make([]api.Split, len(e.Splits)),
		RecurringID: e.RecurringID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, s := range e.Splits {
		out.Splits[i] = api.Split{UserID: s.UserID, AmountOwed: s.AmountOwed, Paid: s.Paid}
	}
	for _, item := range e.Items {
		out.Items = append(out.Items, api.LineItem{Name: item.Name, Price: item.Price, AssignedTo: item.Assignees})
	}
	if r := e.Receipt; r != nil {
		out.Receipt = &api.Receipt{Subtotal: r.Subtotal, Tax: r.Tax, Tip: r.Tip, Itemized: r.Itemized}
	}
	return out
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toPolicy(p *api.SplitPolicy) calculator.Policy {
	if p == nil {
		return calculator.Policy{Type: models.SplitEqual}
	}
	policy := calculator.Policy{
		Type:        models.SplitType(p.Type),
		Amounts:     p.Amounts,
		Percentages: p.Percentages,
		Tax:         p.Tax,
		Tip:         p.Tip,
	}
	for _, item := range p.Items {
		policy.Items = append(policy.Items, calculator.Item{
			Description: item.Name,
			Price:       item.Price,
			AssignedTo:  item.AssignedTo,
		})
	}
	return policy
}

func toReceipt(r *api.Receipt) *models.Receipt {
	if r == nil {
		return nil
	}
	return &models.Receipt{Subtotal: r.Subtotal, Tax: r.Tax, Tip: r.Tip, Itemized: r.Itemized}
}

func toAPIPreview(p *ledger.Preview) *api.PreviewSplitResponse {
	resp := &api.PreviewSplitResponse{Shares: make([]*api.Share, len(p.Shares))}
	for i, s := range p.Shares {
		resp.Shares[i] = &api.Share{UserID: s.Participant, Amount: s.Amount}
	}
	// Breakdown follows participant order.
	for _, id := range p.Participants {
		if b, ok := p.Breakdown[id]; ok {
			resp.Breakdown = append(resp.Breakdown, &api.PersonBreakdown{
				UserID:   id,
				Subtotal: b.Subtotal,
				Extra:    b.Extra,
				Total:    b.Total,
			})
		}
	}
	return resp
}

func toAPIBalance(b calculator.MemberBalance) *api.Balance {
	return &api.Balance{
		UserID:    b.UserID,
		TotalPaid: b.TotalPaid,
		TotalOwed: b.TotalOwed,
		Net:       b.Net,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      s.Amount,
		Status:      string(s.Status),
		Note:        s.Note,
		CreatedAt:   s.CreatedAt,
		ConfirmedAt: s.ConfirmedAt,
	}
}

func toAPISettlements(settlements []*models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIRecurring(r *models.RecurringExpense) *api.Recurring {
	return &api.Recurring{
		ID:          r.ID,
		GroupID:     r.GroupID,
		PayerID:     r.PayerID,
		Amount:      r.Amount,
		Description: r.Description,
		Category:    string(r.Category),
		Frequency:   string(r.Frequency),
		DayOfMonth:  r.DayOfMonth,
		StartDate:   formatDate(r.StartDate),
		EndDate:     formatDate(r.EndDate),
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

func toAPIBudget(v ledger.BudgetView) *api.Budget {
	return &api.Budget{
		ID:           v.Budget.ID,
		GroupID:      v.Budget.GroupID,
		Category:     string(v.Budget.Category),
		Amount:       v.Budget.Amount,
		Period:       string(v.Budget.Period),
		Spent:        v.Status.Spent.Round(2),
		Remaining:    v.Status.Remaining.Round(2),
		Percentage:   v.Status.Percentage,
		IsOverBudget: v.Status.IsOverBudget,
	}
}
