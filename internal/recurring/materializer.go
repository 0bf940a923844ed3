// Package recurring turns monthly expense templates into expenses.
package recurring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// PeriodLayout formats the idempotency period of a monthly template.
const PeriodLayout = "2006-01"

// Materializer creates due expenses from active templates.
type Materializer struct {
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
}

// NewMaterializer creates a materializer. m may be nil.
func NewMaterializer(l *ledger.Ledger, m *metrics.Metrics) *Materializer {
	return &Materializer{ledger: l, metrics: m}
}

// Due reports whether r should produce an expense on day. A day-of-month
// past the end of the month falls on the month's last day.
func Due(r *models.RecurringExpense, day time.Time) bool {
	if !r.Active || r.Frequency != models.FrequencyMonthly || !r.InWindow(day) {
		return false
	}
	target := r.DayOfMonth
	if last := lastDayOfMonth(day); target > last {
		target = last
	}
	return day.Day() == target
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RunOnce materializes every template due on today. It returns the number of
// expenses created; per-template failures are logged and joined into err
// without stopping the run.
func (m *Materializer) RunOnce(ctx context.Context, today time.Time) (int, error) {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	period := day.Format(PeriodLayout)

	templates, err := m.ledger.Store().ListRecurring(ctx, storage.RecurringFilter{ActiveOnly: true})
	if err != nil {
		m.run("error")
		return 0, fmt.Errorf("failed to list recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"total_active", len(templates),
		"processing_date", day.Format(models.DateLayout))

	created := 0
	var errs []error
	for _, r := range templates {
		if !Due(r, day) {
			continue
		}

		expense, err := m.ledger.MaterializeRecurring(ctx, r, day, period)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create expense from recurring template",
				"recurring_id", r.ID,
				"group_id", r.GroupID,
				"error", err)
			errs = append(errs, fmt.Errorf("recurring %s: %w", r.ID, err))
			continue
		}
		if expense == nil {
			slog.DebugContext(ctx, "Recurring expense already materialized", "recurring_id", r.ID, "period", period)
			continue
		}

		created++
		if m.metrics != nil {
			m.metrics.RecurringMaterialized.Inc()
		}
		slog.InfoContext(ctx, "Created expense from recurring template",
			"recurring_id", r.ID,
			"expense_id", expense.ID,
			"group_id", expense.GroupID,
			"amount", expense.Amount.StringFixed(2))
	}

	slog.InfoContext(ctx, "Recurring expense processing complete", "created", created, "failed", len(errs))
	if len(errs) > 0 {
		m.run("partial")
	} else {
		m.run("ok")
	}
	return created, errors.Join(errs...)
}

// Run processes once immediately and then on every tick until ctx is done.
func (m *Materializer) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("recurring interval must be positive, got %s", interval)
	}

	if _, err := m.RunOnce(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial recurring processing failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Recurring materializer stopped")
			return nil
		case now := <-ticker.C:
			if _, err := m.RunOnce(ctx, now); err != nil {
				slog.ErrorContext(ctx, "Periodic recurring processing failed", "error", err)
			}
		}
	}
}

func (m *Materializer) run(result string) {
	if m.metrics != nil {
		m.metrics.RecurringRuns.WithLabelValues(result).Inc()
	}
}
