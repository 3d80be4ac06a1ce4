package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
	customError "github.com/segyhp/investment-engine/pkg/errors"
)

// Refresh recomputes the time-derived state of an investment: pending
// schedule items whose due date is strictly before now become overdue, and an
// active investment with nothing remaining becomes completed. These are the
// only automatic transitions; closing and defaulting are caller decisions.
// Refresh is idempotent and never touches paid amounts.
func Refresh(inv *domain.Investment, now time.Time) *domain.Investment {
	updated := *inv
	updated.Schedule = append([]domain.ScheduleItem(nil), inv.Schedule...)

	for i := range updated.Schedule {
		item := &updated.Schedule[i]
		if item.Status == domain.ScheduleStatusPending && item.DueDate.Before(now) {
			item.Status = domain.ScheduleStatusOverdue
		}
	}

	if updated.Status == domain.InvestmentStatusActive && updated.RemainingAmount.LessThanOrEqual(decimal.Zero) {
		updated.Status = domain.InvestmentStatusCompleted
	}

	return &updated
}

// Close marks an active investment as closed. Closed is terminal.
func Close(inv *domain.Investment) (*domain.Investment, error) {
	return transition(inv, domain.InvestmentStatusClosed)
}

// MarkDefaulted marks an active investment as defaulted. Defaulted is
// terminal.
func MarkDefaulted(inv *domain.Investment) (*domain.Investment, error) {
	return transition(inv, domain.InvestmentStatusDefaulted)
}

func transition(inv *domain.Investment, target string) (*domain.Investment, error) {
	if inv.Status != domain.InvestmentStatusActive {
		return nil, customError.WrapInvalidInvestmentState(inv.InvestmentID, inv.Status)
	}
	updated := *inv
	updated.Schedule = append([]domain.ScheduleItem(nil), inv.Schedule...)
	updated.Status = target
	return &updated, nil
}
