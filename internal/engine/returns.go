package engine

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
	customError "github.com/segyhp/investment-engine/pkg/errors"
)

// ExpectedReturns computes the aggregate totals for a principal placed into a
// plan without materializing schedule items or due dates. It walks the same
// per-period recurrence as Generate, so its totals always equal the
// period-by-period sums of the generated schedule.
func ExpectedReturns(plan *domain.PlanConfiguration, principal decimal.Decimal) (*domain.ReturnsSummary, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("principal", "must be greater than 0")
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	totalInterest := decimal.Zero
	totalPrincipal := decimal.Zero
	walkSchedule(plan, principal, func(period int, interest, component, remaining decimal.Decimal) {
		totalInterest = totalInterest.Add(Round2(interest))
		totalPrincipal = totalPrincipal.Add(component)
	})

	return &domain.ReturnsSummary{
		Principal:            principal,
		TotalInterest:        totalInterest,
		TotalReturns:         totalInterest.Add(totalPrincipal),
		EffectiveRatePercent: Round2(totalInterest.Div(principal).Mul(hundred)),
		PaymentType:          plan.PaymentType,
	}, nil
}
