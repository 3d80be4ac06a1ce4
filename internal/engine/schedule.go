package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
	customError "github.com/segyhp/investment-engine/pkg/errors"
	"github.com/segyhp/investment-engine/pkg/utils"
)

// visitPeriod receives one amortization period: the unrounded interest owed,
// the cent-exact principal component, and the unrounded remaining principal
// after this period. Both the schedule generator and the returns calculator
// walk the same recurrence so their sums agree by construction.
type visitPeriod func(period int, interest, principalComponent, remainingAfter decimal.Decimal)

// Generate produces the full payment schedule for a principal placed into a
// plan starting at startDate. It is deterministic and pure: due dates derive
// only from startDate via calendar month addition (clamped to the last valid
// day of the target month).
func Generate(plan *domain.PlanConfiguration, principal decimal.Decimal, startDate time.Time) ([]domain.ScheduleItem, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if principal.IsNegative() {
		return nil, customError.WrapInvalidAmount("principal", "must not be negative")
	}

	items := make([]domain.ScheduleItem, 0, plan.TenureMonths)
	walkSchedule(plan, principal, func(period int, interest, component, remaining decimal.Decimal) {
		interestStored := Round2(interest)
		remainingStored := Round2(remaining)
		// The final item snaps to exactly zero when the unrounded
		// tracking is within one cent of payoff.
		if period == plan.TenureMonths && remainingStored.Abs().LessThanOrEqual(oneCent) {
			remainingStored = decimal.Zero
		}

		items = append(items, domain.ScheduleItem{
			Period:             period,
			DueDate:            utils.AddMonthsClamped(startDate, period),
			InterestAmount:     interestStored,
			PrincipalAmount:    component,
			TotalAmount:        interestStored.Add(component),
			RemainingPrincipal: remainingStored,
			Status:             domain.ScheduleStatusPending,
			PaidAmount:         decimal.Zero,
		})
	})

	return items, nil
}

// walkSchedule drives the per-period amortization recurrence. The plan must
// already be validated. Rounding happens only when principal components are
// sliced off through the cent allocator; the remaining-principal tracking
// stays unrounded so drift never compounds.
func walkSchedule(plan *domain.PlanConfiguration, principal decimal.Decimal, visit visitPeriod) {
	switch plan.PaymentType {
	case domain.PaymentTypeInterestOnly:
		walkInterestOnly(plan, principal, visit)
	case domain.PaymentTypeInterestWithPrincipal:
		walkInterestWithPrincipal(plan, principal, visit)
	}
}

func walkInterestOnly(plan *domain.PlanConfiguration, principal decimal.Decimal, visit visitPeriod) {
	cfg := plan.InterestOnly
	tenure := plan.TenureMonths
	remaining := principal
	alloc := &centAllocator{}

	flexible := cfg.RepaymentMode == domain.RepaymentModeFlexible
	settlementStart := 0
	settlementEnd := 0
	var perSettlement decimal.Decimal
	if flexible {
		settlementStart = domain.SettlementStartPeriod(tenure, cfg.WithdrawalAfterPercent)
		settlementEnd = settlementStart + cfg.SettlementTermCount - 1
		perSettlement = principal.Div(decimal.NewFromInt(int64(cfg.SettlementTermCount)))
	}

	for m := 1; m <= tenure; m++ {
		base := principal
		if plan.InterestType == domain.InterestTypeReducing {
			base = remaining
		}
		interest := PeriodInterest(base, plan.InterestRate)

		var exact decimal.Decimal
		switch {
		case flexible && m >= settlementStart && m <= settlementEnd:
			exact = utils.MinDecimal(perSettlement, remaining)
			if m == settlementEnd {
				exact = remaining
			}
		case !flexible && m == tenure:
			// Fixed mode: full payoff at maturity.
			exact = remaining
		}

		component := alloc.take(exact)
		remaining = remaining.Sub(exact)
		visit(m, interest, component, remaining)
	}
}

func walkInterestWithPrincipal(plan *domain.PlanConfiguration, principal decimal.Decimal, visit visitPeriod) {
	cfg := plan.InterestWithPrincipal
	tenure := plan.TenureMonths
	frequencyPeriods := domain.FrequencyPeriods(cfg.PayoutFrequency, cfg.CustomFrequencyMonths)
	totalPayoutEvents := utils.CeilDiv(tenure, frequencyPeriods)

	toRepay := principal.Mul(cfg.RepaymentPercent).Div(hundred)
	perEvent := toRepay.Div(decimal.NewFromInt(int64(totalPayoutEvents)))
	remainingRepay := toRepay
	remaining := principal
	alloc := &centAllocator{}

	for m := 1; m <= tenure; m++ {
		base := principal
		if plan.InterestType == domain.InterestTypeReducing {
			base = remaining
		}
		interest := PeriodInterest(base, plan.InterestRate)

		var exact decimal.Decimal
		if m%frequencyPeriods == 0 || m == tenure {
			exact = utils.MinDecimal(perEvent, remainingRepay)
			if m == tenure {
				// Payoff is guaranteed by maturity; the final
				// event absorbs any division residue.
				exact = remainingRepay
			}
		}

		component := alloc.take(exact)
		remainingRepay = remainingRepay.Sub(exact)
		remaining = remaining.Sub(exact)
		visit(m, interest, component, remaining)
	}
}
