package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
	customError "github.com/segyhp/investment-engine/pkg/errors"
	"github.com/segyhp/investment-engine/pkg/utils"
)

// Default reconciler tunables. The absorb threshold comes from the original
// back office: breakdown gaps below one unit of currency fold silently into
// the interest component rather than rejecting the payment.
var (
	DefaultBreakdownTolerance = decimal.New(1, -2) // 0.01
	DefaultAbsorbThreshold    = decimal.NewFromInt(1)
)

// Reconciler applies payments to schedule items and keeps the investment's
// derived ledger consistent. It is pure: callers get back an updated copy and
// are responsible for persistence and for serializing calls per investment.
type Reconciler struct {
	// BreakdownTolerance is the gap between a payment amount and its
	// breakdown sum that passes validation unchanged.
	BreakdownTolerance decimal.Decimal
	// AbsorbThreshold is the largest gap that is folded into the interest
	// component instead of rejecting the payment.
	AbsorbThreshold decimal.Decimal
}

// NewReconciler returns a reconciler with the default tolerances.
func NewReconciler() *Reconciler {
	return &Reconciler{
		BreakdownTolerance: DefaultBreakdownTolerance,
		AbsorbThreshold:    DefaultAbsorbThreshold,
	}
}

// ApplyPayment applies a payment to the schedule item with the given period
// index and recomputes the investment aggregates from the full schedule. It
// validates everything before mutating, so a rejected payment leaves no
// partial update behind. The resolved breakdown is returned alongside the
// updated investment so the caller can persist the payment record.
func (r *Reconciler) ApplyPayment(inv *domain.Investment, period int, amount decimal.Decimal, breakdown *domain.PaymentBreakdown, now time.Time) (*domain.Investment, *domain.PaymentBreakdown, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, customError.WrapInvalidAmount("amount", "must be greater than 0")
	}

	updated := *inv
	updated.Schedule = append([]domain.ScheduleItem(nil), inv.Schedule...)

	item := updated.ItemByPeriod(period)
	if item == nil {
		return nil, nil, customError.WrapScheduleItemNotFound(period)
	}

	// Paid items still accept payments so supplementary or corrective
	// transactions can land on a settled period.
	switch item.Status {
	case domain.ScheduleStatusPending, domain.ScheduleStatusOverdue, domain.ScheduleStatusPartial, domain.ScheduleStatusPaid:
	default:
		return nil, nil, customError.WrapInvalidScheduleItemState(period, item.Status)
	}

	resolved, err := r.resolveBreakdown(item, amount, breakdown)
	if err != nil {
		return nil, nil, err
	}

	item.PaidAmount = Round2(item.PaidAmount.Add(amount))
	item.PaidDate = &now
	if item.PaidAmount.GreaterThanOrEqual(item.TotalAmount) {
		item.Status = domain.ScheduleStatusPaid
	} else if item.PaidAmount.IsPositive() {
		item.Status = domain.ScheduleStatusPartial
	}

	// Aggregates are recomputed from the full schedule, never
	// incrementally, so out-of-order and corrective payments stay
	// consistent.
	recomputeAggregates(&updated)

	return Refresh(&updated, now), resolved, nil
}

// resolveBreakdown derives or validates the interest/principal/penalty/bonus
// split of a payment. When no breakdown is supplied, interest is satisfied
// first and the rest goes to principal.
func (r *Reconciler) resolveBreakdown(item *domain.ScheduleItem, amount decimal.Decimal, breakdown *domain.PaymentBreakdown) (*domain.PaymentBreakdown, error) {
	if breakdown == nil {
		interestPaidSoFar := utils.MinDecimal(item.PaidAmount, item.InterestAmount)
		remainingInterest := item.InterestAmount.Sub(interestPaidSoFar)
		if remainingInterest.IsNegative() {
			remainingInterest = decimal.Zero
		}
		interest := utils.MinDecimal(amount, remainingInterest)
		return &domain.PaymentBreakdown{
			InterestAmount:  interest,
			PrincipalAmount: amount.Sub(interest),
			PenaltyAmount:   decimal.Zero,
			BonusAmount:     decimal.Zero,
		}, nil
	}

	resolved := *breakdown
	gap := amount.Sub(resolved.Sum())
	if gap.Abs().LessThanOrEqual(r.BreakdownTolerance) {
		return &resolved, nil
	}
	if gap.Abs().GreaterThanOrEqual(r.AbsorbThreshold) {
		return nil, customError.WrapBreakdownMismatch(amount.String(), resolved.Sum().String())
	}
	// Sub-unit discrepancies are absorbed into the interest component.
	resolved.InterestAmount = resolved.InterestAmount.Add(gap)
	return &resolved, nil
}

func recomputeAggregates(inv *domain.Investment) {
	totalPaid := decimal.Zero
	interestPaid := decimal.Zero
	principalPaid := decimal.Zero

	for i := range inv.Schedule {
		item := &inv.Schedule[i]
		totalPaid = totalPaid.Add(item.PaidAmount)
		interestPaid = interestPaid.Add(utils.MinDecimal(item.PaidAmount, item.InterestAmount))
		if over := item.PaidAmount.Sub(item.InterestAmount); over.IsPositive() {
			principalPaid = principalPaid.Add(over)
		}
	}

	inv.TotalPaidAmount = Round2(totalPaid)
	inv.TotalInterestPaid = Round2(interestPaid)
	inv.TotalPrincipalPaid = Round2(principalPaid)
	inv.RemainingAmount = inv.TotalExpectedReturns.Sub(inv.TotalPaidAmount)
}
