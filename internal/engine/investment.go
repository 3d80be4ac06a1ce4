package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
	customError "github.com/segyhp/investment-engine/pkg/errors"
	"github.com/segyhp/investment-engine/pkg/utils"
)

// NewInvestment assembles a fully materialized investment from a plan: it
// snapshots the plan terms, generates the schedule once, and seeds the
// expected-returns aggregates. Pure; persistence belongs to the caller.
func NewInvestment(plan *domain.PlanConfiguration, investmentID, investorID string, principal decimal.Decimal, startDate time.Time) (*domain.Investment, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("amount", "must be greater than 0")
	}
	if !plan.MinAmount.IsZero() && principal.LessThan(plan.MinAmount) {
		return nil, customError.WrapInvalidAmount("amount", "is below the plan minimum of "+plan.MinAmount.String())
	}
	if !plan.MaxAmount.IsZero() && principal.GreaterThan(plan.MaxAmount) {
		return nil, customError.WrapInvalidAmount("amount", "is above the plan maximum of "+plan.MaxAmount.String())
	}

	summary, err := ExpectedReturns(plan, principal)
	if err != nil {
		return nil, err
	}
	schedule, err := Generate(plan, principal, startDate)
	if err != nil {
		return nil, err
	}

	return &domain.Investment{
		ID:             uuid.New(),
		InvestmentID:   investmentID,
		InvestorID:     investorID,
		PlanID:         plan.ID,
		Principal:      principal,
		InvestmentDate: startDate,
		MaturityDate:   utils.AddMonthsClamped(startDate, plan.TenureMonths),

		InterestRate: plan.InterestRate,
		InterestType: plan.InterestType,
		TenureMonths: plan.TenureMonths,
		PaymentType:  plan.PaymentType,

		Schedule: schedule,

		TotalExpectedReturns:  summary.TotalReturns,
		TotalInterestExpected: summary.TotalInterest,
		TotalPaidAmount:       decimal.Zero,
		TotalInterestPaid:     decimal.Zero,
		TotalPrincipalPaid:    decimal.Zero,
		RemainingAmount:       summary.TotalReturns,

		Status: domain.InvestmentStatusActive,
	}, nil
}

// SummarizeInvestor rolls reconciled aggregates up across all of one
// investor's investments. Items still pending but past due at the supplied
// time count as overdue even before a lifecycle sweep has persisted the
// transition.
func SummarizeInvestor(investorID string, investments []*domain.Investment, now time.Time) *domain.InvestorSummary {
	summary := &domain.InvestorSummary{
		InvestorID:           investorID,
		TotalInvested:        decimal.Zero,
		TotalExpectedReturns: decimal.Zero,
		TotalPaidAmount:      decimal.Zero,
		TotalOutstanding:     decimal.Zero,
	}

	for _, inv := range investments {
		summary.InvestmentCount++
		switch inv.Status {
		case domain.InvestmentStatusActive:
			summary.ActiveCount++
		case domain.InvestmentStatusCompleted:
			summary.CompletedCount++
		}

		summary.TotalInvested = summary.TotalInvested.Add(inv.Principal)
		summary.TotalExpectedReturns = summary.TotalExpectedReturns.Add(inv.TotalExpectedReturns)
		summary.TotalPaidAmount = summary.TotalPaidAmount.Add(inv.TotalPaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(inv.RemainingAmount)

		for i := range inv.Schedule {
			item := &inv.Schedule[i]
			if item.Status == domain.ScheduleStatusOverdue ||
				(item.Status == domain.ScheduleStatusPending && item.DueDate.Before(now)) {
				summary.OverdueItemCount++
			}
		}
	}

	return summary
}
