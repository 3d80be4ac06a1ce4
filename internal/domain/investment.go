package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment statuses
const (
	InvestmentStatusActive    = "active"
	InvestmentStatusCompleted = "completed"
	InvestmentStatusClosed    = "closed"
	InvestmentStatusDefaulted = "defaulted"
)

// Schedule item statuses
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPartial = "partial"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// ScheduleItem is one row of the amortization table: the interest and
// principal due for a single period, plus the paid-so-far ledger.
type ScheduleItem struct {
	Period             int             `json:"period" db:"period"`
	DueDate            time.Time       `json:"due_date" db:"due_date"`
	InterestAmount     decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal" db:"remaining_principal"`
	Status             string          `json:"status" db:"status"`
	PaidAmount         decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	PaidDate           *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
}

// Investment owns its schedule and carries a snapshot of the plan terms it
// was created under, so later plan edits never change a running investment.
type Investment struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	InvestmentID   string          `json:"investment_id" db:"investment_id"`
	InvestorID     string          `json:"investor_id" db:"investor_id"`
	PlanID         uuid.UUID       `json:"plan_id" db:"plan_id"`
	Principal      decimal.Decimal `json:"principal" db:"principal"`
	InvestmentDate time.Time       `json:"investment_date" db:"investment_date"`
	MaturityDate   time.Time       `json:"maturity_date" db:"maturity_date"`

	// Plan snapshot
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	InterestType string          `json:"interest_type" db:"interest_type"`
	TenureMonths int             `json:"tenure_months" db:"tenure_months"`
	PaymentType  string          `json:"payment_type" db:"payment_type"`

	Schedule []ScheduleItem `json:"schedule"`

	// Derived aggregates, recomputed from the schedule on every
	// reconciliation pass.
	TotalExpectedReturns  decimal.Decimal `json:"total_expected_returns" db:"total_expected_returns"`
	TotalInterestExpected decimal.Decimal `json:"total_interest_expected" db:"total_interest_expected"`
	TotalPaidAmount       decimal.Decimal `json:"total_paid_amount" db:"total_paid_amount"`
	TotalInterestPaid     decimal.Decimal `json:"total_interest_paid" db:"total_interest_paid"`
	TotalPrincipalPaid    decimal.Decimal `json:"total_principal_paid" db:"total_principal_paid"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount" db:"remaining_amount"`

	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemByPeriod returns a pointer to the schedule item with the given period
// index, or nil when the period is not part of the schedule.
func (inv *Investment) ItemByPeriod(period int) *ScheduleItem {
	for i := range inv.Schedule {
		if inv.Schedule[i].Period == period {
			return &inv.Schedule[i]
		}
	}
	return nil
}

// InvestorSummary rolls reconciled investment aggregates up to one investor.
type InvestorSummary struct {
	InvestorID           string          `json:"investor_id"`
	InvestmentCount      int             `json:"investment_count"`
	ActiveCount          int             `json:"active_count"`
	CompletedCount       int             `json:"completed_count"`
	TotalInvested        decimal.Decimal `json:"total_invested"`
	TotalExpectedReturns decimal.Decimal `json:"total_expected_returns"`
	TotalPaidAmount      decimal.Decimal `json:"total_paid_amount"`
	TotalOutstanding     decimal.Decimal `json:"total_outstanding"`
	OverdueItemCount     int             `json:"overdue_item_count"`
}

// DTOs for requests and responses

type CreateInvestmentRequest struct {
	InvestmentID string          `json:"investment_id" validate:"required"`
	InvestorID   string          `json:"investor_id" validate:"required"`
	PlanID       uuid.UUID       `json:"plan_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
}

type CreateInvestmentResponse struct {
	Investment *Investment `json:"investment"`
}

type ScheduleResponse struct {
	InvestmentID string         `json:"investment_id"`
	Schedule     []ScheduleItem `json:"schedule"`
}
