package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentBreakdown splits a payment amount into its components. The
// components must sum to the payment amount within the reconciler tolerance.
type PaymentBreakdown struct {
	InterestAmount  decimal.Decimal `json:"interest_amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount"`
	BonusAmount     decimal.Decimal `json:"bonus_amount"`
}

// Sum returns the total of all breakdown components.
func (b PaymentBreakdown) Sum() decimal.Decimal {
	return b.InterestAmount.Add(b.PrincipalAmount).Add(b.PenaltyAmount).Add(b.BonusAmount)
}

// Payment is an immutable transaction record against one schedule period.
// It references the period by index, never the item directly, and only ever
// contributes to the item's paid amount.
type Payment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	InvestmentID    string          `json:"investment_id" db:"investment_id"`
	Period          int             `json:"period" db:"period"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	InterestAmount  decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	PrincipalAmount decimal.Decimal `json:"principal_amount" db:"principal_amount"`
	PenaltyAmount   decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	BonusAmount     decimal.Decimal `json:"bonus_amount" db:"bonus_amount"`
	PaymentDate     time.Time       `json:"payment_date" db:"payment_date"`
	Method          string          `json:"method" db:"method"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// DTOs for requests and responses

type ApplyPaymentRequest struct {
	Period    int               `json:"period" validate:"required,gt=0"`
	Amount    decimal.Decimal   `json:"amount" validate:"required"`
	Method    string            `json:"method" validate:"required"`
	Breakdown *PaymentBreakdown `json:"breakdown,omitempty"`
}

type ApplyPaymentResponse struct {
	Payment    *Payment    `json:"payment"`
	Investment *Investment `json:"investment"`
}
