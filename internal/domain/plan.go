package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/investment-engine/pkg/errors"
)

// Interest types
const (
	InterestTypeFlat     = "flat"
	InterestTypeReducing = "reducing"
)

// Payment types
const (
	PaymentTypeInterestOnly          = "interest_only"
	PaymentTypeInterestWithPrincipal = "interest_with_principal"
)

// Principal repayment modes for interest-only plans
const (
	RepaymentModeFixed    = "fixed"
	RepaymentModeFlexible = "flexible"
)

// Payout frequencies
const (
	FrequencyMonthly    = "monthly"
	FrequencyQuarterly  = "quarterly"
	FrequencyHalfYearly = "half_yearly"
	FrequencyYearly     = "yearly"
	FrequencyCustom     = "custom"
)

// FrequencyPeriods maps a payout frequency to the number of schedule periods
// between payout events. Custom frequencies fall back to monthly unless the
// plan overrides them.
func FrequencyPeriods(frequency string, customPeriods int) int {
	switch frequency {
	case FrequencyQuarterly:
		return 3
	case FrequencyHalfYearly:
		return 6
	case FrequencyYearly:
		return 12
	case FrequencyCustom:
		if customPeriods > 0 {
			return customPeriods
		}
		return 1
	default:
		return 1
	}
}

// InterestOnlyConfig configures an interest-only plan. In fixed mode the
// principal is returned in full at the final period. In flexible mode the
// principal starts repaying after a percentage of the tenure has elapsed,
// spread evenly over SettlementTermCount periods.
type InterestOnlyConfig struct {
	PayoutFrequency        string          `json:"payout_frequency" db:"payout_frequency"`
	RepaymentMode          string          `json:"repayment_mode" db:"repayment_mode"`
	WithdrawalAfterPercent decimal.Decimal `json:"withdrawal_after_percent" db:"withdrawal_after_percent"`
	SettlementTermCount    int             `json:"settlement_term_count" db:"settlement_term_count"`
}

// InterestWithPrincipalConfig configures a plan that pays principal back
// alongside interest over the tenure.
type InterestWithPrincipalConfig struct {
	RepaymentPercent      decimal.Decimal `json:"repayment_percent" db:"repayment_percent"`
	PayoutFrequency       string          `json:"payout_frequency" db:"payout_frequency"`
	CustomFrequencyMonths int             `json:"custom_frequency_months" db:"custom_frequency_months"`
}

// PlanConfiguration describes an investment product. It is immutable once an
// investment has been created from it; investments carry their own snapshot
// of the rate/type/tenure fields.
type PlanConfiguration struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"` // percent per period
	InterestType string          `json:"interest_type" db:"interest_type"`
	TenureMonths int             `json:"tenure_months" db:"tenure_months"`
	PaymentType  string          `json:"payment_type" db:"payment_type"`
	MinAmount    decimal.Decimal `json:"min_amount" db:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount" db:"max_amount"`
	Active       bool            `json:"active" db:"active"`

	// Exactly one of these is set, matching PaymentType.
	InterestOnly          *InterestOnlyConfig          `json:"interest_only,omitempty"`
	InterestWithPrincipal *InterestWithPrincipalConfig `json:"interest_with_principal,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the plan configuration for internal consistency. Every
// violation reports the offending field so the caller can correct it.
func (p *PlanConfiguration) Validate() error {
	if p.InterestRate.IsNegative() {
		return customError.WrapInvalidPlanConfiguration("interest_rate", "must not be negative")
	}
	if p.InterestType != InterestTypeFlat && p.InterestType != InterestTypeReducing {
		return customError.WrapInvalidPlanConfiguration("interest_type", "must be flat or reducing")
	}
	if p.TenureMonths <= 0 {
		return customError.WrapInvalidPlanConfiguration("tenure_months", "must be greater than 0")
	}
	if !p.MinAmount.IsZero() && !p.MaxAmount.IsZero() && p.MaxAmount.LessThan(p.MinAmount) {
		return customError.WrapInvalidPlanConfiguration("max_amount", "must not be less than min_amount")
	}

	switch p.PaymentType {
	case PaymentTypeInterestOnly:
		if p.InterestWithPrincipal != nil {
			return customError.WrapInvalidPlanConfiguration("interest_with_principal", "must not be set for interest-only plans")
		}
		return p.validateInterestOnly()
	case PaymentTypeInterestWithPrincipal:
		if p.InterestOnly != nil {
			return customError.WrapInvalidPlanConfiguration("interest_only", "must not be set for interest-with-principal plans")
		}
		return p.validateInterestWithPrincipal()
	default:
		return customError.WrapInvalidPlanConfiguration("payment_type", "must be interest_only or interest_with_principal")
	}
}

func (p *PlanConfiguration) validateInterestOnly() error {
	cfg := p.InterestOnly
	if cfg == nil {
		return customError.WrapInvalidPlanConfiguration("interest_only", "is required for interest-only plans")
	}
	switch cfg.RepaymentMode {
	case RepaymentModeFixed:
		return nil
	case RepaymentModeFlexible:
		if cfg.WithdrawalAfterPercent.IsNegative() || cfg.WithdrawalAfterPercent.GreaterThan(decimal.NewFromInt(100)) {
			return customError.WrapInvalidPlanConfiguration("withdrawal_after_percent", "must be between 0 and 100")
		}
		if cfg.SettlementTermCount <= 0 {
			return customError.WrapInvalidPlanConfiguration("settlement_term_count", "must be greater than 0")
		}
		// The settlement window has to fit inside the tenure so the
		// principal is fully returned by maturity.
		start := SettlementStartPeriod(p.TenureMonths, cfg.WithdrawalAfterPercent)
		if start+cfg.SettlementTermCount-1 > p.TenureMonths {
			return customError.WrapInvalidPlanConfiguration("settlement_term_count", "settlement window exceeds tenure")
		}
		return nil
	default:
		return customError.WrapInvalidPlanConfiguration("repayment_mode", "must be fixed or flexible")
	}
}

func (p *PlanConfiguration) validateInterestWithPrincipal() error {
	cfg := p.InterestWithPrincipal
	if cfg == nil {
		return customError.WrapInvalidPlanConfiguration("interest_with_principal", "is required for interest-with-principal plans")
	}
	if cfg.RepaymentPercent.LessThanOrEqual(decimal.Zero) || cfg.RepaymentPercent.GreaterThan(decimal.NewFromInt(100)) {
		return customError.WrapInvalidPlanConfiguration("repayment_percent", "must be greater than 0 and at most 100")
	}
	if cfg.PayoutFrequency == FrequencyCustom && cfg.CustomFrequencyMonths < 0 {
		return customError.WrapInvalidPlanConfiguration("custom_frequency_months", "must not be negative")
	}
	// A frequency longer than the tenure is fine: the payout collapses to a
	// single event on the final period.
	return nil
}

// SettlementStartPeriod returns the first period of the flexible settlement
// window: ceil(tenure * withdrawalAfterPercent / 100), clamped to period 1.
func SettlementStartPeriod(tenure int, withdrawalAfterPercent decimal.Decimal) int {
	start := int(decimal.NewFromInt(int64(tenure)).Mul(withdrawalAfterPercent).Div(decimal.NewFromInt(100)).Ceil().IntPart())
	if start < 1 {
		start = 1
	}
	return start
}

// DTOs for requests and responses

type CreatePlanRequest struct {
	Name         string          `json:"name" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"required"`
	InterestType string          `json:"interest_type" validate:"required,oneof=flat reducing"`
	TenureMonths int             `json:"tenure_months" validate:"required,gt=0"`
	PaymentType  string          `json:"payment_type" validate:"required,oneof=interest_only interest_with_principal"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`

	InterestOnly          *InterestOnlyConfig          `json:"interest_only,omitempty"`
	InterestWithPrincipal *InterestWithPrincipalConfig `json:"interest_with_principal,omitempty"`
}

type PreviewPlanRequest struct {
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	StartDate *time.Time      `json:"start_date,omitempty"`
}

// ReturnsSummary is the expected-returns report for a principal placed into a
// plan, computed without materializing the full schedule.
type ReturnsSummary struct {
	Principal            decimal.Decimal `json:"principal"`
	TotalInterest        decimal.Decimal `json:"total_interest"`
	TotalReturns         decimal.Decimal `json:"total_returns"`
	EffectiveRatePercent decimal.Decimal `json:"effective_rate_percent"`
	PaymentType          string          `json:"payment_type"`
}

// PlanPreviewResponse is the caller-facing report shape: summary totals plus
// the full schedule for display.
type PlanPreviewResponse struct {
	PlanID   uuid.UUID      `json:"plan_id"`
	PlanName string         `json:"plan_name"`
	Summary  ReturnsSummary `json:"summary"`
	Schedule []ScheduleItem `json:"schedule"`
}
