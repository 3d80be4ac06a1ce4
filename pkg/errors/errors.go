package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidAmount            = errors.New("invalid amount")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrScheduleItemNotFound     = errors.New("schedule item not found")
	ErrInvalidScheduleItemState = errors.New("schedule item state does not allow payment")
	ErrBreakdownMismatch        = errors.New("payment breakdown does not sum to payment amount")
	ErrPlanNotFound             = errors.New("plan not found")
	ErrInvestmentNotFound       = errors.New("investment not found")
	ErrInvestmentAlreadyExists  = errors.New("investment already exists")
	ErrInvalidInvestmentState   = errors.New("investment state does not allow this transition")
)

// BusinessError represents a rejected request. It never indicates corrupted
// state; the caller can correct the input and retry.
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidAmount            = "INVALID_AMOUNT"
	ErrCodeInvalidPlanConfiguration = "INVALID_PLAN_CONFIGURATION"
	ErrCodeScheduleItemNotFound     = "SCHEDULE_ITEM_NOT_FOUND"
	ErrCodeInvalidScheduleItemState = "INVALID_SCHEDULE_ITEM_STATE"
	ErrCodeBreakdownMismatch        = "BREAKDOWN_MISMATCH"
	ErrCodePlanNotFound             = "PLAN_NOT_FOUND"
	ErrCodeInvestmentNotFound       = "INVESTMENT_NOT_FOUND"
	ErrCodeInvestmentAlreadyExists  = "INVESTMENT_ALREADY_EXISTS"
	ErrCodeInvalidInvestmentState   = "INVALID_INVESTMENT_STATE"
	ErrCodeDatabaseError            = "DATABASE_ERROR"
	ErrCodeCacheError               = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapInvalidAmount(field, constraint string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAmount,
		fmt.Sprintf("%s %s", field, constraint),
		ErrInvalidAmount,
	)
}

func WrapInvalidPlanConfiguration(field, constraint string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPlanConfiguration,
		fmt.Sprintf("%s %s", field, constraint),
		ErrInvalidPlanConfiguration,
	)
}

func WrapScheduleItemNotFound(period int) *BusinessError {
	return NewBusinessError(
		ErrCodeScheduleItemNotFound,
		fmt.Sprintf("no schedule item for period %d", period),
		ErrScheduleItemNotFound,
	)
}

func WrapInvalidScheduleItemState(period int, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidScheduleItemState,
		fmt.Sprintf("schedule item for period %d has status %s which does not allow payment", period, status),
		ErrInvalidScheduleItemState,
	)
}

func WrapBreakdownMismatch(amount, breakdownSum string) *BusinessError {
	return NewBusinessError(
		ErrCodeBreakdownMismatch,
		fmt.Sprintf("breakdown sums to %s but payment amount is %s", breakdownSum, amount),
		ErrBreakdownMismatch,
	)
}

func WrapPlanNotFound(planID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Plan with ID %s not found", planID),
		ErrPlanNotFound,
	)
}

func WrapInvestmentNotFound(investmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvestmentNotFound,
		fmt.Sprintf("Investment with ID %s not found", investmentID),
		ErrInvestmentNotFound,
	)
}

func WrapInvestmentAlreadyExists(investmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvestmentAlreadyExists,
		fmt.Sprintf("Investment with ID %s already exists", investmentID),
		ErrInvestmentAlreadyExists,
	)
}

func WrapInvalidInvestmentState(investmentID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInvestmentState,
		fmt.Sprintf("Investment %s has status %s", investmentID, status),
		ErrInvalidInvestmentState,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
