package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/segyhp/investment-engine/internal/domain"
)

// PlanRepository defines the interface for plan configuration data operations
type PlanRepository interface {
	// Create creates a new plan configuration
	Create(ctx context.Context, plan *domain.PlanConfiguration) error

	// GetByID retrieves a plan configuration by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanConfiguration, error)

	// Update updates a plan configuration
	Update(ctx context.Context, plan *domain.PlanConfiguration) error
}

// InvestmentRepository defines the interface for investment data operations.
// Investments own their schedule: loads return the investment with its full
// ordered schedule, and saves rewrite the schedule state in one transaction
// so the engine only ever sees consistent snapshots.
type InvestmentRepository interface {
	// Create persists a new investment together with its schedule
	Create(ctx context.Context, investment *domain.Investment) error

	// GetByInvestmentID retrieves an investment with its full schedule
	GetByInvestmentID(ctx context.Context, investmentID string) (*domain.Investment, error)

	// Update persists the investment aggregates and schedule state
	Update(ctx context.Context, investment *domain.Investment) error

	// ListByInvestor retrieves all investments for an investor
	ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error)

	// ListActive retrieves all active investments
	ListActive(ctx context.Context) ([]*domain.Investment, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByInvestmentID retrieves all payments for an investment
	GetByInvestmentID(ctx context.Context, investmentID string) ([]*domain.Payment, error)
}
