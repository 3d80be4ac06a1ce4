package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/investment-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, investment_id, period, amount, interest_amount,
			principal_amount, penalty_amount, bonus_amount, payment_date, method, created_at)
		VALUES (:id, :investment_id, :period, :amount, :interest_amount,
			:principal_amount, :penalty_amount, :bonus_amount, :payment_date, :method, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, payment)
	return err
}

func (r *paymentRepository) GetByInvestmentID(ctx context.Context, investmentID string) ([]*domain.Payment, error) {
	query := `
		SELECT id, investment_id, period, amount, interest_amount, principal_amount,
			penalty_amount, bonus_amount, payment_date, method, created_at
		FROM payments
		WHERE investment_id = $1
		ORDER BY payment_date
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, investmentID); err != nil {
		return nil, err
	}

	return payments, nil
}
