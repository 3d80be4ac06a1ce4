package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/investment-engine/internal/domain"
)

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

// planRow flattens the payment-type-specific sub-configuration into nullable
// columns; exactly one group is populated, matching payment_type.
type planRow struct {
	ID                     uuid.UUID           `db:"id"`
	Name                   string              `db:"name"`
	InterestRate           decimal.Decimal     `db:"interest_rate"`
	InterestType           string              `db:"interest_type"`
	TenureMonths           int                 `db:"tenure_months"`
	PaymentType            string              `db:"payment_type"`
	MinAmount              decimal.Decimal     `db:"min_amount"`
	MaxAmount              decimal.Decimal     `db:"max_amount"`
	Active                 bool                `db:"active"`
	PayoutFrequency        sql.NullString      `db:"payout_frequency"`
	RepaymentMode          sql.NullString      `db:"repayment_mode"`
	WithdrawalAfterPercent decimal.NullDecimal `db:"withdrawal_after_percent"`
	SettlementTermCount    sql.NullInt64       `db:"settlement_term_count"`
	RepaymentPercent       decimal.NullDecimal `db:"repayment_percent"`
	CustomFrequencyMonths  sql.NullInt64       `db:"custom_frequency_months"`
	CreatedAt              time.Time           `db:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at"`
}

func planToRow(plan *domain.PlanConfiguration) *planRow {
	row := &planRow{
		ID:           plan.ID,
		Name:         plan.Name,
		InterestRate: plan.InterestRate,
		InterestType: plan.InterestType,
		TenureMonths: plan.TenureMonths,
		PaymentType:  plan.PaymentType,
		MinAmount:    plan.MinAmount,
		MaxAmount:    plan.MaxAmount,
		Active:       plan.Active,
		CreatedAt:    plan.CreatedAt,
		UpdatedAt:    plan.UpdatedAt,
	}

	if cfg := plan.InterestOnly; cfg != nil {
		row.PayoutFrequency = sql.NullString{String: cfg.PayoutFrequency, Valid: true}
		row.RepaymentMode = sql.NullString{String: cfg.RepaymentMode, Valid: true}
		row.WithdrawalAfterPercent = decimal.NullDecimal{Decimal: cfg.WithdrawalAfterPercent, Valid: true}
		row.SettlementTermCount = sql.NullInt64{Int64: int64(cfg.SettlementTermCount), Valid: true}
	}
	if cfg := plan.InterestWithPrincipal; cfg != nil {
		row.PayoutFrequency = sql.NullString{String: cfg.PayoutFrequency, Valid: true}
		row.RepaymentPercent = decimal.NullDecimal{Decimal: cfg.RepaymentPercent, Valid: true}
		row.CustomFrequencyMonths = sql.NullInt64{Int64: int64(cfg.CustomFrequencyMonths), Valid: true}
	}

	return row
}

func (r *planRow) toDomain() *domain.PlanConfiguration {
	plan := &domain.PlanConfiguration{
		ID:           r.ID,
		Name:         r.Name,
		InterestRate: r.InterestRate,
		InterestType: r.InterestType,
		TenureMonths: r.TenureMonths,
		PaymentType:  r.PaymentType,
		MinAmount:    r.MinAmount,
		MaxAmount:    r.MaxAmount,
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}

	switch r.PaymentType {
	case domain.PaymentTypeInterestOnly:
		plan.InterestOnly = &domain.InterestOnlyConfig{
			PayoutFrequency:        r.PayoutFrequency.String,
			RepaymentMode:          r.RepaymentMode.String,
			WithdrawalAfterPercent: r.WithdrawalAfterPercent.Decimal,
			SettlementTermCount:    int(r.SettlementTermCount.Int64),
		}
	case domain.PaymentTypeInterestWithPrincipal:
		plan.InterestWithPrincipal = &domain.InterestWithPrincipalConfig{
			RepaymentPercent:      r.RepaymentPercent.Decimal,
			PayoutFrequency:       r.PayoutFrequency.String,
			CustomFrequencyMonths: int(r.CustomFrequencyMonths.Int64),
		}
	}

	return plan
}

func (r *planRepository) Create(ctx context.Context, plan *domain.PlanConfiguration) error {
	query := `
		INSERT INTO plans (id, name, interest_rate, interest_type, tenure_months, payment_type,
			min_amount, max_amount, active, payout_frequency, repayment_mode,
			withdrawal_after_percent, settlement_term_count, repayment_percent,
			custom_frequency_months, created_at, updated_at)
		VALUES (:id, :name, :interest_rate, :interest_type, :tenure_months, :payment_type,
			:min_amount, :max_amount, :active, :payout_frequency, :repayment_mode,
			:withdrawal_after_percent, :settlement_term_count, :repayment_percent,
			:custom_frequency_months, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, planToRow(plan))
	return err
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PlanConfiguration, error) {
	query := `
		SELECT id, name, interest_rate, interest_type, tenure_months, payment_type,
			min_amount, max_amount, active, payout_frequency, repayment_mode,
			withdrawal_after_percent, settlement_term_count, repayment_percent,
			custom_frequency_months, created_at, updated_at
		FROM plans
		WHERE id = $1
	`

	var row planRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

func (r *planRepository) Update(ctx context.Context, plan *domain.PlanConfiguration) error {
	query := `
		UPDATE plans
		SET name = :name, interest_rate = :interest_rate, interest_type = :interest_type,
			tenure_months = :tenure_months, payment_type = :payment_type,
			min_amount = :min_amount, max_amount = :max_amount, active = :active,
			payout_frequency = :payout_frequency, repayment_mode = :repayment_mode,
			withdrawal_after_percent = :withdrawal_after_percent,
			settlement_term_count = :settlement_term_count,
			repayment_percent = :repayment_percent,
			custom_frequency_months = :custom_frequency_months,
			updated_at = :updated_at
		WHERE id = :id
	`

	row := planToRow(plan)
	row.UpdatedAt = time.Now()

	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}
