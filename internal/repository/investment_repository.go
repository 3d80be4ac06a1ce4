package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/investment-engine/internal/domain"
)

type investmentRepository struct {
	db *sqlx.DB
}

func NewInvestmentRepository(db *sqlx.DB) InvestmentRepository {
	return &investmentRepository{db: db}
}

// scheduleItemRow is a schedule item keyed by its owning investment. Schedule
// items are value objects of the investment; they are never addressed outside
// of it.
type scheduleItemRow struct {
	InvestmentID string `db:"investment_id"`
	domain.ScheduleItem
}

const investmentColumns = `
	id, investment_id, investor_id, plan_id, principal, investment_date, maturity_date,
	interest_rate, interest_type, tenure_months, payment_type,
	total_expected_returns, total_interest_expected, total_paid_amount,
	total_interest_paid, total_principal_paid, remaining_amount,
	status, created_at, updated_at
`

func (r *investmentRepository) Create(ctx context.Context, investment *domain.Investment) error {
	investmentQuery := `
		INSERT INTO investments (` + investmentColumns + `)
		VALUES (:id, :investment_id, :investor_id, :plan_id, :principal, :investment_date, :maturity_date,
			:interest_rate, :interest_type, :tenure_months, :payment_type,
			:total_expected_returns, :total_interest_expected, :total_paid_amount,
			:total_interest_paid, :total_principal_paid, :remaining_amount,
			:status, :created_at, :updated_at)
	`
	itemQuery := `
		INSERT INTO schedule_items (investment_id, period, due_date, interest_amount,
			principal_amount, total_amount, remaining_principal, status, paid_amount, paid_date)
		VALUES (:investment_id, :period, :due_date, :interest_amount,
			:principal_amount, :total_amount, :remaining_principal, :status, :paid_amount, :paid_date)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, investmentQuery, investment); err != nil {
		return err
	}

	for i := range investment.Schedule {
		row := scheduleItemRow{InvestmentID: investment.InvestmentID, ScheduleItem: investment.Schedule[i]}
		if _, err = tx.NamedExecContext(ctx, itemQuery, row); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *investmentRepository) GetByInvestmentID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investment_id = $1`

	var investment domain.Investment
	if err := r.db.GetContext(ctx, &investment, query, investmentID); err != nil {
		return nil, err
	}

	schedule, err := r.loadSchedule(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	investment.Schedule = schedule

	return &investment, nil
}

// Update persists the mutable state of an investment: the aggregate fields
// and the paid/status columns of every schedule item, in one transaction.
func (r *investmentRepository) Update(ctx context.Context, investment *domain.Investment) error {
	investmentQuery := `
		UPDATE investments
		SET total_paid_amount = :total_paid_amount,
			total_interest_paid = :total_interest_paid,
			total_principal_paid = :total_principal_paid,
			remaining_amount = :remaining_amount,
			status = :status,
			updated_at = :updated_at
		WHERE investment_id = :investment_id
	`
	itemQuery := `
		UPDATE schedule_items
		SET status = :status, paid_amount = :paid_amount, paid_date = :paid_date
		WHERE investment_id = :investment_id AND period = :period
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	investment.UpdatedAt = time.Now()
	if _, err = tx.NamedExecContext(ctx, investmentQuery, investment); err != nil {
		return err
	}

	for i := range investment.Schedule {
		row := scheduleItemRow{InvestmentID: investment.InvestmentID, ScheduleItem: investment.Schedule[i]}
		if _, err = tx.NamedExecContext(ctx, itemQuery, row); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *investmentRepository) ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE investor_id = $1 ORDER BY created_at`
	return r.list(ctx, query, investorID)
}

func (r *investmentRepository) ListActive(ctx context.Context) ([]*domain.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE status = $1 ORDER BY created_at`
	return r.list(ctx, query, domain.InvestmentStatusActive)
}

func (r *investmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Investment, error) {
	var investments []*domain.Investment
	if err := r.db.SelectContext(ctx, &investments, query, args...); err != nil {
		return nil, err
	}

	for _, investment := range investments {
		schedule, err := r.loadSchedule(ctx, investment.InvestmentID)
		if err != nil {
			return nil, err
		}
		investment.Schedule = schedule
	}

	return investments, nil
}

func (r *investmentRepository) loadSchedule(ctx context.Context, investmentID string) ([]domain.ScheduleItem, error) {
	query := `
		SELECT investment_id, period, due_date, interest_amount, principal_amount,
			total_amount, remaining_principal, status, paid_amount, paid_date
		FROM schedule_items
		WHERE investment_id = $1
		ORDER BY period
	`

	var rows []scheduleItemRow
	if err := r.db.SelectContext(ctx, &rows, query, investmentID); err != nil {
		return nil, err
	}

	schedule := make([]domain.ScheduleItem, 0, len(rows))
	for _, row := range rows {
		schedule = append(schedule, row.ScheduleItem)
	}

	return schedule, nil
}
