package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/investment-engine/internal/config"
	"github.com/segyhp/investment-engine/internal/domain"
	"github.com/segyhp/investment-engine/internal/engine"
	"github.com/segyhp/investment-engine/internal/repository"
	customError "github.com/segyhp/investment-engine/pkg/errors"
)

// InvestmentService is the orchestration shell around the pure engine: it
// loads snapshots, runs the calculation, and persists the result. The engine
// itself never touches storage.
type InvestmentService struct {
	PlanRepo       repository.PlanRepository
	InvestmentRepo repository.InvestmentRepository
	PaymentRepo    repository.PaymentRepository
	redis          *redis.Client
	config         *config.Config
	reconciler     *engine.Reconciler

	// locks serializes reconciliation per investment. Aggregates are
	// recomputed from the full schedule, so two concurrent reconciliations
	// over stale reads would silently lose updates.
	locks sync.Map
}

func NewInvestmentService(
	planRepo repository.PlanRepository,
	investmentRepo repository.InvestmentRepository,
	paymentRepo repository.PaymentRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *InvestmentService {
	reconciler := engine.NewReconciler()
	if cfg != nil {
		reconciler.BreakdownTolerance = cfg.GetBreakdownTolerance()
		reconciler.AbsorbThreshold = cfg.GetAbsorbThreshold()
	}

	return &InvestmentService{
		PlanRepo:       planRepo,
		InvestmentRepo: investmentRepo,
		PaymentRepo:    paymentRepo,
		redis:          redisClient,
		config:         cfg,
		reconciler:     reconciler,
	}
}

func (s *InvestmentService) investmentLock(investmentID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(investmentID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// CreatePlan validates and persists a new plan configuration.
func (s *InvestmentService) CreatePlan(ctx context.Context, request *domain.CreatePlanRequest) (*domain.PlanConfiguration, error) {
	now := time.Now()
	plan := &domain.PlanConfiguration{
		ID:                    uuid.New(),
		Name:                  request.Name,
		InterestRate:          request.InterestRate,
		InterestType:          request.InterestType,
		TenureMonths:          request.TenureMonths,
		PaymentType:           request.PaymentType,
		MinAmount:             request.MinAmount,
		MaxAmount:             request.MaxAmount,
		Active:                true,
		InterestOnly:          request.InterestOnly,
		InterestWithPrincipal: request.InterestWithPrincipal,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if err := s.PlanRepo.Create(ctx, plan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return plan, nil
}

// GetPlan retrieves a plan configuration by ID.
func (s *InvestmentService) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanConfiguration, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapPlanNotFound(planID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return plan, nil
}

// PreviewPlan computes the expected-returns summary and display schedule for
// a principal placed into a plan, without creating anything. Previews are
// cached in Redis keyed by plan, amount and start date.
func (s *InvestmentService) PreviewPlan(ctx context.Context, planID uuid.UUID, request *domain.PreviewPlanRequest, now time.Time) (*domain.PlanPreviewResponse, error) {
	startDate := now
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	cacheKey := fmt.Sprintf("preview:%s:%s:%s", planID, request.Amount, startDate.Format("2006-01-02"))
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var preview domain.PlanPreviewResponse
			if err := json.Unmarshal([]byte(cached), &preview); err == nil {
				return &preview, nil
			}
		}
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	summary, err := engine.ExpectedReturns(plan, request.Amount)
	if err != nil {
		return nil, err
	}
	schedule, err := engine.Generate(plan, request.Amount, startDate)
	if err != nil {
		return nil, err
	}

	preview := &domain.PlanPreviewResponse{
		PlanID:   plan.ID,
		PlanName: plan.Name,
		Summary:  *summary,
		Schedule: schedule,
	}

	if s.redis != nil && s.config != nil {
		if encoded, err := json.Marshal(preview); err == nil {
			if err := s.redis.Set(ctx, cacheKey, encoded, s.config.Business.PreviewCacheTTL).Err(); err != nil {
				// Preview caching is best effort.
				log.Printf("Failed to cache plan preview: %v", err)
			}
		}
	}

	return preview, nil
}

// CreateInvestment creates a new investment from a plan: snapshots the plan
// terms, generates the schedule once, and persists everything.
func (s *InvestmentService) CreateInvestment(ctx context.Context, request *domain.CreateInvestmentRequest, now time.Time) (*domain.Investment, error) {
	existing, err := s.InvestmentRepo.GetByInvestmentID(ctx, request.InvestmentID)
	if err == nil && existing != nil {
		return nil, customError.WrapInvestmentAlreadyExists(request.InvestmentID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	plan, err := s.GetPlan(ctx, request.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, customError.WrapInvalidPlanConfiguration("plan", "is not active")
	}

	startDate := now
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	investment, err := engine.NewInvestment(plan, request.InvestmentID, request.InvestorID, request.Amount, startDate)
	if err != nil {
		return nil, err
	}
	investment.CreatedAt = now
	investment.UpdatedAt = now

	if err := s.InvestmentRepo.Create(ctx, investment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return investment, nil
}

// GetInvestment retrieves an investment with its full schedule.
func (s *InvestmentService) GetInvestment(ctx context.Context, investmentID string) (*domain.Investment, error) {
	investment, err := s.InvestmentRepo.GetByInvestmentID(ctx, investmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInvestmentNotFound(investmentID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return investment, nil
}

// ApplyPayment reconciles a payment against an investment's schedule and
// persists the payment record plus the updated investment. Reconciliation is
// serialized per investment: at most one in-flight payment per investment.
func (s *InvestmentService) ApplyPayment(ctx context.Context, investmentID string, request *domain.ApplyPaymentRequest, now time.Time) (*domain.Payment, *domain.Investment, error) {
	lock := s.investmentLock(investmentID)
	lock.Lock()
	defer lock.Unlock()

	investment, err := s.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, nil, err
	}

	updated, breakdown, err := s.reconciler.ApplyPayment(investment, request.Period, request.Amount, request.Breakdown, now)
	if err != nil {
		return nil, nil, err
	}

	payment := &domain.Payment{
		ID:              uuid.New(),
		InvestmentID:    investmentID,
		Period:          request.Period,
		Amount:          request.Amount,
		InterestAmount:  breakdown.InterestAmount,
		PrincipalAmount: breakdown.PrincipalAmount,
		PenaltyAmount:   breakdown.PenaltyAmount,
		BonusAmount:     breakdown.BonusAmount,
		PaymentDate:     now,
		Method:          request.Method,
		CreatedAt:       now,
	}

	if err := s.PaymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	if err := s.InvestmentRepo.Update(ctx, updated); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	return payment, updated, nil
}

// InvestorSummary rolls up reconciled aggregates across all investments of
// one investor.
func (s *InvestmentService) InvestorSummary(ctx context.Context, investorID string, now time.Time) (*domain.InvestorSummary, error) {
	investments, err := s.InvestmentRepo.ListByInvestor(ctx, investorID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return engine.SummarizeInvestor(investorID, investments, now), nil
}

// CloseInvestment marks an active investment as closed.
func (s *InvestmentService) CloseInvestment(ctx context.Context, investmentID string) (*domain.Investment, error) {
	return s.transition(ctx, investmentID, engine.Close)
}

// MarkDefaulted marks an active investment as defaulted.
func (s *InvestmentService) MarkDefaulted(ctx context.Context, investmentID string) (*domain.Investment, error) {
	return s.transition(ctx, investmentID, engine.MarkDefaulted)
}

func (s *InvestmentService) transition(ctx context.Context, investmentID string, apply func(*domain.Investment) (*domain.Investment, error)) (*domain.Investment, error) {
	lock := s.investmentLock(investmentID)
	lock.Lock()
	defer lock.Unlock()

	investment, err := s.GetInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}

	updated, err := apply(investment)
	if err != nil {
		return nil, err
	}

	if err := s.InvestmentRepo.Update(ctx, updated); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return updated, nil
}

// MarkOverdue sweeps all active investments, transitions pending schedule
// items past their due dates to overdue, and persists investments that
// changed. The scheduler runs it daily; it is idempotent.
func (s *InvestmentService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	investments, err := s.InvestmentRepo.ListActive(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	updatedCount := 0
	for _, investment := range investments {
		refreshed := engine.Refresh(investment, now)
		if !scheduleChanged(investment, refreshed) {
			continue
		}
		if err := s.InvestmentRepo.Update(ctx, refreshed); err != nil {
			return updatedCount, customError.WrapDatabaseError(err)
		}
		updatedCount++
	}

	return updatedCount, nil
}

func scheduleChanged(before, after *domain.Investment) bool {
	if before.Status != after.Status {
		return true
	}
	for i := range before.Schedule {
		if before.Schedule[i].Status != after.Schedule[i].Status {
			return true
		}
	}
	return false
}
