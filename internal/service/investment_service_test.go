package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/investment-engine/internal/domain"
	"github.com/segyhp/investment-engine/internal/engine"
	"github.com/segyhp/investment-engine/internal/repository"
)

var testNow = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func testPlan() *domain.PlanConfiguration {
	return &domain.PlanConfiguration{
		ID:           uuid.New(),
		Name:         "monthly income",
		InterestRate: decimal.NewFromInt(3),
		InterestType: domain.InterestTypeFlat,
		TenureMonths: 12,
		PaymentType:  domain.PaymentTypeInterestOnly,
		MinAmount:    decimal.NewFromInt(10000),
		MaxAmount:    decimal.NewFromInt(1000000),
		Active:       true,
		InterestOnly: &domain.InterestOnlyConfig{
			PayoutFrequency: domain.FrequencyMonthly,
			RepaymentMode:   domain.RepaymentModeFixed,
		},
	}
}

func testInvestmentFromPlan(t *testing.T, plan *domain.PlanConfiguration) *domain.Investment {
	t.Helper()
	inv, err := engine.NewInvestment(plan, "INV-001", "investor-1", decimal.NewFromInt(100000), testNow)
	require.NoError(t, err)
	return inv
}

func newTestService(planRepo *MockPlanRepository, invRepo repository.InvestmentRepository, payRepo *MockPaymentRepository) *InvestmentService {
	return NewInvestmentService(planRepo, invRepo, payRepo, nil, nil)
}

// memoryInvestmentStore backs concurrency tests with real read-your-writes
// semantics, which canned mock returns cannot express.
type memoryInvestmentStore struct {
	mu         sync.Mutex
	investment *domain.Investment
}

func (s *memoryInvestmentStore) Create(ctx context.Context, inv *domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investment = inv
	return nil
}

func (s *memoryInvestmentStore) GetByInvestmentID(ctx context.Context, investmentID string) (*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.investment == nil || s.investment.InvestmentID != investmentID {
		return nil, sql.ErrNoRows
	}
	return s.investment, nil
}

func (s *memoryInvestmentStore) Update(ctx context.Context, inv *domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investment = inv
	return nil
}

func (s *memoryInvestmentStore) ListByInvestor(ctx context.Context, investorID string) ([]*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []*domain.Investment{s.investment}, nil
}

func (s *memoryInvestmentStore) ListActive(ctx context.Context) ([]*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []*domain.Investment{s.investment}, nil
}

func TestCreateInvestment(t *testing.T) {
	plan := testPlan()

	tests := []struct {
		name          string
		request       *domain.CreateInvestmentRequest
		setupMocks    func(*MockPlanRepository, *MockInvestmentRepository)
		expectedError string
		validate      func(*testing.T, *domain.Investment)
	}{
		{
			name: "Success - creates investment with schedule",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-001",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(100000),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-001").Return(nil, sql.ErrNoRows)
				planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
				invRepo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Investment) bool {
					return inv.InvestmentID == "INV-001" && len(inv.Schedule) == 12
				})).Return(nil)
			},
			validate: func(t *testing.T, inv *domain.Investment) {
				assert.Equal(t, domain.InvestmentStatusActive, inv.Status)
				assert.True(t, inv.TotalExpectedReturns.Equal(decimal.NewFromInt(136000)))
				assert.True(t, inv.TotalInterestExpected.Equal(decimal.NewFromInt(36000)))
				assert.True(t, inv.RemainingAmount.Equal(decimal.NewFromInt(136000)))
				assert.True(t, inv.MaturityDate.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
			},
		},
		{
			name: "Failure - investment already exists",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-001",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(100000),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-001").Return(&domain.Investment{InvestmentID: "INV-001"}, nil)
			},
			expectedError: "INVESTMENT_ALREADY_EXISTS",
		},
		{
			name: "Failure - amount below plan minimum",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-002",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(500),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-002").Return(nil, sql.ErrNoRows)
				planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
			},
			expectedError: "INVALID_AMOUNT",
		},
		{
			name: "Failure - amount above plan maximum",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-003",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(2000000),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-003").Return(nil, sql.ErrNoRows)
				planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
			},
			expectedError: "INVALID_AMOUNT",
		},
		{
			name: "Failure - inactive plan",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-004",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(100000),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				inactive := *plan
				inactive.Active = false
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-004").Return(nil, sql.ErrNoRows)
				planRepo.On("GetByID", mock.Anything, plan.ID).Return(&inactive, nil)
			},
			expectedError: "INVALID_PLAN_CONFIGURATION",
		},
		{
			name: "Failure - database error on create",
			request: &domain.CreateInvestmentRequest{
				InvestmentID: "INV-005",
				InvestorID:   "investor-1",
				PlanID:       plan.ID,
				Amount:       decimal.NewFromInt(100000),
			},
			setupMocks: func(planRepo *MockPlanRepository, invRepo *MockInvestmentRepository) {
				invRepo.On("GetByInvestmentID", mock.Anything, "INV-005").Return(nil, sql.ErrNoRows)
				planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)
				invRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
			},
			expectedError: "DATABASE_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			planRepo := &MockPlanRepository{}
			invRepo := &MockInvestmentRepository{}
			payRepo := &MockPaymentRepository{}
			svc := newTestService(planRepo, invRepo, payRepo)

			tt.setupMocks(planRepo, invRepo)

			inv, err := svc.CreateInvestment(context.Background(), tt.request, testNow)

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				assert.Nil(t, inv)
			} else {
				require.NoError(t, err)
				tt.validate(t, inv)
			}
			invRepo.AssertExpectations(t)
			planRepo.AssertExpectations(t)
		})
	}
}

func TestApplyPayment(t *testing.T) {
	plan := testPlan()

	t.Run("Success - persists payment and updated investment", func(t *testing.T) {
		planRepo := &MockPlanRepository{}
		invRepo := &MockInvestmentRepository{}
		payRepo := &MockPaymentRepository{}
		svc := newTestService(planRepo, invRepo, payRepo)

		stored := testInvestmentFromPlan(t, plan)
		invRepo.On("GetByInvestmentID", mock.Anything, "INV-001").Return(stored, nil)
		payRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Payment) bool {
			return p.InvestmentID == "INV-001" && p.Period == 1 &&
				p.InterestAmount.Equal(decimal.NewFromInt(3000)) &&
				p.PrincipalAmount.Equal(decimal.NewFromInt(2000))
		})).Return(nil)
		invRepo.On("Update", mock.Anything, mock.MatchedBy(func(inv *domain.Investment) bool {
			return inv.TotalPaidAmount.Equal(decimal.NewFromInt(5000))
		})).Return(nil)

		payment, updated, err := svc.ApplyPayment(context.Background(), "INV-001", &domain.ApplyPaymentRequest{
			Period: 1,
			Amount: decimal.NewFromInt(5000),
			Method: "bank_transfer",
		}, testNow.AddDate(0, 0, 10))

		require.NoError(t, err)
		assert.True(t, payment.Amount.Equal(decimal.NewFromInt(5000)))
		assert.True(t, updated.RemainingAmount.Equal(decimal.NewFromInt(131000)))
		assert.Equal(t, domain.ScheduleStatusPaid, updated.ItemByPeriod(1).Status)

		invRepo.AssertExpectations(t)
		payRepo.AssertExpectations(t)
	})

	t.Run("Failure - investment not found", func(t *testing.T) {
		planRepo := &MockPlanRepository{}
		invRepo := &MockInvestmentRepository{}
		payRepo := &MockPaymentRepository{}
		svc := newTestService(planRepo, invRepo, payRepo)

		invRepo.On("GetByInvestmentID", mock.Anything, "MISSING").Return(nil, sql.ErrNoRows)

		_, _, err := svc.ApplyPayment(context.Background(), "MISSING", &domain.ApplyPaymentRequest{
			Period: 1,
			Amount: decimal.NewFromInt(5000),
			Method: "bank_transfer",
		}, testNow)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "INVESTMENT_NOT_FOUND")
	})

	t.Run("Failure - rejected payment persists nothing", func(t *testing.T) {
		planRepo := &MockPlanRepository{}
		invRepo := &MockInvestmentRepository{}
		payRepo := &MockPaymentRepository{}
		svc := newTestService(planRepo, invRepo, payRepo)

		stored := testInvestmentFromPlan(t, plan)
		invRepo.On("GetByInvestmentID", mock.Anything, "INV-001").Return(stored, nil)

		_, _, err := svc.ApplyPayment(context.Background(), "INV-001", &domain.ApplyPaymentRequest{
			Period: 99,
			Amount: decimal.NewFromInt(5000),
			Method: "bank_transfer",
		}, testNow)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCHEDULE_ITEM_NOT_FOUND")
		payRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		invRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Concurrent payments are serialized per investment", func(t *testing.T) {
		planRepo := &MockPlanRepository{}
		payRepo := &MockPaymentRepository{}
		payRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		// An in-memory store that always returns the latest written
		// snapshot, as a real database would under serialized access.
		invRepo := &memoryInvestmentStore{investment: testInvestmentFromPlan(t, plan)}
		svc := newTestService(planRepo, invRepo, payRepo)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := svc.ApplyPayment(context.Background(), "INV-001", &domain.ApplyPaymentRequest{
					Period: 1,
					Amount: decimal.NewFromInt(100),
					Method: "bank_transfer",
				}, testNow.AddDate(0, 0, 10))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		final, err := invRepo.GetByInvestmentID(context.Background(), "INV-001")
		require.NoError(t, err)
		assert.True(t, final.TotalPaidAmount.Equal(decimal.NewFromInt(1000)),
			"lost update: total paid is %s", final.TotalPaidAmount)
	})
}

func TestPreviewPlan(t *testing.T) {
	plan := testPlan()

	planRepo := &MockPlanRepository{}
	invRepo := &MockInvestmentRepository{}
	payRepo := &MockPaymentRepository{}
	svc := newTestService(planRepo, invRepo, payRepo)

	planRepo.On("GetByID", mock.Anything, plan.ID).Return(plan, nil)

	preview, err := svc.PreviewPlan(context.Background(), plan.ID, &domain.PreviewPlanRequest{
		Amount: decimal.NewFromInt(100000),
	}, testNow)

	require.NoError(t, err)
	assert.Equal(t, plan.ID, preview.PlanID)
	assert.True(t, preview.Summary.TotalInterest.Equal(decimal.NewFromInt(36000)))
	assert.True(t, preview.Summary.TotalReturns.Equal(decimal.NewFromInt(136000)))
	assert.Len(t, preview.Schedule, 12)

	_, err = svc.PreviewPlan(context.Background(), plan.ID, &domain.PreviewPlanRequest{
		Amount: decimal.Zero,
	}, testNow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_AMOUNT")
}

func TestMarkOverdue(t *testing.T) {
	plan := testPlan()

	planRepo := &MockPlanRepository{}
	invRepo := &MockInvestmentRepository{}
	payRepo := &MockPaymentRepository{}
	svc := newTestService(planRepo, invRepo, payRepo)

	pastDue := testInvestmentFromPlan(t, plan)
	current := testInvestmentFromPlan(t, plan)
	current.InvestmentID = "INV-002"

	// Two months after the start: periods 1 of both investments are past
	// due, so both investments change.
	now := testNow.AddDate(0, 2, 1)
	invRepo.On("ListActive", mock.Anything).Return([]*domain.Investment{pastDue, current}, nil)
	invRepo.On("Update", mock.Anything, mock.MatchedBy(func(inv *domain.Investment) bool {
		return inv.ItemByPeriod(1).Status == domain.ScheduleStatusOverdue
	})).Return(nil).Twice()

	count, err := svc.MarkOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	invRepo.AssertExpectations(t)

	// Nothing left to change when nothing is past due.
	invRepo2 := &MockInvestmentRepository{}
	svc2 := newTestService(planRepo, invRepo2, payRepo)
	fresh := testInvestmentFromPlan(t, plan)
	invRepo2.On("ListActive", mock.Anything).Return([]*domain.Investment{fresh}, nil)

	count, err = svc2.MarkOverdue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	invRepo2.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCloseAndDefaultInvestment(t *testing.T) {
	plan := testPlan()

	planRepo := &MockPlanRepository{}
	invRepo := &MockInvestmentRepository{}
	payRepo := &MockPaymentRepository{}
	svc := newTestService(planRepo, invRepo, payRepo)

	stored := testInvestmentFromPlan(t, plan)
	invRepo.On("GetByInvestmentID", mock.Anything, "INV-001").Return(stored, nil)
	invRepo.On("Update", mock.Anything, mock.MatchedBy(func(inv *domain.Investment) bool {
		return inv.Status == domain.InvestmentStatusClosed
	})).Return(nil)

	updated, err := svc.CloseInvestment(context.Background(), "INV-001")
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusClosed, updated.Status)

	// Transitions from a terminal status are rejected.
	invRepo2 := &MockInvestmentRepository{}
	svc2 := newTestService(planRepo, invRepo2, payRepo)
	closed := testInvestmentFromPlan(t, plan)
	closed.Status = domain.InvestmentStatusClosed
	invRepo2.On("GetByInvestmentID", mock.Anything, "INV-001").Return(closed, nil)

	_, err = svc2.MarkDefaulted(context.Background(), "INV-001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_INVESTMENT_STATE")
}

func TestInvestorSummary(t *testing.T) {
	plan := testPlan()

	planRepo := &MockPlanRepository{}
	invRepo := &MockInvestmentRepository{}
	payRepo := &MockPaymentRepository{}
	svc := newTestService(planRepo, invRepo, payRepo)

	first := testInvestmentFromPlan(t, plan)
	second := testInvestmentFromPlan(t, plan)
	second.InvestmentID = "INV-002"
	invRepo.On("ListByInvestor", mock.Anything, "investor-1").Return([]*domain.Investment{first, second}, nil)

	summary, err := svc.InvestorSummary(context.Background(), "investor-1", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.InvestmentCount)
	assert.True(t, summary.TotalInvested.Equal(decimal.NewFromInt(200000)))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(272000)))
}
