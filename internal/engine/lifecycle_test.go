package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/investment-engine/internal/domain"
)

func TestRefreshMarksOverdueItems(t *testing.T) {
	inv := testInvestment(t)

	// Two periods past due, the third due exactly now.
	now := inv.Schedule[2].DueDate

	updated := Refresh(inv, now)
	assert.Equal(t, domain.ScheduleStatusOverdue, updated.ItemByPeriod(1).Status)
	assert.Equal(t, domain.ScheduleStatusOverdue, updated.ItemByPeriod(2).Status)
	// Strictly before: an item due exactly now stays pending.
	assert.Equal(t, domain.ScheduleStatusPending, updated.ItemByPeriod(3).Status)
	assert.Equal(t, domain.ScheduleStatusPending, updated.ItemByPeriod(4).Status)

	// Input untouched.
	assert.Equal(t, domain.ScheduleStatusPending, inv.ItemByPeriod(1).Status)
}

func TestRefreshIsIdempotent(t *testing.T) {
	inv := testInvestment(t)
	now := testStartDate.AddDate(0, 3, 1)

	once := Refresh(inv, now)
	twice := Refresh(once, now)

	assert.Equal(t, once.Status, twice.Status)
	require.Equal(t, len(once.Schedule), len(twice.Schedule))
	for i := range once.Schedule {
		assert.Equal(t, once.Schedule[i].Status, twice.Schedule[i].Status)
		assert.True(t, once.Schedule[i].PaidAmount.Equal(twice.Schedule[i].PaidAmount))
	}
}

func TestRefreshDoesNotTouchPaidOrPartialItems(t *testing.T) {
	inv := testInvestment(t)
	now := testStartDate.AddDate(0, 0, 10)
	r := NewReconciler()

	updated, _, err := r.ApplyPayment(inv, 1, decimal.NewFromInt(3000), nil, now)
	require.NoError(t, err)
	updated, _, err = r.ApplyPayment(updated, 2, decimal.NewFromInt(100), nil, now)
	require.NoError(t, err)

	later := testStartDate.AddDate(0, 6, 0)
	refreshed := Refresh(updated, later)
	assert.Equal(t, domain.ScheduleStatusPaid, refreshed.ItemByPeriod(1).Status)
	assert.Equal(t, domain.ScheduleStatusPartial, refreshed.ItemByPeriod(2).Status)
	assert.Equal(t, domain.ScheduleStatusOverdue, refreshed.ItemByPeriod(3).Status)
}

func TestRefreshCompletesWhenNothingRemains(t *testing.T) {
	inv := testInvestment(t)
	inv.RemainingAmount = decimal.Zero

	updated := Refresh(inv, testStartDate)
	assert.Equal(t, domain.InvestmentStatusCompleted, updated.Status)

	// Completed is terminal; a later refresh keeps it.
	again := Refresh(updated, testStartDate.AddDate(1, 0, 0))
	assert.Equal(t, domain.InvestmentStatusCompleted, again.Status)
}

func TestCloseAndDefaultTransitions(t *testing.T) {
	inv := testInvestment(t)

	closed, err := Close(inv)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusClosed, closed.Status)
	assert.Equal(t, domain.InvestmentStatusActive, inv.Status)

	_, err = Close(closed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_INVESTMENT_STATE")

	defaulted, err := MarkDefaulted(inv)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusDefaulted, defaulted.Status)

	_, err = MarkDefaulted(defaulted)
	require.Error(t, err)
}

func TestSummarizeInvestor(t *testing.T) {
	first := testInvestment(t)
	second := testInvestment(t)
	second.InvestmentID = "INV-002"

	now := testStartDate.AddDate(0, 0, 10)
	r := NewReconciler()
	firstUpdated, _, err := r.ApplyPayment(first, 1, decimal.NewFromInt(3000), nil, now)
	require.NoError(t, err)

	// One period past due on the second investment.
	past := testStartDate.AddDate(0, 1, 1)
	summary := SummarizeInvestor("investor-1", []*domain.Investment{firstUpdated, second}, past)

	assert.Equal(t, "investor-1", summary.InvestorID)
	assert.Equal(t, 2, summary.InvestmentCount)
	assert.Equal(t, 2, summary.ActiveCount)
	assert.Equal(t, 0, summary.CompletedCount)
	assert.True(t, summary.TotalInvested.Equal(decimal.NewFromInt(200000)))
	assert.True(t, summary.TotalExpectedReturns.Equal(decimal.NewFromInt(272000)))
	assert.True(t, summary.TotalPaidAmount.Equal(decimal.NewFromInt(3000)))
	assert.True(t, summary.TotalOutstanding.Equal(decimal.NewFromInt(269000)))
	// Period 1 of the second investment is pending past due; the first
	// investment's period 1 is already paid.
	assert.Equal(t, 1, summary.OverdueItemCount)
}
