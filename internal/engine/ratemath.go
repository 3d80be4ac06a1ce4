package engine

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// oneCent is the drift we accept between the unrounded remaining
	// principal and exact zero on the final schedule item.
	oneCent = decimal.New(1, -2)
)

// Round2 rounds a monetary value to 2 decimal places, half away from zero.
// Every stored or returned monetary field passes through it.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// PeriodInterest returns the interest owed for one period: base multiplied by
// ratePercent/100. Base is the original principal for flat plans or the
// current remaining principal for reducing plans.
func PeriodInterest(base, ratePercent decimal.Decimal) decimal.Decimal {
	return base.Mul(ratePercent).Div(hundred)
}

// centAllocator distributes an exact running total into cent-exact stored
// amounts. Each take rounds the cumulative total, not the individual slice,
// so the stored amounts always sum to the rounded running total and rounding
// drift never compounds across periods.
type centAllocator struct {
	exact  decimal.Decimal
	stored decimal.Decimal
}

func (a *centAllocator) take(x decimal.Decimal) decimal.Decimal {
	a.exact = a.exact.Add(x)
	slice := Round2(a.exact).Sub(a.stored)
	a.stored = a.stored.Add(slice)
	return slice
}
