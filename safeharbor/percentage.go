package safeharbor

import (
	"github.com/warp/safe-harbor-engine/generic"
)

var (
	// MinimumSafeHarbor is the share of total cost that must be paid or
	// incurred for the 5% test.
	MinimumSafeHarbor = generic.NewPercent(5)

	// RecommendedSafeHarbor is the target allocation that leaves an audit
	// defense margin above the minimum for later cost true-ups.
	RecommendedSafeHarbor = generic.NewPercent(6.5)
)

// Percentage is allocatedCost / totalCost * 100, rounded to 2 places.
// Valid is false when the inputs can't produce a meaningful ratio (zero or
// negative total, negative allocation); an invalid percentage never qualifies.
type Percentage struct {
	Value generic.Percent
	Valid bool
}

// SafeHarborPercentage computes the 5% safe harbor percentage. Allocations
// above the total are not rejected and come back above 100.
func SafeHarborPercentage(allocated, total generic.Money) Percentage {
	if allocated.IsNegative() {
		return Percentage{}
	}
	ratio, ok := allocated.Ratio(total)
	if !ok {
		return Percentage{}
	}
	return Percentage{Value: ratio.Round2(), Valid: true}
}

// Qualifies compares the rounded value against 5.00, the same figure that is
// displayed, so 4.996% shows as 5.00% and qualifies.
func (p Percentage) Qualifies() bool {
	return p.Valid && p.Value.GreaterThanOrEqual(MinimumSafeHarbor)
}

func (p Percentage) String() string {
	if !p.Valid {
		return "n/a"
	}
	return p.Value.String() + "%"
}

// RecommendedAllocation is 6.5% of total cost.
func RecommendedAllocation(total generic.Money) generic.Money {
	if !total.IsPositive() {
		return generic.Money{}
	}
	return total.Percent(RecommendedSafeHarbor)
}

// AllocationShortfall is how much more must be allocated to reach the
// recommended amount. Never negative.
func AllocationShortfall(allocated, total generic.Money) generic.Money {
	gap := RecommendedAllocation(total).Sub(allocated)
	if gap.IsNegative() {
		return generic.Money{}
	}
	return gap
}
