package safeharbor

import (
	"fmt"
)

// ITC rate components, in percentage points.
const (
	BaseRateFull         = 30
	BaseRateReduced      = 6
	DomesticContentBonus = 10
	EnergyCommunityBonus = 10
)

// ITCRate is the applicable Investment Tax Credit percentage and the line
// items that produced it: base rate, each bonus that applies, then total.
type ITCRate struct {
	Rate      int
	Breakdown []string
}

// ComputeITCRate derives the ITC percentage from the compliance flags.
// The full 30% base requires both prevailing wage and apprenticeship.
func ComputeITCRate(c ITCCompliance) ITCRate {
	var result ITCRate

	if c.PrevailingWage && c.Apprenticeship {
		result.Rate = BaseRateFull
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("Base rate: %d%% (prevailing wage and apprenticeship requirements met)", BaseRateFull))
	} else {
		result.Rate = BaseRateReduced
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("Base rate: %d%% (prevailing wage and apprenticeship requirements not both met)", BaseRateReduced))
	}

	if c.DomesticContent {
		result.Rate += DomesticContentBonus
		line := fmt.Sprintf("Domestic content bonus: +%d%%", DomesticContentBonus)
		if c.DomesticContentPercentage.IsPositive() {
			line += fmt.Sprintf(" (%s%% domestic content)", c.DomesticContentPercentage.String())
		}
		result.Breakdown = append(result.Breakdown, line)
	}

	if c.EnergyCommunity {
		result.Rate += EnergyCommunityBonus
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("Energy community bonus: +%d%%", EnergyCommunityBonus))
	}

	result.Breakdown = append(result.Breakdown, fmt.Sprintf("Total ITC rate: %d%%", result.Rate))
	return result
}
