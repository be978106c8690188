/*
deadlines.go - Statutory dates and deadline arithmetic

PURPOSE:
  Fixed statutory dates for the dual-track BOC framework and the two
  deadlines derived from a payment date.

STATUTORY DATES (hard-coded, not configurable):
  FEOCDeadline             Dec 31, 2025  BOC by this date keeps the permanent
                                         FEOC exemption (any size)
  ITCSmallProjectDeadline  Jul 4, 2026   last day for the 5% safe harbor on
                                         projects <= 1.5 MW AC
  SafeHarborEliminationDate Sep 2, 2025  5% safe harbor eliminated for
                                         ITC/PTC on projects > 1.5 MW AC

DERIVED DEADLINES:
  DeliveryDeadline(payment)   = payment + 105 days
      Treas. Reg. 1.461-4(d)(6)(ii): an accrual-basis taxpayer may treat
      property as provided at payment if delivery is reasonably expected
      within 3.5 months.
  ContinuityDeadline(boc)     = Dec 31 of (boc year + 4)
      Continuity safe harbor: placed in service by the end of the fourth
      calendar year after construction began.

All comparisons against the statutory dates are inclusive.
*/
package safeharbor

import (
	"time"

	"github.com/warp/safe-harbor-engine/generic"
)

const (
	// EconomicPerformanceDays is the 105-day (3.5 month) delivery window.
	EconomicPerformanceDays = 105

	// ContinuityYears is the continuity safe harbor length in calendar years.
	ContinuityYears = 4
)

var (
	FEOCDeadline              = generic.NewTimePoint(2025, time.December, 31)
	ITCSmallProjectDeadline   = generic.NewTimePoint(2026, time.July, 4)
	SafeHarborEliminationDate = generic.NewTimePoint(2025, time.September, 2)
)

// DeliveryDeadline is the economic performance deadline for a payment.
func DeliveryDeadline(paymentDate generic.TimePoint) generic.TimePoint {
	return paymentDate.AddDays(EconomicPerformanceDays)
}

// ContinuityDeadline is the placed-in-service deadline under the 4-year
// continuity safe harbor.
func ContinuityDeadline(referenceDate generic.TimePoint) generic.TimePoint {
	return generic.EndOfYear(referenceDate.Year() + ContinuityYears)
}

// Deadline is a named statutory date for dashboard display.
type Deadline struct {
	Name        string
	Description string
	Date        generic.TimePoint
}

// StatutoryDeadlines returns the critical deadlines in chronological order.
func StatutoryDeadlines() []Deadline {
	return []Deadline{
		{
			Name:        "FEOC Exemption Deadline",
			Description: "Construction must begin by this date for permanent FEOC exemption",
			Date:        FEOCDeadline,
		},
		{
			Name:        "ITC/PTC Safe Harbor (≤1.5MW)",
			Description: "Last day for 5% safe harbor on small projects",
			Date:        ITCSmallProjectDeadline,
		},
		{
			Name:        "4-Year Continuity Safe Harbor",
			Description: "Projects qualifying in 2025 must be placed in service by this date",
			Date:        ContinuityDeadline(FEOCDeadline),
		},
	}
}
