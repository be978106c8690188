package safeharbor

import "github.com/warp/safe-harbor-engine/generic"

// Evaluation is the derived view of a project. Nothing in it is stored;
// it is recomputed from the project on every call, except Group which
// reports the value frozen at creation.
type Evaluation struct {
	Percentage            Percentage
	Qualified             bool
	Track                 TrackResult
	DeliveryDeadline      generic.TimePoint
	ContinuityDeadline    generic.TimePoint
	Group                 GroupResult
	ITC                   ITCRate
	Audit                 AuditResult
	RecommendedAllocation generic.Money
	AllocationShortfall   generic.Money
}

// Evaluate computes the derived view of p.
func Evaluate(p Project) Evaluation {
	pct := p.SafeHarbor()
	return Evaluation{
		Percentage:            pct,
		Qualified:             pct.Qualifies(),
		Track:                 ClassifyBOCTrack(p.Capacity, p.PaymentDate),
		DeliveryDeadline:      DeliveryDeadline(p.PaymentDate),
		ContinuityDeadline:    ContinuityDeadline(p.PaymentDate),
		Group:                 ResultFor(p.Group),
		ITC:                   ComputeITCRate(p.ITCCompliance),
		Audit:                 AuditCompliance(p),
		RecommendedAllocation: RecommendedAllocation(p.TotalCost),
		AllocationShortfall:   AllocationShortfall(p.AllocatedCost, p.TotalCost),
	}
}
