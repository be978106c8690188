package safeharbor

import "github.com/warp/safe-harbor-engine/generic"

// Summary aggregates a portfolio for the dashboard.
type Summary struct {
	TotalProjects     int
	QualifiedProjects int // 5% test met
	FEOCEligible      int // track eligible and paid on or before the FEOC deadline
	TotalInvested     generic.Money
	ByGroup           map[Group]int
	ByStatus          map[AuditStatus]int
}

// Summarize computes dashboard counters over projects.
func Summarize(projects []Project) Summary {
	s := Summary{
		TotalProjects: len(projects),
		ByGroup:       make(map[Group]int),
		ByStatus:      make(map[AuditStatus]int),
	}
	for _, p := range projects {
		if p.SafeHarbor().Qualifies() {
			s.QualifiedProjects++
		}
		track := ClassifyBOCTrack(p.Capacity, p.PaymentDate)
		if track.Eligible && p.PaymentDate.BeforeOrEqual(FEOCDeadline) {
			s.FEOCEligible++
		}
		s.TotalInvested = s.TotalInvested.Add(p.AllocatedCost)
		s.ByGroup[p.Group]++
		s.ByStatus[AuditCompliance(p).Status]++
	}
	return s
}
