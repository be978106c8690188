package safeharbor

// AuditStatus is the tri-level compliance status.
type AuditStatus string

const (
	StatusCompliant    AuditStatus = "Compliant"
	StatusAtRisk       AuditStatus = "At Risk"
	StatusNonCompliant AuditStatus = "Non-Compliant"
)

// Audit issue messages, in check order.
const (
	IssueBOCNotQualified        = "BOC qualification not established"
	IssuePrevailingWage         = "Prevailing wage requirements not met"
	IssueApprenticeship         = "Apprenticeship requirements not met"
	IssueLaborStandardsRegistry = "Labor standards compliance not registered"
	IssueContinuousConstruction = "Continuous construction not maintained"
	IssueSafeHarborBelowMinimum = "Safe harbor percentage below 5% minimum"
)

// AuditResult lists compliance issues and the resulting status.
type AuditResult struct {
	Status AuditStatus
	Issues []string
}

// AuditCompliance checks a project's compliance flags and safe harbor
// percentage. 0 issues is Compliant, 1-2 At Risk, 3 or more Non-Compliant.
//
// Labor standards registration only counts as an issue once wage or
// apprenticeship work has started. An undefined percentage (zero total
// cost) counts as below the minimum.
func AuditCompliance(p Project) AuditResult {
	c := p.ITCCompliance
	issues := []string{}

	if !c.BOCQualified {
		issues = append(issues, IssueBOCNotQualified)
	}
	if !c.PrevailingWage {
		issues = append(issues, IssuePrevailingWage)
	}
	if !c.Apprenticeship {
		issues = append(issues, IssueApprenticeship)
	}
	if !c.LaborStandardsRegistered && (c.PrevailingWage || c.Apprenticeship) {
		issues = append(issues, IssueLaborStandardsRegistry)
	}
	if !c.ContinuousConstruction {
		issues = append(issues, IssueContinuousConstruction)
	}
	if !p.SafeHarbor().Qualifies() {
		issues = append(issues, IssueSafeHarborBelowMinimum)
	}

	return AuditResult{Status: statusFor(len(issues)), Issues: issues}
}

func statusFor(issueCount int) AuditStatus {
	switch {
	case issueCount == 0:
		return StatusCompliant
	case issueCount <= 2:
		return StatusAtRisk
	default:
		return StatusNonCompliant
	}
}
