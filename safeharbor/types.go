// Package safeharbor implements the Beginning of Construction rules kernel:
// the 5% safe harbor test, BOC track and strategic group classification,
// ITC rate computation, compliance auditing and the project lifecycle.
//
// Every classifier and calculator in this package is a pure function of its
// arguments. The only stateful type is Portfolio, which owns a ProjectStore.
package safeharbor

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/safe-harbor-engine/generic"
)

// =============================================================================
// PROJECT
// =============================================================================

// ProjectID is issued by the store. Sequential, never reused.
type ProjectID int64

// Project is a renewable energy facility tracked for BOC qualification.
//
// Group and ITCCompliance.BOCQualified are computed once at creation and
// frozen. Only ITCCompliance changes afterwards, via Portfolio.UpdateCompliance.
type Project struct {
	ID ProjectID

	Name          string
	Capacity      generic.MW
	TotalCost     generic.Money
	AllocatedCost generic.Money
	PaymentDate   generic.TimePoint

	// PhysicalWorkBy726 is the owner's assertion that physical work of a
	// significant nature can be completed by July 4, 2026. Only consulted for
	// projects above the size threshold paid on or before the FEOC deadline.
	PhysicalWorkBy726 bool

	Group         Group
	ITCCompliance ITCCompliance

	// Descriptive fields, carried through untouched.
	Location              string
	InterconnectionStatus string
	SiteControl           bool
	Permits               string
	EstimatedPIS          generic.TimePoint

	CreatedAt time.Time
}

// NewProject is the calculator input submitted to create a project.
// Compliance seeds the ITC flags; BOCQualified in it is ignored and
// recomputed.
type NewProject struct {
	Name              string
	Capacity          generic.MW
	TotalCost         generic.Money
	AllocatedCost     generic.Money
	PaymentDate       generic.TimePoint
	PhysicalWorkBy726 bool
	Compliance        ITCCompliance

	Location              string
	InterconnectionStatus string
	SiteControl           bool
	Permits               string
	EstimatedPIS          generic.TimePoint
}

// SafeHarbor returns the project's current safe harbor percentage.
func (p Project) SafeHarbor() Percentage {
	return SafeHarborPercentage(p.AllocatedCost, p.TotalCost)
}

// =============================================================================
// ITC COMPLIANCE
// =============================================================================

// ITCCompliance holds the flags that drive the ITC rate and the audit.
// DomesticContentPercentage (0-100) only matters when DomesticContent is set.
type ITCCompliance struct {
	BOCQualified              bool
	PrevailingWage            bool
	Apprenticeship            bool
	DomesticContent           bool
	DomesticContentPercentage decimal.Decimal
	EnergyCommunity           bool
	LaborStandardsRegistered  bool
	ContinuousConstruction    bool
}

// ComplianceField names one member of ITCCompliance on the wire.
type ComplianceField string

const (
	FieldBOCQualified              ComplianceField = "boc_qualified"
	FieldPrevailingWage            ComplianceField = "prevailing_wage"
	FieldApprenticeship            ComplianceField = "apprenticeship"
	FieldDomesticContent           ComplianceField = "domestic_content"
	FieldDomesticContentPercentage ComplianceField = "domestic_content_percentage"
	FieldEnergyCommunity           ComplianceField = "energy_community"
	FieldLaborStandardsRegistered  ComplianceField = "labor_standards_registered"
	FieldContinuousConstruction    ComplianceField = "continuous_construction"
)

// ComplianceFields lists every updatable field in display order.
var ComplianceFields = []ComplianceField{
	FieldBOCQualified,
	FieldPrevailingWage,
	FieldApprenticeship,
	FieldDomesticContent,
	FieldDomesticContentPercentage,
	FieldEnergyCommunity,
	FieldLaborStandardsRegistered,
	FieldContinuousConstruction,
}
