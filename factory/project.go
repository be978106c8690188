/*
Package factory converts JSON input into validated domain values.

PURPOSE:
  The rules kernel assumes well-formed input: positive capacity,
  non-negative costs, real calendar dates. This package is where that is
  enforced. Anything malformed is rejected here with a FieldError naming
  the offending field, so a bad form submission never reaches the
  classifiers.

JSON SCHEMA (project):
  {
    "name": "Project Sunrise",
    "capacity": 5.0,                 // MW AC, number or numeric string
    "total_cost": 8000000,
    "allocated_cost": 520000,
    "payment_date": "2025-12-15",
    "physical_work_by_726": false,
    "location": "Texas",
    "interconnection_status": "Conditional Approval",
    "site_control": true,
    "permits": "Building Permit Submitted",
    "estimated_pis": "2028-06-30",
    "itc_compliance": { "prevailing_wage": true, ... }
  }

JSON SCHEMA (contract):
  {
    "vendor_name": "ABC Solar Supply",
    "buyer_name": "Sunrise Energy LLC",
    "equipment": "550W modules",
    "quantity": "9,100",
    "total_price": 2500000,
    "delivery_date": "2026-03-15",
    "project_name": "Project Sunrise",
    "project_location": "Texas",
    "payment_terms": "100% at signing",
    "contract_date": "2025-12-15",   // optional, defaults to today
    "contract_number": "SH-..."      // optional, generated
  }

VALIDATION:
  - capacity > 0                      ErrInvalidCapacity
  - total_cost, allocated_cost >= 0   ErrInvalidCost
  - payment_date YYYY-MM-DD           ErrInvalidDate
  - name, vendor_name, buyer_name     ErrMissingField
  allocated_cost > total_cost is accepted. The kernel reports the
  percentage as-is.

USAGE:
  f := factory.NewProjectFactory()
  in, err := f.ParseProject(body)
  project, err := portfolio.Create(ctx, in)

SEE ALSO:
  - safeharbor/types.go: NewProject, ITCCompliance
  - contract/draft.go: contract.Data
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/safe-harbor-engine/contract"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProjectJSON is the JSON representation of a project.
type ProjectJSON struct {
	Name              string      `json:"name"`
	Capacity          json.Number `json:"capacity"`
	TotalCost         json.Number `json:"total_cost"`
	AllocatedCost     json.Number `json:"allocated_cost"`
	PaymentDate       string      `json:"payment_date"`
	PhysicalWorkBy726 bool        `json:"physical_work_by_726"`

	Location              string `json:"location,omitempty"`
	InterconnectionStatus string `json:"interconnection_status,omitempty"`
	SiteControl           bool   `json:"site_control"`
	Permits               string `json:"permits,omitempty"`
	EstimatedPIS          string `json:"estimated_pis,omitempty"`

	Compliance *ComplianceJSON `json:"itc_compliance,omitempty"`
}

// ComplianceJSON is the JSON representation of ITC compliance flags.
type ComplianceJSON struct {
	BOCQualified              bool        `json:"boc_qualified"`
	PrevailingWage            bool        `json:"prevailing_wage"`
	Apprenticeship            bool        `json:"apprenticeship"`
	DomesticContent           bool        `json:"domestic_content"`
	DomesticContentPercentage json.Number `json:"domestic_content_percentage,omitempty"`
	EnergyCommunity           bool        `json:"energy_community"`
	LaborStandardsRegistered  bool        `json:"labor_standards_registered"`
	ContinuousConstruction    bool        `json:"continuous_construction"`
}

// ContractJSON is the JSON representation of contract fields.
type ContractJSON struct {
	VendorName      string      `json:"vendor_name"`
	BuyerName       string      `json:"buyer_name"`
	Equipment       string      `json:"equipment"`
	Quantity        string      `json:"quantity"`
	TotalPrice      json.Number `json:"total_price"`
	DeliveryDate    string      `json:"delivery_date"`
	ProjectName     string      `json:"project_name"`
	ProjectLocation string      `json:"project_location"`
	PaymentTerms    string      `json:"payment_terms"`
	ContractDate    string      `json:"contract_date,omitempty"`
	ContractNumber  string      `json:"contract_number,omitempty"`
}

// =============================================================================
// PROJECT FACTORY
// =============================================================================

// ProjectFactory converts JSON input to domain values.
type ProjectFactory struct{}

// NewProjectFactory creates a new project factory.
func NewProjectFactory() *ProjectFactory {
	return &ProjectFactory{}
}

// ParseProject parses a JSON document into a validated NewProject.
func (f *ProjectFactory) ParseProject(data []byte) (safeharbor.NewProject, error) {
	var pj ProjectJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return safeharbor.NewProject{}, fmt.Errorf("%w: project JSON: %w", generic.ErrMalformedInput, err)
	}
	return f.FromJSON(pj)
}

// FromJSON validates pj and converts it to a NewProject.
func (f *ProjectFactory) FromJSON(pj ProjectJSON) (safeharbor.NewProject, error) {
	name := strings.TrimSpace(pj.Name)
	if name == "" {
		return safeharbor.NewProject{}, &generic.FieldError{Field: "name", Value: pj.Name, Err: generic.ErrMissingField}
	}

	capacity, err := parseDecimal("capacity", pj.Capacity, generic.ErrInvalidCapacity)
	if err != nil {
		return safeharbor.NewProject{}, err
	}
	if !capacity.IsPositive() {
		return safeharbor.NewProject{}, &generic.FieldError{Field: "capacity", Value: pj.Capacity, Err: generic.ErrInvalidCapacity}
	}

	totalCost, err := parseCost("total_cost", pj.TotalCost)
	if err != nil {
		return safeharbor.NewProject{}, err
	}
	allocated, err := parseCost("allocated_cost", pj.AllocatedCost)
	if err != nil {
		return safeharbor.NewProject{}, err
	}

	paymentDate, err := parseDate("payment_date", pj.PaymentDate, true)
	if err != nil {
		return safeharbor.NewProject{}, err
	}
	pis, err := parseDate("estimated_pis", pj.EstimatedPIS, false)
	if err != nil {
		return safeharbor.NewProject{}, err
	}

	in := safeharbor.NewProject{
		Name:                  name,
		Capacity:              generic.MW{Value: capacity},
		TotalCost:             totalCost,
		AllocatedCost:         allocated,
		PaymentDate:           paymentDate,
		PhysicalWorkBy726:     pj.PhysicalWorkBy726,
		Location:              pj.Location,
		InterconnectionStatus: pj.InterconnectionStatus,
		SiteControl:           pj.SiteControl,
		Permits:               pj.Permits,
		EstimatedPIS:          pis,
	}

	if pj.Compliance != nil {
		c, err := complianceFromJSON(*pj.Compliance)
		if err != nil {
			return safeharbor.NewProject{}, err
		}
		in.Compliance = c
	}
	return in, nil
}

// ToJSON converts a stored project back to its JSON form.
func (f *ProjectFactory) ToJSON(p safeharbor.Project) ProjectJSON {
	c := ComplianceToJSON(p.ITCCompliance)
	return ProjectJSON{
		Name:                  p.Name,
		Capacity:              json.Number(p.Capacity.String()),
		TotalCost:             json.Number(p.TotalCost.String()),
		AllocatedCost:         json.Number(p.AllocatedCost.String()),
		PaymentDate:           p.PaymentDate.String(),
		PhysicalWorkBy726:     p.PhysicalWorkBy726,
		Location:              p.Location,
		InterconnectionStatus: p.InterconnectionStatus,
		SiteControl:           p.SiteControl,
		Permits:               p.Permits,
		EstimatedPIS:          p.EstimatedPIS.String(),
		Compliance:            &c,
	}
}

// ComplianceToJSON converts compliance flags to their JSON form.
func ComplianceToJSON(c safeharbor.ITCCompliance) ComplianceJSON {
	return ComplianceJSON{
		BOCQualified:              c.BOCQualified,
		PrevailingWage:            c.PrevailingWage,
		Apprenticeship:            c.Apprenticeship,
		DomesticContent:           c.DomesticContent,
		DomesticContentPercentage: json.Number(c.DomesticContentPercentage.String()),
		EnergyCommunity:           c.EnergyCommunity,
		LaborStandardsRegistered:  c.LaborStandardsRegistered,
		ContinuousConstruction:    c.ContinuousConstruction,
	}
}

// ParseContract parses a JSON document into contract fields. ContractDate
// and ContractNumber stay empty when omitted; contract.Stamp fills them.
func (f *ProjectFactory) ParseContract(data []byte) (contract.Data, error) {
	var cj ContractJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return contract.Data{}, fmt.Errorf("%w: contract JSON: %w", generic.ErrMalformedInput, err)
	}
	return f.ContractFromJSON(cj)
}

// ContractFromJSON validates cj and converts it to contract.Data.
func (f *ProjectFactory) ContractFromJSON(cj ContractJSON) (contract.Data, error) {
	for _, req := range []struct{ field, value string }{
		{"vendor_name", cj.VendorName},
		{"buyer_name", cj.BuyerName},
	} {
		if strings.TrimSpace(req.value) == "" {
			return contract.Data{}, &generic.FieldError{Field: req.field, Value: req.value, Err: generic.ErrMissingField}
		}
	}

	price, err := parseCost("total_price", cj.TotalPrice)
	if err != nil {
		return contract.Data{}, err
	}
	delivery, err := parseDate("delivery_date", cj.DeliveryDate, true)
	if err != nil {
		return contract.Data{}, err
	}
	contractDate, err := parseDate("contract_date", cj.ContractDate, false)
	if err != nil {
		return contract.Data{}, err
	}

	return contract.Data{
		VendorName:      strings.TrimSpace(cj.VendorName),
		BuyerName:       strings.TrimSpace(cj.BuyerName),
		Equipment:       cj.Equipment,
		Quantity:        cj.Quantity,
		TotalPrice:      price,
		DeliveryDate:    delivery,
		ProjectName:     cj.ProjectName,
		ProjectLocation: cj.ProjectLocation,
		PaymentTerms:    cj.PaymentTerms,
		ContractDate:    contractDate,
		ContractNumber:  strings.TrimSpace(cj.ContractNumber),
	}, nil
}

// ContractFromProject prefills contract fields from a tracked project: the
// allocated cost becomes the price and the delivery date defaults to the
// 105-day deadline.
func ContractFromProject(p safeharbor.Project) ContractJSON {
	return ContractJSON{
		TotalPrice:      json.Number(p.AllocatedCost.String()),
		DeliveryDate:    safeharbor.DeliveryDeadline(p.PaymentDate).String(),
		ProjectName:     p.Name,
		ProjectLocation: p.Location,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDecimal(field string, n json.Number, sentinel error) (decimal.Decimal, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return decimal.Zero, &generic.FieldError{Field: field, Value: s, Err: sentinel}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &generic.FieldError{Field: field, Value: s, Err: sentinel}
	}
	return d, nil
}

func parseCost(field string, n json.Number) (generic.Money, error) {
	d, err := parseDecimal(field, n, generic.ErrInvalidCost)
	if err != nil {
		return generic.Money{}, err
	}
	if d.IsNegative() {
		return generic.Money{}, &generic.FieldError{Field: field, Value: n, Err: generic.ErrInvalidCost}
	}
	return generic.Money{Value: d}, nil
}

func parseDate(field, s string, required bool) (generic.TimePoint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return generic.TimePoint{}, &generic.FieldError{Field: field, Value: s, Err: generic.ErrInvalidDate}
		}
		return generic.TimePoint{}, nil
	}
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}, &generic.FieldError{Field: field, Value: s, Err: generic.ErrInvalidDate}
	}
	return tp, nil
}

func complianceFromJSON(cj ComplianceJSON) (safeharbor.ITCCompliance, error) {
	c := safeharbor.ITCCompliance{
		BOCQualified:             cj.BOCQualified,
		PrevailingWage:           cj.PrevailingWage,
		Apprenticeship:           cj.Apprenticeship,
		DomesticContent:          cj.DomesticContent,
		EnergyCommunity:          cj.EnergyCommunity,
		LaborStandardsRegistered: cj.LaborStandardsRegistered,
		ContinuousConstruction:   cj.ContinuousConstruction,
	}
	if cj.DomesticContentPercentage == "" {
		return c, nil
	}
	return c.With(safeharbor.FieldDomesticContentPercentage, cj.DomesticContentPercentage)
}
