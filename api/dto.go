/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the safeharbor domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Project:
    ProjectDTO, EvaluationDTO (request body is factory.ProjectJSON)

  Classification:
    TrackDTO, GroupDTO, ITCRateDTO, AuditDTO

  Compliance:
    UpdateComplianceRequest, ComplianceChangeDTO

  Dashboard:
    DashboardDTO, DeadlineDTO, AlertDTO

  Contracts:
    ContractResponse, ExportResponse (request body is factory.ContractJSON)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

MONEY AND DATES:
  Money marshals as a JSON number with two decimals, capacity as a plain
  number, calendar dates as "YYYY-MM-DD" (null when unset).

SEE ALSO:
  - handlers.go: Uses these types
  - factory/project.go: ProjectJSON, ContractJSON
*/
package api

import (
	"time"

	"github.com/warp/safe-harbor-engine/factory"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ProjectDTO represents a project in API responses.
type ProjectDTO struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Capacity          generic.MW        `json:"capacity"`
	TotalCost         generic.Money     `json:"total_cost"`
	AllocatedCost     generic.Money     `json:"allocated_cost"`
	PaymentDate       generic.TimePoint `json:"payment_date"`
	PhysicalWorkBy726 bool              `json:"physical_work_by_726"`
	Group             int               `json:"group"`
	GroupName         string            `json:"group_name"`

	ITCCompliance factory.ComplianceJSON `json:"itc_compliance"`

	Location              string            `json:"location,omitempty"`
	InterconnectionStatus string            `json:"interconnection_status,omitempty"`
	SiteControl           bool              `json:"site_control"`
	Permits               string            `json:"permits,omitempty"`
	EstimatedPIS          generic.TimePoint `json:"estimated_pis"`
	CreatedAt             string            `json:"created_at,omitempty"`

	Evaluation EvaluationDTO `json:"evaluation"`
}

// EvaluationDTO is the derived view of a project.
type EvaluationDTO struct {
	SafeHarborPercentage  *float64          `json:"safe_harbor_percentage"` // nil when total cost is not positive
	SafeHarborDisplay     string            `json:"safe_harbor_display"`
	Qualified             bool              `json:"qualified"`
	Track                 TrackDTO          `json:"track"`
	DeliveryDeadline      generic.TimePoint `json:"delivery_deadline"`
	ContinuityDeadline    generic.TimePoint `json:"continuity_deadline"`
	Group                 GroupDTO          `json:"group"`
	ITC                   ITCRateDTO        `json:"itc"`
	Audit                 AuditDTO          `json:"audit"`
	RecommendedAllocation generic.Money     `json:"recommended_allocation"`
	AllocationShortfall   generic.Money     `json:"allocation_shortfall"`
}

// TrackDTO is the BOC track classification.
type TrackDTO struct {
	Kind          string `json:"kind"`
	Track         string `json:"track"`
	Eligible      bool   `json:"eligible"`
	Warning       bool   `json:"warning"`
	Details       string `json:"details,omitempty"`
	FEOCAvailable bool   `json:"feoc_available"`
	ITCAvailable  bool   `json:"itc_available"`
}

// GroupDTO is a strategic group with its guidance.
type GroupDTO struct {
	Group             int      `json:"group"`
	Name              string   `json:"name"`
	Assigned          bool     `json:"assigned"`
	Risk              string   `json:"risk,omitempty"`
	Summary           string   `json:"summary"`
	Rationale         string   `json:"rationale"`
	FEOCBOCYear       int      `json:"feoc_boc_year,omitempty"`
	ITCBOCYear        int      `json:"itc_boc_year,omitempty"`
	PlacedInServiceBy string   `json:"placed_in_service_by,omitempty"`
	Actions           []string `json:"actions"`
}

// ITCRateDTO is the ITC rate with its audit-trail breakdown.
type ITCRateDTO struct {
	ProjectID int64    `json:"project_id,omitempty"`
	Rate      int      `json:"rate"`
	Breakdown []string `json:"breakdown"`
}

// AuditDTO is the compliance audit outcome.
type AuditDTO struct {
	ProjectID int64    `json:"project_id,omitempty"`
	Status    string   `json:"status"`
	Issues    []string `json:"issues"`
}

// UpdateComplianceRequest sets one compliance field. Value is a bool for
// flags and a number for domestic_content_percentage.
type UpdateComplianceRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// ComplianceChangeDTO is one entry of a project's compliance history.
type ComplianceChangeDTO struct {
	Seq       int64  `json:"seq"`
	Field     string `json:"field"`
	Previous  string `json:"previous"`
	Value     string `json:"value"`
	ChangedAt string `json:"changed_at"`
}

// CalculateResponse is the stateless calculator result.
type CalculateResponse struct {
	BOCQualified bool          `json:"boc_qualified"`
	Evaluation   EvaluationDTO `json:"evaluation"`
}

// DashboardDTO is the portfolio summary.
type DashboardDTO struct {
	TotalProjects     int            `json:"total_projects"`
	QualifiedProjects int            `json:"qualified_projects"`
	FEOCEligible      int            `json:"feoc_eligible"`
	TotalInvested     generic.Money  `json:"total_invested"`
	ByGroup           map[string]int `json:"by_group"`
	ByStatus          map[string]int `json:"by_status"`
	Deadlines         []DeadlineDTO  `json:"deadlines"`
	Alerts            []AlertDTO     `json:"alerts"`
	AsOf              string         `json:"as_of"`
}

// DeadlineDTO is a named statutory or project deadline.
type DeadlineDTO struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Date        generic.TimePoint `json:"date"`
}

// AlertDTO is a project deadline inside the reporting window.
type AlertDTO struct {
	ProjectID     int64             `json:"project_id"`
	ProjectName   string            `json:"project_name"`
	Deadline      string            `json:"deadline"`
	Date          generic.TimePoint `json:"date"`
	DaysRemaining int               `json:"days_remaining"`
	Severity      string            `json:"severity"`
}

// ContractResponse is a drafted contract.
type ContractResponse struct {
	ContractNumber    string            `json:"contract_number"`
	ContractDate      generic.TimePoint `json:"contract_date"`
	Filename          string            `json:"filename"`
	LiquidatedDamages generic.Money     `json:"liquidated_damages"`
	Text              string            `json:"text"`
}

// ExportResponse reports a contract handed to the export sink.
type ExportResponse struct {
	Status         string `json:"status"`
	RequestID      string `json:"request_id"`
	ContractNumber string `json:"contract_number"`
	Filename       string `json:"filename"`
}

// GuideSectionDTO is one top-level section of the compliance guide.
type GuideSectionDTO struct {
	Title string `json:"title"`
	Level int    `json:"level"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category,omitempty"` // "single", "portfolio" or "edge-case"
	ProjectCount int    `json:"project_count"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toProjectDTO(p safeharbor.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:                    int64(p.ID),
		Name:                  p.Name,
		Capacity:              p.Capacity,
		TotalCost:             p.TotalCost.Round(),
		AllocatedCost:         p.AllocatedCost.Round(),
		PaymentDate:           p.PaymentDate,
		PhysicalWorkBy726:     p.PhysicalWorkBy726,
		Group:                 int(p.Group),
		GroupName:             p.Group.String(),
		ITCCompliance:         factory.ComplianceToJSON(p.ITCCompliance),
		Location:              p.Location,
		InterconnectionStatus: p.InterconnectionStatus,
		SiteControl:           p.SiteControl,
		Permits:               p.Permits,
		EstimatedPIS:          p.EstimatedPIS,
		Evaluation:            toEvaluationDTO(safeharbor.Evaluate(p)),
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toProjectDTOs(projects []safeharbor.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	return dtos
}

func toEvaluationDTO(e safeharbor.Evaluation) EvaluationDTO {
	dto := EvaluationDTO{
		SafeHarborDisplay:     e.Percentage.String(),
		Qualified:             e.Qualified,
		Track:                 toTrackDTO(e.Track),
		DeliveryDeadline:      e.DeliveryDeadline,
		ContinuityDeadline:    e.ContinuityDeadline,
		Group:                 toGroupDTO(e.Group),
		ITC:                   ITCRateDTO{Rate: e.ITC.Rate, Breakdown: e.ITC.Breakdown},
		Audit:                 toAuditDTO(e.Audit),
		RecommendedAllocation: e.RecommendedAllocation,
		AllocationShortfall:   e.AllocationShortfall,
	}
	if e.Percentage.Valid {
		pct := e.Percentage.Value.Float64()
		dto.SafeHarborPercentage = &pct
	}
	return dto
}

func toTrackDTO(t safeharbor.TrackResult) TrackDTO {
	return TrackDTO{
		Kind:          t.Kind.String(),
		Track:         t.Track,
		Eligible:      t.Eligible,
		Warning:       t.Warning,
		Details:       t.Details,
		FEOCAvailable: t.FEOCAvailable,
		ITCAvailable:  t.ITCAvailable,
	}
}

func toGroupDTO(r safeharbor.GroupResult) GroupDTO {
	return toGuidanceDTO(r.Guidance, r.Group, r.Assigned)
}

func toGuidanceDTO(g safeharbor.GroupGuidance, group safeharbor.Group, assigned bool) GroupDTO {
	actions := g.Actions
	if actions == nil {
		actions = []string{}
	}
	return GroupDTO{
		Group:             int(group),
		Name:              g.Name,
		Assigned:          assigned,
		Risk:              string(g.Risk),
		Summary:           g.Summary,
		Rationale:         g.Rationale,
		FEOCBOCYear:       g.FEOCBOCYear,
		ITCBOCYear:        g.ITCBOCYear,
		PlacedInServiceBy: g.PlacedInServiceBy,
		Actions:           actions,
	}
}

func toAuditDTO(a safeharbor.AuditResult) AuditDTO {
	issues := append([]string{}, a.Issues...)
	return AuditDTO{Status: string(a.Status), Issues: issues}
}

func toComplianceChangeDTOs(changes []safeharbor.ComplianceChange) []ComplianceChangeDTO {
	dtos := make([]ComplianceChangeDTO, len(changes))
	for i, c := range changes {
		dtos[i] = ComplianceChangeDTO{
			Seq:       c.Seq,
			Field:     string(c.Field),
			Previous:  c.Previous,
			Value:     c.Value,
			ChangedAt: c.ChangedAt.Format(time.RFC3339),
		}
	}
	return dtos
}

func toDeadlineDTOs(deadlines []safeharbor.Deadline) []DeadlineDTO {
	dtos := make([]DeadlineDTO, len(deadlines))
	for i, d := range deadlines {
		dtos[i] = DeadlineDTO{Name: d.Name, Description: d.Description, Date: d.Date}
	}
	return dtos
}

func toAlertDTOs(alerts []safeharbor.Alert) []AlertDTO {
	dtos := make([]AlertDTO, len(alerts))
	for i, a := range alerts {
		dtos[i] = AlertDTO{
			ProjectID:     int64(a.ProjectID),
			ProjectName:   a.ProjectName,
			Deadline:      a.Deadline,
			Date:          a.Date,
			DaysRemaining: a.DaysRemaining,
			Severity:      string(a.Severity),
		}
	}
	return dtos
}
