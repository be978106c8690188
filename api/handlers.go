/*
handlers.go - HTTP API handlers for the safe harbor compliance engine

PURPOSE:
  Exposes the rules kernel via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to safeharbor.

ENDPOINTS:
  Projects:
    GET    /api/projects                  List projects with evaluations
    POST   /api/projects                  Create project (calculator input)
    GET    /api/projects/{id}             Project with evaluation
    PATCH  /api/projects/{id}/compliance  Set one compliance field
    GET    /api/projects/{id}/history     Compliance change history
    GET    /api/projects/{id}/itc         ITC rate and breakdown
    GET    /api/projects/{id}/audit       Compliance audit
    GET    /api/projects/{id}/contract    Contract fields prefilled from project

  Calculator:
    POST   /api/calculate                 Stateless evaluation, nothing stored

  Dashboard:
    GET    /api/dashboard                 Portfolio counters and deadlines
    GET    /api/alerts                    Project deadlines within a window
    GET    /api/groups                    Strategic group guidance

  Contracts and guidance: see contracts.go
  Scenarios: see scenarios.go

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Portfolio: Project lifecycle over a ProjectStore
  - Factory: JSON to domain conversion and validation
  - Exporter: Contract export sink

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (factory)
  3. Call domain logic (Portfolio, Evaluate, Summarize)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Project not found
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Single-user deployment.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/safe-harbor-engine/contract"
	"github.com/warp/safe-harbor-engine/factory"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// DefaultAlertWindow is how many days around today /api/alerts and the
// dashboard look for project deadlines.
const DefaultAlertWindow = 60

// maxBodyBytes caps request bodies. Project and contract forms are small.
const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Portfolio *safeharbor.Portfolio
	Factory   *factory.ProjectFactory
	Exporter  contract.Exporter

	now func() time.Time

	// Track currently loaded scenario
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over portfolio. Drafted contracts are
// exported through exporter.
func NewHandler(portfolio *safeharbor.Portfolio, exporter contract.Exporter) *Handler {
	return &Handler{
		Portfolio: portfolio,
		Factory:   factory.NewProjectFactory(),
		Exporter:  exporter,
		now:       time.Now,
	}
}

func (h *Handler) today() generic.TimePoint {
	return generic.FromTime(h.now())
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns all projects with their evaluations.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Portfolio.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectDTOs(projects))
}

// CreateProject classifies and stores a new project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	in, err := h.Factory.ParseProject(body)
	if err != nil {
		writeDomainError(w, "Invalid project", err)
		return
	}

	p, err := h.Portfolio.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to create project", err)
		return
	}

	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// GetProject returns one project with its evaluation.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// UpdateCompliance sets one compliance field on a project.
func (h *Handler) UpdateCompliance(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	var req UpdateComplianceRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Field == "" {
		writeDomainError(w, "Invalid compliance update",
			&generic.FieldError{Field: "field", Value: req.Field, Err: generic.ErrMissingField})
		return
	}

	p, err := h.Portfolio.UpdateCompliance(r.Context(), id, safeharbor.ComplianceField(req.Field), req.Value)
	if err != nil {
		writeDomainError(w, "Failed to update compliance", err)
		return
	}

	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// GetHistory returns the compliance change history of a project.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	changes, err := h.Portfolio.History(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load history", err)
		return
	}

	writeJSON(w, http.StatusOK, toComplianceChangeDTOs(changes))
}

// GetITCRate returns the ITC rate and its breakdown for a project.
func (h *Handler) GetITCRate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	rate := safeharbor.ComputeITCRate(p.ITCCompliance)
	writeJSON(w, http.StatusOK, ITCRateDTO{
		ProjectID: int64(p.ID),
		Rate:      rate.Rate,
		Breakdown: rate.Breakdown,
	})
}

// GetAudit returns the compliance audit for a project.
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}

	dto := toAuditDTO(safeharbor.AuditCompliance(p))
	dto.ProjectID = int64(p.ID)
	writeJSON(w, http.StatusOK, dto)
}

// GetProjectContract returns contract fields prefilled from a project, for
// the contract generator form.
func (h *Handler) GetProjectContract(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, factory.ContractFromProject(p))
}

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculate evaluates calculator input without storing a project.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var pj factory.ProjectJSON
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if pj.Name == "" {
		pj.Name = "Calculator"
	}

	in, err := h.Factory.FromJSON(pj)
	if err != nil {
		writeDomainError(w, "Invalid calculator input", err)
		return
	}

	p := safeharbor.Classify(in)
	writeJSON(w, http.StatusOK, CalculateResponse{
		BOCQualified: p.ITCCompliance.BOCQualified,
		Evaluation:   toEvaluationDTO(safeharbor.Evaluate(p)),
	})
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetDashboard returns portfolio counters, statutory deadlines and
// project deadline alerts.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Portfolio.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	today := h.today()
	s := safeharbor.Summarize(projects)

	byGroup := make(map[string]int, len(s.ByGroup))
	for g, n := range s.ByGroup {
		byGroup[g.String()] = n
	}
	byStatus := make(map[string]int, len(s.ByStatus))
	for st, n := range s.ByStatus {
		byStatus[string(st)] = n
	}

	writeJSON(w, http.StatusOK, DashboardDTO{
		TotalProjects:     s.TotalProjects,
		QualifiedProjects: s.QualifiedProjects,
		FEOCEligible:      s.FEOCEligible,
		TotalInvested:     s.TotalInvested.Round(),
		ByGroup:           byGroup,
		ByStatus:          byStatus,
		Deadlines:         toDeadlineDTOs(safeharbor.StatutoryDeadlines()),
		Alerts:            toAlertDTOs(safeharbor.UpcomingDeadlines(projects, today, DefaultAlertWindow)),
		AsOf:              today.String(),
	})
}

// ListAlerts returns project deadlines within ?window= days (default 60)
// of ?as_of= (default today).
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	window := DefaultAlertWindow
	if s := r.URL.Query().Get("window"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "window must be a non-negative integer", err)
			return
		}
		window = n
	}

	asOf := h.today()
	if s := r.URL.Query().Get("as_of"); s != "" {
		tp, err := generic.ParseDate(s)
		if err != nil {
			writeDomainError(w, "Invalid as_of", err)
			return
		}
		asOf = tp
	}

	projects, err := h.Portfolio.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects", err)
		return
	}

	writeJSON(w, http.StatusOK, toAlertDTOs(safeharbor.UpcomingDeadlines(projects, asOf, window)))
}

// ListGroups returns the strategic group guidance table.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	guidance := safeharbor.AllGuidance()
	dtos := make([]GroupDTO, len(guidance))
	for i, g := range guidance {
		dtos[i] = toGuidanceDTO(g, g.Group, true)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps sentinel errors to a status code and error code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case generic.IsNotFound(err):
		status, code = http.StatusNotFound, "not_found"
	case generic.IsClientError(err):
		status, code = http.StatusBadRequest, "invalid_input"
	}

	resp := ErrorResponse{Error: message, Code: code, Details: err.Error()}
	writeJSON(w, status, resp)
}

func readBody(r *http.Request) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(r.Body, maxBodyBytes)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func projectID(w http.ResponseWriter, r *http.Request) (safeharbor.ProjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid project id %q", raw), err)
		return 0, false
	}
	return safeharbor.ProjectID(id), true
}

func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (safeharbor.Project, bool) {
	id, ok := projectID(w, r)
	if !ok {
		return safeharbor.Project{}, false
	}

	p, err := h.Portfolio.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load project", err)
		return safeharbor.Project{}, false
	}
	return p, true
}
