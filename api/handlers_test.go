/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Project create/list/get and validation errors
- Compliance updates
- ITC rate, audit, calculator
- Dashboard and deadline alerts
- Contracts, export rate limiting and guidance
- Scenarios
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/safe-harbor-engine/contract"
	"github.com/warp/safe-harbor-engine/safeharbor"
	"github.com/warp/safe-harbor-engine/safeharbor/store"
	"golang.org/x/time/rate"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2026, time.March, 20, 15, 4, 5, 0, time.UTC)

const sunriseJSON = `{
	"name": "Project Sunrise",
	"capacity": 5.0,
	"total_cost": 8000000,
	"allocated_cost": 520000,
	"payment_date": "2025-12-15",
	"physical_work_by_726": false,
	"location": "Texas",
	"site_control": true,
	"estimated_pis": "2028-06-30"
}`

const contractJSON = `{
	"vendor_name": "SunPower Equipment LLC",
	"buyer_name": "Sunrise Solar Holdings",
	"equipment": "Solar modules",
	"quantity": "12,000 modules",
	"total_price": 2500000,
	"delivery_date": "2026-03-01",
	"project_name": "Project Sunrise",
	"project_location": "Texas",
	"payment_terms": "Net 30"
}`

type testServer struct {
	handler   *Handler
	router    http.Handler
	exportDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	exportDir := t.TempDir()
	h := NewHandler(safeharbor.NewPortfolio(store.NewMemory()), contract.NewDirExporter(exportDir))
	h.now = func() time.Time { return fixedNow }
	return &testServer{
		handler:   h,
		router:    NewRouter(h, RouterOptions{StaticDir: filepath.Join(exportDir, "no-ui")}),
		exportDir: exportDir,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (ts *testServer) createSunrise(t *testing.T) ProjectDTO {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/projects", sunriseJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[ProjectDTO](t, rec)
}

// =============================================================================
// PROJECTS
// =============================================================================

func TestCreateProject_Sunrise(t *testing.T) {
	// GIVEN: An empty portfolio
	ts := newTestServer(t)

	// WHEN: Creating Project Sunrise
	p := ts.createSunrise(t)

	// THEN: It is Group 3, BOC qualified via the FEOC track at 6.50%
	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, 3, p.Group)
	assert.Equal(t, "Group 3", p.GroupName)
	assert.True(t, p.ITCCompliance.BOCQualified)
	assert.Equal(t, "6.50%", p.Evaluation.SafeHarborDisplay)
	require.NotNil(t, p.Evaluation.SafeHarborPercentage)
	assert.InDelta(t, 6.5, *p.Evaluation.SafeHarborPercentage, 0.0001)
	assert.True(t, p.Evaluation.Qualified)
	assert.Equal(t, "feoc_only", p.Evaluation.Track.Kind)
	assert.Equal(t, "2026-03-30", p.Evaluation.DeliveryDeadline.String())
	assert.Equal(t, 6, p.Evaluation.ITC.Rate)
	assert.Equal(t, "Non-Compliant", p.Evaluation.Audit.Status)
	assert.Equal(t, "High", p.Evaluation.Group.Risk)
	assert.NotEmpty(t, p.CreatedAt)
}

func TestCreateProject_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero capacity", `{"name":"X","capacity":0,"total_cost":100,"allocated_cost":5,"payment_date":"2025-12-01"}`},
		{"negative cost", `{"name":"X","capacity":2,"total_cost":-1,"allocated_cost":5,"payment_date":"2025-12-01"}`},
		{"bad date", `{"name":"X","capacity":2,"total_cost":100,"allocated_cost":5,"payment_date":"12/01/2025"}`},
		{"missing name", `{"capacity":2,"total_cost":100,"allocated_cost":5,"payment_date":"2025-12-01"}`},
		{"malformed", `{"name":`},
		{"wrong type", `{"name":"X","capacity":true}`},
		{"array body", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(t, http.MethodPost, "/api/projects", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			list := decode[[]ProjectDTO](t, ts.do(t, http.MethodGet, "/api/projects", ""))
			assert.Empty(t, list, "nothing stored on validation failure")
		})
	}
}

func TestListAndGetProjects(t *testing.T) {
	// GIVEN: Two projects
	ts := newTestServer(t)
	ts.createSunrise(t)
	rec := ts.do(t, http.MethodPost, "/api/projects",
		`{"name":"Small","capacity":1.2,"total_cost":1000000,"allocated_cost":65000,"payment_date":"2025-11-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: Listing
	list := decode[[]ProjectDTO](t, ts.do(t, http.MethodGet, "/api/projects", ""))

	// THEN: Both in insertion order
	require.Len(t, list, 2)
	assert.Equal(t, "Project Sunrise", list[0].Name)
	assert.Equal(t, "Small", list[1].Name)
	assert.Equal(t, 1, list[1].Group)

	// AND: Get by id works, unknown ids are 404, garbage ids are 400
	got := decode[ProjectDTO](t, ts.do(t, http.MethodGet, "/api/projects/2", ""))
	assert.Equal(t, "Small", got.Name)

	missing := ts.do(t, http.MethodGet, "/api/projects/99", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, missing).Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/projects/abc", "").Code)
}

// =============================================================================
// COMPLIANCE
// =============================================================================

func TestUpdateCompliance(t *testing.T) {
	ts := newTestServer(t)
	p := ts.createSunrise(t)
	path := "/api/projects/1/compliance"
	require.Equal(t, int64(1), p.ID)

	// WHEN: Setting flags
	for _, field := range []string{"prevailing_wage", "apprenticeship", "labor_standards_registered", "continuous_construction"} {
		rec := ts.do(t, http.MethodPatch, path, `{"field":"`+field+`","value":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	// THEN: Full base rate and a compliant audit
	itc := decode[ITCRateDTO](t, ts.do(t, http.MethodGet, "/api/projects/1/itc", ""))
	assert.Equal(t, 30, itc.Rate)
	assert.Equal(t, "Total ITC rate: 30%", itc.Breakdown[len(itc.Breakdown)-1])

	audit := decode[AuditDTO](t, ts.do(t, http.MethodGet, "/api/projects/1/audit", ""))
	assert.Equal(t, "Compliant", audit.Status)
	assert.Empty(t, audit.Issues)

	// AND: Percentage updates accept a number
	rec := ts.do(t, http.MethodPatch, path, `{"field":"domestic_content_percentage","value":45.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[ProjectDTO](t, rec)
	assert.Equal(t, "45.5", updated.ITCCompliance.DomesticContentPercentage.String())

	// AND: Every update is in the history
	history := decode[[]ComplianceChangeDTO](t, ts.do(t, http.MethodGet, "/api/projects/1/history", ""))
	require.Len(t, history, 5)
	assert.Equal(t, "prevailing_wage", history[0].Field)
	assert.Equal(t, "false", history[0].Previous)
	assert.Equal(t, "true", history[0].Value)
	assert.Equal(t, "domestic_content_percentage", history[4].Field)
	assert.Equal(t, "45.5", history[4].Value)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/projects/9/history", "").Code)
}

func TestUpdateCompliance_Errors(t *testing.T) {
	ts := newTestServer(t)
	ts.createSunrise(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"unknown field", "/api/projects/1/compliance", `{"field":"solar_flare","value":true}`, http.StatusBadRequest},
		{"wrong type", "/api/projects/1/compliance", `{"field":"prevailing_wage","value":"yes"}`, http.StatusBadRequest},
		{"percentage out of range", "/api/projects/1/compliance", `{"field":"domestic_content_percentage","value":101}`, http.StatusBadRequest},
		{"missing field", "/api/projects/1/compliance", `{"value":true}`, http.StatusBadRequest},
		{"missing project", "/api/projects/7/compliance", `{"field":"prevailing_wage","value":true}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	// THEN: The stored record is unchanged
	p := decode[ProjectDTO](t, ts.do(t, http.MethodGet, "/api/projects/1", ""))
	assert.False(t, p.ITCCompliance.PrevailingWage)
	assert.Equal(t, "0", p.ITCCompliance.DomesticContentPercentage.String())
}

// =============================================================================
// CALCULATOR
// =============================================================================

func TestCalculate(t *testing.T) {
	ts := newTestServer(t)

	// WHEN: Evaluating a 4.99% allocation on a large project
	rec := ts.do(t, http.MethodPost, "/api/calculate",
		`{"capacity":"10","total_cost":"10000000","allocated_cost":"499000","payment_date":"2025-12-01"}`)

	// THEN: Not qualified, with a shortfall to 6.5%
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[CalculateResponse](t, rec)
	assert.False(t, resp.BOCQualified)
	assert.False(t, resp.Evaluation.Qualified)
	assert.Equal(t, "4.99%", resp.Evaluation.SafeHarborDisplay)
	assert.Equal(t, "650000.00", resp.Evaluation.RecommendedAllocation.String())
	assert.Equal(t, "151000.00", resp.Evaluation.AllocationShortfall.String())

	// AND: Nothing was stored
	list := decode[[]ProjectDTO](t, ts.do(t, http.MethodGet, "/api/projects", ""))
	assert.Empty(t, list)
}

func TestCalculate_InvalidInput(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/calculate",
		`{"capacity":"-1","total_cost":"100","allocated_cost":"5","payment_date":"2025-12-01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// DASHBOARD AND ALERTS
// =============================================================================

func TestDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.createSunrise(t)

	d := decode[DashboardDTO](t, ts.do(t, http.MethodGet, "/api/dashboard", ""))

	assert.Equal(t, 1, d.TotalProjects)
	assert.Equal(t, 1, d.QualifiedProjects)
	assert.Equal(t, 1, d.FEOCEligible)
	assert.Equal(t, "520000.00", d.TotalInvested.String())
	assert.Equal(t, map[string]int{"Group 3": 1}, d.ByGroup)
	assert.Equal(t, map[string]int{"Non-Compliant": 1}, d.ByStatus)
	assert.Len(t, d.Deadlines, 3)
	assert.Equal(t, "2026-03-20", d.AsOf)

	// 105-day deadline 2026-03-30 is 10 days out
	require.Len(t, d.Alerts, 1)
	assert.Equal(t, 10, d.Alerts[0].DaysRemaining)
	assert.Equal(t, "due_soon", d.Alerts[0].Severity)
}

func TestListAlerts(t *testing.T) {
	ts := newTestServer(t)
	ts.createSunrise(t)

	tests := []struct {
		name     string
		query    string
		count    int
		severity string
	}{
		{"default window", "", 1, "due_soon"},
		{"after the deadline", "?as_of=2026-04-02", 1, "overdue"},
		{"narrow window", "?window=5", 0, ""},
		{"far before", "?as_of=2025-12-16&window=30", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, "/api/alerts"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			alerts := decode[[]AlertDTO](t, rec)
			require.Len(t, alerts, tt.count)
			if tt.count > 0 {
				assert.Equal(t, tt.severity, alerts[0].Severity)
				assert.Equal(t, "Project Sunrise", alerts[0].ProjectName)
			}
		})
	}

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/alerts?window=-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/alerts?as_of=tomorrow", "").Code)
}

func TestListGroups(t *testing.T) {
	ts := newTestServer(t)

	groups := decode[[]GroupDTO](t, ts.do(t, http.MethodGet, "/api/groups", ""))

	require.Len(t, groups, 4)
	for i, g := range groups {
		assert.Equal(t, i+1, g.Group)
		assert.NotEmpty(t, g.Name)
		assert.NotEmpty(t, g.Actions)
	}
}

// =============================================================================
// CONTRACTS
// =============================================================================

func TestDraftContract(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/contracts", contractJSON)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[ContractResponse](t, rec)
	assert.True(t, strings.HasPrefix(resp.ContractNumber, "SH-"))
	assert.Equal(t, "2026-03-20", resp.ContractDate.String())
	assert.Equal(t, "125000.00", resp.LiquidatedDamages.String())
	assert.Equal(t, contract.Filename(fixedNow), resp.Filename)
	assert.Contains(t, resp.Text, "BINDING WRITTEN CONTRACT FOR EQUIPMENT PURCHASE")
	assert.Contains(t, resp.Text, "$2,500,000.00")
	assert.Contains(t, resp.Text, resp.ContractNumber)
}

func TestDraftContract_MissingVendor(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/contracts", `{"buyer_name":"B","total_price":1,"delivery_date":"2026-01-01"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContractEndpoints_MalformedBody(t *testing.T) {
	for _, path := range []string{"/api/contracts", "/api/contracts/download", "/api/contracts/export"} {
		for _, body := range []string{`{"vendor_name":`, `[]`} {
			ts := newTestServer(t)

			rec := ts.do(t, http.MethodPost, path, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", path, body)
			assert.Equal(t, "invalid_input", decode[ErrorResponse](t, rec).Code)
		}
	}
}

func TestDownloadContract(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/contracts/download", contractJSON)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+contract.Filename(fixedNow)+`"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Contract-Number"), "SH-"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "BINDING WRITTEN CONTRACT"))
}

func TestExportContract(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/contracts/export", contractJSON)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[ExportResponse](t, rec)
	assert.Equal(t, "exported", resp.Status)
	assert.NotEmpty(t, resp.RequestID)

	written, err := os.ReadFile(filepath.Join(ts.exportDir, resp.Filename))
	require.NoError(t, err)
	assert.Contains(t, string(written), resp.ContractNumber)
}

type failingExporter struct{}

func (failingExporter) Export(context.Context, string, string) error {
	return errors.New("disk full")
}

func TestExportContract_SinkFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.handler.Exporter = failingExporter{}

	rec := ts.do(t, http.MethodPost, "/api/contracts/export", contractJSON)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestExportContract_RateLimited(t *testing.T) {
	// GIVEN: An export limiter with a burst of one and no refill
	h := NewHandler(safeharbor.NewPortfolio(store.NewMemory()), contract.NewDirExporter(t.TempDir()))
	router := NewRouter(h, RouterOptions{
		StaticDir:     filepath.Join(t.TempDir(), "no-ui"),
		ExportLimiter: rate.NewLimiter(0, 1),
	})
	ts := &testServer{handler: h, router: router}

	// WHEN: Exporting twice
	first := ts.do(t, http.MethodPost, "/api/contracts/export", contractJSON)
	second := ts.do(t, http.MethodPost, "/api/contracts/export", contractJSON)

	// THEN: The second export is rejected, drafting is not limited
	assert.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/contracts", contractJSON).Code)
}

func TestProjectContractPrefill(t *testing.T) {
	ts := newTestServer(t)
	ts.createSunrise(t)

	rec := ts.do(t, http.MethodGet, "/api/projects/1/contract", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prefill := decode[map[string]any](t, rec)
	assert.Equal(t, "Project Sunrise", prefill["project_name"])
	assert.Equal(t, "2026-03-30", prefill["delivery_date"])
}

// =============================================================================
// GUIDANCE
// =============================================================================

func TestGuidance(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/guidance", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, "105")

	sections := decode[[]GuideSectionDTO](t, ts.do(t, http.MethodGet, "/api/guidance/sections", ""))
	require.NotEmpty(t, sections)
	assert.Equal(t, 1, sections[0].Level)
	for _, s := range sections {
		assert.NotEmpty(t, s.Title)
		assert.LessOrEqual(t, s.Level, 2)
	}
}

func TestFallbackIndex(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("/api/projects")))
}
