/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built portfolios that populate the store with realistic
	projects for testing and demos. Each scenario is a list of calculator
	inputs that go through the same factory validation and Portfolio.Create
	path as POST /api/projects, so groups and BOC qualification are computed,
	never hard-coded.

AVAILABLE SCENARIOS (scenarios.yaml):

	project-sunrise:  5 MW Texas project, Group 3 (loaded at startup)
	mixed-portfolio:  One project per strategic group
	below-threshold:  4.99% allocation, BOC not qualified

HOW SCENARIOS WORK:
 1. Reset the portfolio (clear all projects)
 2. Convert each YAML project to its JSON form
 3. factory.ParseProject validates it
 4. Portfolio.Create classifies and stores it

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mixed-portfolio"}

ADDING NEW SCENARIOS:
 1. Add an entry to scenarios.yaml
 2. That's it; field names match POST /api/projects

NOTE:

	Scenarios reset the portfolio. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Project handlers
  - factory/project.go: Project JSON schema
*/
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/warp/safe-harbor-engine/generic"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// DefaultScenario is loaded at startup unless configured otherwise.
const DefaultScenario = "project-sunrise"

type scenario struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Category    string           `yaml:"category"`
	Projects    []map[string]any `yaml:"projects"`
}

//go:embed scenarios.yaml
var scenariosYAML []byte

var scenarios = mustLoadScenarios(scenariosYAML)

func mustLoadScenarios(data []byte) []scenario {
	var out []scenario
	if err := yaml.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("api: parse scenarios.yaml: %v", err))
	}
	return out
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

func (s scenario) dto() ScenarioDTO {
	return ScenarioDTO{
		ID:           s.ID,
		Name:         s.Name,
		Description:  s.Description,
		Category:     s.Category,
		ProjectCount: len(s.Projects),
	}
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.dto()
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	if s, ok := findScenario(current); ok {
		writeJSON(w, http.StatusOK, s.dto())
		return
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          current,
		Name:        current,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.LoadScenarioByID(r.Context(), req.ScenarioID); err != nil {
		writeDomainError(w, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetPortfolio clears all projects.
func (h *Handler) ResetPortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.Portfolio.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset portfolio", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

// LoadScenarioByID resets the portfolio and creates the scenario's
// projects. Unknown ids fail with generic.ErrUnknownScenario before
// anything is reset.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	s, ok := findScenario(id)
	if !ok {
		return fmt.Errorf("%w: %q", generic.ErrUnknownScenario, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Portfolio.Reset(ctx); err != nil {
		return fmt.Errorf("reset portfolio: %w", err)
	}
	h.currentScenario = ""

	for i, fields := range s.Projects {
		body, err := json.Marshal(fields)
		if err != nil {
			return fmt.Errorf("scenario %s project %d: %w", id, i, err)
		}
		in, err := h.Factory.ParseProject(body)
		if err != nil {
			return fmt.Errorf("scenario %s project %d: %w", id, i, err)
		}
		if _, err := h.Portfolio.Create(ctx, in); err != nil {
			return err
		}
	}

	h.currentScenario = id
	log.Printf("scenario %q loaded (%d projects)", id, len(s.Projects))
	return nil
}
