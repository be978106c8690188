package safeharbor

import (
	_ "embed"
	"fmt"

	"github.com/warp/safe-harbor-engine/generic"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// STRATEGIC GROUPS
// =============================================================================

// Group is the strategic risk grouping of a project. GroupUnassigned is an
// explicit state for inputs no branch of the decision tree accepts.
type Group int

const (
	GroupUnassigned Group = iota
	Group1
	Group2
	Group3
	Group4
)

func (g Group) String() string {
	if g < Group1 || g > Group4 {
		return "Unassigned"
	}
	return fmt.Sprintf("Group %d", int(g))
}

// RiskLevel is presentation data attached to each group.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskHigh     RiskLevel = "High"
	RiskVeryHigh RiskLevel = "Very High"
)

// GroupGuidance is the static rationale shown for a group.
type GroupGuidance struct {
	Group             Group     `yaml:"group"`
	Name              string    `yaml:"name"`
	Risk              RiskLevel `yaml:"risk"`
	Summary           string    `yaml:"summary"`
	Rationale         string    `yaml:"rationale"`
	FEOCBOCYear       int       `yaml:"feoc_boc_year"`
	ITCBOCYear        int       `yaml:"itc_boc_year"`
	PlacedInServiceBy string    `yaml:"placed_in_service_by"`
	Actions           []string  `yaml:"actions"`
}

//go:embed groups.yaml
var groupsYAML []byte

var groupGuidance = mustLoadGuidance(groupsYAML)

func mustLoadGuidance(data []byte) map[Group]GroupGuidance {
	var entries []GroupGuidance
	if err := yaml.Unmarshal(data, &entries); err != nil {
		panic(fmt.Sprintf("safeharbor: parse groups.yaml: %v", err))
	}
	table := make(map[Group]GroupGuidance, len(entries))
	for _, e := range entries {
		table[e.Group] = e
	}
	for g := Group1; g <= Group4; g++ {
		if _, ok := table[g]; !ok {
			panic(fmt.Sprintf("safeharbor: groups.yaml missing %s", g))
		}
	}
	return table
}

var unassignedGuidance = GroupGuidance{
	Group:     GroupUnassigned,
	Name:      "Unassigned",
	Summary:   "Project could not be classified",
	Rationale: "Capacity must be positive and a payment date is required before a strategic group can be assigned.",
}

// GuidanceFor returns the guidance entry for g.
func GuidanceFor(g Group) GroupGuidance {
	if guidance, ok := groupGuidance[g]; ok {
		return guidance
	}
	return unassignedGuidance
}

// AllGuidance returns groups 1-4 in order.
func AllGuidance() []GroupGuidance {
	out := make([]GroupGuidance, 0, 4)
	for g := Group1; g <= Group4; g++ {
		out = append(out, groupGuidance[g])
	}
	return out
}

// GroupResult is the outcome of ClassifyGroup.
type GroupResult struct {
	Group    Group
	Assigned bool
	Guidance GroupGuidance
}

// ResultFor wraps a stored group with its guidance.
func ResultFor(g Group) GroupResult {
	return GroupResult{
		Group:    g,
		Assigned: g != GroupUnassigned,
		Guidance: GuidanceFor(g),
	}
}

// ClassifyGroup places a project in one of the four strategic groups:
//
//  1. paid after Dec 31, 2025             -> Group 4
//  2. capacity <= 1.5 MW                   -> Group 1
//  3. capacity > 1.5 MW, physical work     -> Group 2
//  4. capacity > 1.5 MW, no physical work  -> Group 3
//
// Non-positive capacity or a missing date yields GroupUnassigned.
func ClassifyGroup(capacity generic.MW, paymentDate generic.TimePoint, physicalWorkBy726 bool) GroupResult {
	switch {
	case !capacity.IsPositive() || paymentDate.IsZero():
		return ResultFor(GroupUnassigned)
	case paymentDate.After(FEOCDeadline):
		return ResultFor(Group4)
	case capacity.LessThanOrEqual(SizeThreshold):
		return ResultFor(Group1)
	case physicalWorkBy726:
		return ResultFor(Group2)
	default:
		return ResultFor(Group3)
	}
}
