/*
portfolio.go - Project lifecycle

PURPOSE:
  Portfolio is the one stateful entry point of the kernel. It creates
  projects (classifying them exactly once) and applies compliance updates.
  Everything else in this package is a pure function the Portfolio calls.

LIFECYCLE:
  1. Create: calculator input -> Classify -> Append
     Group and BOCQualified are computed here and frozen.
  2. UpdateCompliance: (id, field, value) -> ITCCompliance.With -> ReplaceCompliance
     Capacity and payment date can't change, so the frozen group never
     goes stale through this API. Each update appends a ComplianceChange.
  3. No deletion.

CONCURRENCY:
  Single-user, single-session. The stores serialize their own writes; the
  Portfolio adds no coordination of its own.

SEE ALSO:
  - store.go: ProjectStore interface
  - evaluation.go: Derived view of a project
*/
package safeharbor

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Portfolio manages the tracked projects.
type Portfolio struct {
	store ProjectStore
	now   func() time.Time
}

// NewPortfolio creates a Portfolio backed by store.
func NewPortfolio(store ProjectStore) *Portfolio {
	return &Portfolio{store: store, now: time.Now}
}

// Classify builds the project record for in without storing it: the group
// is assigned and BOCQualified is set when a track is available and the 5%
// test is met.
func Classify(in NewProject) Project {
	group := ClassifyGroup(in.Capacity, in.PaymentDate, in.PhysicalWorkBy726)
	track := ClassifyBOCTrack(in.Capacity, in.PaymentDate)

	compliance := in.Compliance
	compliance.BOCQualified = track.Eligible &&
		SafeHarborPercentage(in.AllocatedCost, in.TotalCost).Qualifies()

	return Project{
		Name:                  in.Name,
		Capacity:              in.Capacity,
		TotalCost:             in.TotalCost,
		AllocatedCost:         in.AllocatedCost,
		PaymentDate:           in.PaymentDate,
		PhysicalWorkBy726:     in.PhysicalWorkBy726,
		Group:                 group.Group,
		ITCCompliance:         compliance,
		Location:              in.Location,
		InterconnectionStatus: in.InterconnectionStatus,
		SiteControl:           in.SiteControl,
		Permits:               in.Permits,
		EstimatedPIS:          in.EstimatedPIS,
	}
}

// Create classifies and stores a new project.
func (pf *Portfolio) Create(ctx context.Context, in NewProject) (Project, error) {
	p := Classify(in)
	p.CreatedAt = pf.now().UTC()

	stored, err := pf.store.Append(ctx, p)
	if err != nil {
		return Project{}, fmt.Errorf("create project %q: %w", in.Name, err)
	}
	log.Printf("project %d %q created: %s, boc_qualified=%t",
		stored.ID, stored.Name, stored.Group, stored.ITCCompliance.BOCQualified)
	return stored, nil
}

// UpdateCompliance sets one compliance field on project id.
func (pf *Portfolio) UpdateCompliance(ctx context.Context, id ProjectID, field ComplianceField, value any) (Project, error) {
	current, err := pf.store.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}

	next, err := current.ITCCompliance.With(field, value)
	if err != nil {
		return Project{}, err
	}

	change := newComplianceChange(id, field, current.ITCCompliance, next, pf.now().UTC())
	updated, err := pf.store.ReplaceCompliance(ctx, id, next, change)
	if err != nil {
		return Project{}, fmt.Errorf("update compliance for project %d: %w", id, err)
	}
	log.Printf("project %d compliance updated: %s=%v", id, field, value)
	return updated, nil
}

func (pf *Portfolio) Get(ctx context.Context, id ProjectID) (Project, error) {
	return pf.store.Get(ctx, id)
}

func (pf *Portfolio) List(ctx context.Context) ([]Project, error) {
	return pf.store.List(ctx)
}

// History returns the compliance changes of project id, oldest first.
func (pf *Portfolio) History(ctx context.Context, id ProjectID) ([]ComplianceChange, error) {
	return pf.store.History(ctx, id)
}

// Reset clears the portfolio. Demo scenarios only.
func (pf *Portfolio) Reset(ctx context.Context) error {
	return pf.store.Reset(ctx)
}
