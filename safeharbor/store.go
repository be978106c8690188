/*
store.go - Persistence interface for projects

PURPOSE:
  Defines the interface between the Portfolio and wherever projects live.
  The default deployment is single-user and memory-resident; the SQLite
  store exists for users who want their portfolio to survive a restart.

WRITE CONTRACT:
  Records are only ever changed by whole-record operations:
  - Append(): A new project. The store issues the id.
  - ReplaceCompliance(): Swaps the ITCCompliance sub-record of one project
    and appends the ComplianceChange that explains it, atomically.
  - NO per-field update, NO single-project delete, NO history edits.
  Reset() clears everything and exists for demo scenarios only.

IDS:
  Ids are sequential starting at 1 and never reused within a store, even
  after Reset(), so an id seen by a client never points at a different
  project.

IMPLEMENTATIONS:
  - safeharbor/store/memory.go: In-memory (default)
  - store/sqlite/sqlite.go: SQLite
*/
package safeharbor

import "context"

// ProjectStore persists projects.
type ProjectStore interface {
	// Append stores p under a freshly issued id and returns the stored record.
	Append(ctx context.Context, p Project) (Project, error)

	// Get returns generic.ErrProjectNotFound for unknown ids.
	Get(ctx context.Context, id ProjectID) (Project, error)

	// List returns all projects ordered by id.
	List(ctx context.Context) ([]Project, error)

	// ReplaceCompliance swaps the compliance record of project id and
	// appends change to its history. The store assigns change.Seq.
	ReplaceCompliance(ctx context.Context, id ProjectID, c ITCCompliance, change ComplianceChange) (Project, error)

	// History returns the compliance changes of project id, oldest first.
	// Unknown ids return generic.ErrProjectNotFound.
	History(ctx context.Context, id ProjectID) ([]ComplianceChange, error)

	// Reset removes all projects and their history.
	Reset(ctx context.Context) error
}
