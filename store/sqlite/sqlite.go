/*
Package sqlite provides a SQLite-backed ProjectStore.

PURPOSE:
  Durable storage for a single-user deployment. The in-memory store in
  safeharbor/store is the default; this one is selected with -db or
  DB_PATH so a portfolio survives restarts.

INTERFACES IMPLEMENTED:
  safeharbor.ProjectStore: Append, Get, List, ReplaceCompliance, History, Reset

WRITE RULES:
  - Projects are inserted once. The only UPDATE touches the compliance
    columns; capacity, costs, payment date and group are never rewritten.
  - No DELETE of a single project. Reset clears both tables for demo
    scenarios.
  - compliance_changes is append-only. ReplaceCompliance updates the
    project row and inserts the change in one transaction.
  - ids come from AUTOINCREMENT, so they are never reused, not even
    after Reset.

KEY TABLES:
  projects:           One row per project, compliance flags as columns
  compliance_changes: One row per compliance update (history)

STORAGE FORMATS:
  - Money, capacity and percentages: decimal TEXT (exact, no float drift)
  - Calendar dates: "YYYY-MM-DD" TEXT, empty for unset
  - Timestamps: RFC3339 TEXT

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  store, err := sqlite.New("./data/safe-harbor.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  portfolio := safeharbor.NewPortfolio(store)

SEE ALSO:
  - safeharbor/store.go: Interface definition
  - safeharbor/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// Store implements safeharbor.ProjectStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ safeharbor.ProjectStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		capacity_mw TEXT NOT NULL,
		total_cost TEXT NOT NULL,
		allocated_cost TEXT NOT NULL,
		payment_date TEXT NOT NULL,
		physical_work_by_726 BOOLEAN NOT NULL DEFAULT FALSE,
		strategic_group INTEGER NOT NULL DEFAULT 0,

		-- ITC compliance (the only mutable columns)
		boc_qualified BOOLEAN NOT NULL DEFAULT FALSE,
		prevailing_wage BOOLEAN NOT NULL DEFAULT FALSE,
		apprenticeship BOOLEAN NOT NULL DEFAULT FALSE,
		domestic_content BOOLEAN NOT NULL DEFAULT FALSE,
		domestic_content_percentage TEXT NOT NULL DEFAULT '0',
		energy_community BOOLEAN NOT NULL DEFAULT FALSE,
		labor_standards_registered BOOLEAN NOT NULL DEFAULT FALSE,
		continuous_construction BOOLEAN NOT NULL DEFAULT FALSE,
		compliance_updated_at TEXT,

		-- Descriptive
		location TEXT NOT NULL DEFAULT '',
		interconnection_status TEXT NOT NULL DEFAULT '',
		site_control BOOLEAN NOT NULL DEFAULT FALSE,
		permits TEXT NOT NULL DEFAULT '',
		estimated_pis TEXT NOT NULL DEFAULT '',

		created_at TEXT NOT NULL
	);

	-- Dashboard breakdowns
	CREATE INDEX IF NOT EXISTS idx_projects_group
		ON projects(strategic_group);
	CREATE INDEX IF NOT EXISTS idx_projects_payment_date
		ON projects(payment_date);

	-- Compliance history (append-only)
	CREATE TABLE IF NOT EXISTS compliance_changes (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		field TEXT NOT NULL,
		previous TEXT NOT NULL,
		value TEXT NOT NULL,
		changed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_compliance_changes_project
		ON compliance_changes(project_id, seq);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECT STORE (safeharbor.ProjectStore interface)
// =============================================================================

const projectColumns = `
	id, name, capacity_mw, total_cost, allocated_cost, payment_date,
	physical_work_by_726, strategic_group,
	boc_qualified, prevailing_wage, apprenticeship, domestic_content,
	domestic_content_percentage, energy_community, labor_standards_registered,
	continuous_construction,
	location, interconnection_status, site_control, permits, estimated_pis,
	created_at`

// Append inserts p and returns it with its new id.
func (s *Store) Append(ctx context.Context, p safeharbor.Project) (safeharbor.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO projects
		(name, capacity_mw, total_cost, allocated_cost, payment_date,
		 physical_work_by_726, strategic_group,
		 boc_qualified, prevailing_wage, apprenticeship, domestic_content,
		 domestic_content_percentage, energy_community, labor_standards_registered,
		 continuous_construction,
		 location, interconnection_status, site_control, permits, estimated_pis,
		 created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	c := p.ITCCompliance
	res, err := s.db.ExecContext(ctx, query,
		p.Name,
		p.Capacity.Value.String(),
		p.TotalCost.Value.String(),
		p.AllocatedCost.Value.String(),
		p.PaymentDate.String(),
		p.PhysicalWorkBy726,
		int(p.Group),
		c.BOCQualified,
		c.PrevailingWage,
		c.Apprenticeship,
		c.DomesticContent,
		c.DomesticContentPercentage.String(),
		c.EnergyCommunity,
		c.LaborStandardsRegistered,
		c.ContinuousConstruction,
		p.Location,
		p.InterconnectionStatus,
		p.SiteControl,
		p.Permits,
		p.EstimatedPIS.String(),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to read project id: %w", err)
	}

	return s.get(ctx, safeharbor.ProjectID(id))
}

// Get returns the project with id, or generic.ErrProjectNotFound.
func (s *Store) Get(ctx context.Context, id safeharbor.ProjectID) (safeharbor.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.get(ctx, id)
}

func (s *Store) get(ctx context.Context, id safeharbor.ProjectID) (safeharbor.Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", int64(id))

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return safeharbor.Project{}, fmt.Errorf("project %d: %w", id, generic.ErrProjectNotFound)
	}
	if err != nil {
		return safeharbor.Project{}, err
	}
	return p, nil
}

// List returns all projects in creation order.
func (s *Store) List(ctx context.Context) ([]safeharbor.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []safeharbor.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ReplaceCompliance overwrites the compliance columns of project id and
// records change, in one transaction.
func (s *Store) ReplaceCompliance(ctx context.Context, id safeharbor.ProjectID, c safeharbor.ITCCompliance, change safeharbor.ComplianceChange) (safeharbor.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changedAt := change.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	query := `
		UPDATE projects SET
			boc_qualified = ?,
			prevailing_wage = ?,
			apprenticeship = ?,
			domestic_content = ?,
			domestic_content_percentage = ?,
			energy_community = ?,
			labor_standards_registered = ?,
			continuous_construction = ?,
			compliance_updated_at = ?
		WHERE id = ?
	`

	res, err := sqlTx.ExecContext(ctx, query,
		c.BOCQualified,
		c.PrevailingWage,
		c.Apprenticeship,
		c.DomesticContent,
		c.DomesticContentPercentage.String(),
		c.EnergyCommunity,
		c.LaborStandardsRegistered,
		c.ContinuousConstruction,
		changedAt.Format(time.RFC3339),
		int64(id),
	)
	if err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to update compliance: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return safeharbor.Project{}, err
	}
	if n == 0 {
		return safeharbor.Project{}, fmt.Errorf("project %d: %w", id, generic.ErrProjectNotFound)
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO compliance_changes (project_id, field, previous, value, changed_at)
		VALUES (?, ?, ?, ?, ?)
	`, int64(id), string(change.Field), change.Previous, change.Value, changedAt.Format(time.RFC3339))
	if err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to record compliance change: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return safeharbor.Project{}, fmt.Errorf("failed to commit compliance update: %w", err)
	}

	return s.get(ctx, id)
}

// History returns the compliance changes of project id in seq order.
func (s *Store) History(ctx context.Context, id safeharbor.ProjectID) ([]safeharbor.ComplianceChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.get(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, project_id, field, previous, value, changed_at
		FROM compliance_changes
		WHERE project_id = ?
		ORDER BY seq ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("failed to load compliance history: %w", err)
	}
	defer rows.Close()

	changes := []safeharbor.ComplianceChange{}
	for rows.Next() {
		var (
			ch        safeharbor.ComplianceChange
			projectID int64
			field     string
			changedAt string
		)
		if err := rows.Scan(&ch.Seq, &projectID, &field, &ch.Previous, &ch.Value, &changedAt); err != nil {
			return nil, err
		}
		ch.ProjectID = safeharbor.ProjectID(projectID)
		ch.Field = safeharbor.ComplianceField(field)
		ch.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}

// Reset deletes all projects and their history (for demo scenarios). The
// AUTOINCREMENT sequences are kept, so ids issued afterwards are still new.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, stmt := range []string{"DELETE FROM compliance_changes", "DELETE FROM projects"} {
		if _, err := sqlTx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
	}
	return sqlTx.Commit()
}

// =============================================================================
// SCANNING
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (safeharbor.Project, error) {
	var p safeharbor.Project
	var (
		id                                    int64
		group                                 int
		capacity, totalCost, allocated, dcPct string
		paymentDate, pis, createdAt           string
	)

	c := &p.ITCCompliance
	err := row.Scan(
		&id, &p.Name, &capacity, &totalCost, &allocated, &paymentDate,
		&p.PhysicalWorkBy726, &group,
		&c.BOCQualified, &c.PrevailingWage, &c.Apprenticeship, &c.DomesticContent,
		&dcPct, &c.EnergyCommunity, &c.LaborStandardsRegistered,
		&c.ContinuousConstruction,
		&p.Location, &p.InterconnectionStatus, &p.SiteControl, &p.Permits, &pis,
		&createdAt,
	)
	if err != nil {
		return safeharbor.Project{}, err
	}

	p.ID = safeharbor.ProjectID(id)
	p.Group = safeharbor.Group(group)
	p.Capacity = generic.MW{Value: parseDecimal(capacity)}
	p.TotalCost = generic.Money{Value: parseDecimal(totalCost)}
	p.AllocatedCost = generic.Money{Value: parseDecimal(allocated)}
	c.DomesticContentPercentage = parseDecimal(dcPct)

	if p.PaymentDate, err = parseDate(paymentDate); err != nil {
		return safeharbor.Project{}, fmt.Errorf("project %d payment_date: %w", id, err)
	}
	if p.EstimatedPIS, err = parseDate(pis); err != nil {
		return safeharbor.Project{}, fmt.Errorf("project %d estimated_pis: %w", id, err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return p, nil
}

// Helper functions

func parseDecimal(s string) decimal.Decimal {
	return generic.MustParseDecimal(s)
}

func parseDate(s string) (generic.TimePoint, error) {
	if s == "" {
		return generic.TimePoint{}, nil
	}
	return generic.ParseDate(s)
}
