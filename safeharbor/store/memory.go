// Package store provides ProjectStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (default deployment)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	projects map[safeharbor.ProjectID]safeharbor.Project
	history  map[safeharbor.ProjectID][]safeharbor.ComplianceChange
	lastID   safeharbor.ProjectID
	lastSeq  int64
}

func NewMemory() *Memory {
	return &Memory{
		projects: make(map[safeharbor.ProjectID]safeharbor.Project),
		history:  make(map[safeharbor.ProjectID][]safeharbor.ComplianceChange),
	}
}

// Append stores p under the next sequential id.
func (m *Memory) Append(_ context.Context, p safeharbor.Project) (safeharbor.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	p.ID = m.lastID
	m.projects[p.ID] = p
	return p, nil
}

func (m *Memory) Get(_ context.Context, id safeharbor.ProjectID) (safeharbor.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return safeharbor.Project{}, generic.ErrProjectNotFound
	}
	return p, nil
}

func (m *Memory) List(_ context.Context) ([]safeharbor.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]safeharbor.Project, 0, len(m.projects))
	for _, p := range m.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ReplaceCompliance swaps the whole compliance record of one project and
// appends change to its history.
func (m *Memory) ReplaceCompliance(_ context.Context, id safeharbor.ProjectID, c safeharbor.ITCCompliance, change safeharbor.ComplianceChange) (safeharbor.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return safeharbor.Project{}, generic.ErrProjectNotFound
	}
	p.ITCCompliance = c
	m.projects[id] = p

	m.lastSeq++
	change.Seq = m.lastSeq
	change.ProjectID = id
	m.history[id] = append(m.history[id], change)
	return p, nil
}

// =============================================================================
// HISTORY - Append-only, read back in Seq order
// =============================================================================

func (m *Memory) History(_ context.Context, id safeharbor.ProjectID) ([]safeharbor.ComplianceChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.projects[id]; !ok {
		return nil, generic.ErrProjectNotFound
	}
	return append([]safeharbor.ComplianceChange{}, m.history[id]...), nil
}

// Reset drops all projects and history. The id and seq counters keep
// running.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects = make(map[safeharbor.ProjectID]safeharbor.Project)
	m.history = make(map[safeharbor.ProjectID][]safeharbor.ComplianceChange)
	return nil
}

var _ safeharbor.ProjectStore = (*Memory)(nil)
