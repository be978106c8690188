package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/safe-harbor-engine/generic"
	"github.com/warp/safe-harbor-engine/safeharbor"
	"github.com/warp/safe-harbor-engine/safeharbor/store"
)

func TestMemory_ResetKeepsIDsUnique(t *testing.T) {
	// GIVEN: Two projects appended, then the store reset
	// WHEN: Appending again
	// THEN: The new project does not reuse an old id

	m := store.NewMemory()
	ctx := context.Background()

	_, err := m.Append(ctx, safeharbor.Project{Name: "a"})
	require.NoError(t, err)
	_, err = m.Append(ctx, safeharbor.Project{Name: "b"})
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx))
	projects, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)

	p, err := m.Append(ctx, safeharbor.Project{Name: "c"})
	require.NoError(t, err)
	assert.Equal(t, safeharbor.ProjectID(3), p.ID)

	_, err = m.Get(ctx, 1)
	assert.True(t, errors.Is(err, generic.ErrProjectNotFound))
}

func TestMemory_ReplaceCompliance(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	p, err := m.Append(ctx, safeharbor.Project{Name: "a", Group: safeharbor.Group1})
	require.NoError(t, err)

	change := safeharbor.ComplianceChange{Field: safeharbor.FieldEnergyCommunity, Previous: "false", Value: "true"}
	updated, err := m.ReplaceCompliance(ctx, p.ID, safeharbor.ITCCompliance{EnergyCommunity: true}, change)
	require.NoError(t, err)
	assert.True(t, updated.ITCCompliance.EnergyCommunity)
	assert.Equal(t, safeharbor.Group1, updated.Group)

	_, err = m.ReplaceCompliance(ctx, 42, safeharbor.ITCCompliance{}, change)
	assert.True(t, errors.Is(err, generic.ErrProjectNotFound))

	// THEN: Only the successful replacement is in the history
	history, err := m.History(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].Seq)
	assert.Equal(t, p.ID, history[0].ProjectID)
	assert.Equal(t, "true", history[0].Value)
}

func TestMemory_History(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	a, err := m.Append(ctx, safeharbor.Project{Name: "a"})
	require.NoError(t, err)
	b, err := m.Append(ctx, safeharbor.Project{Name: "b"})
	require.NoError(t, err)

	set := func(id safeharbor.ProjectID, field safeharbor.ComplianceField) {
		t.Helper()
		_, err := m.ReplaceCompliance(ctx, id, safeharbor.ITCCompliance{}, safeharbor.ComplianceChange{Field: field})
		require.NoError(t, err)
	}
	set(a.ID, safeharbor.FieldPrevailingWage)
	set(b.ID, safeharbor.FieldApprenticeship)
	set(a.ID, safeharbor.FieldEnergyCommunity)

	// Seq runs across projects, history is per project
	history, err := m.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(1), history[0].Seq)
	assert.Equal(t, int64(3), history[1].Seq)
	assert.Equal(t, safeharbor.FieldEnergyCommunity, history[1].Field)

	empty, err := m.Append(ctx, safeharbor.Project{Name: "c"})
	require.NoError(t, err)
	history, err = m.History(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = m.History(ctx, 99)
	assert.True(t, errors.Is(err, generic.ErrProjectNotFound))

	require.NoError(t, m.Reset(ctx))
	_, err = m.History(ctx, a.ID)
	assert.True(t, errors.Is(err, generic.ErrProjectNotFound))
}
