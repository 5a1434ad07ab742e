package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/repository"
	"github.com/mkowalczyk/praxis/internal/testutil"
)

func TestAddDependencyRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Chained", "A", "B", "C")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	a := env.taskByTitle(t, project.ID, "A")
	b := env.taskByTitle(t, project.ID, "B")
	c := env.taskByTitle(t, project.ID, "C")

	require.NoError(t, env.deps.AddDependency(ctx, b.ID, a.ID))
	require.NoError(t, env.deps.AddDependency(ctx, c.ID, b.ID))

	// a -> c would close the loop a <- b <- c.
	err = env.deps.AddDependency(ctx, a.ID, c.ID)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	// The rejected edge must not have been written.
	edges, err := repository.NewSQLiteDependencyRepo(env.db).ListForTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestAddDependencyRejectsSelfReference(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Solo", "A")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	a := env.taskByTitle(t, project.ID, "A")

	err = env.deps.AddDependency(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)
}

func TestAddDependencyRejectsCrossFirmEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Solo", "A")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)

	otherFirm := testutil.NewTestFirm("Rival & Partners")
	require.NoError(t, repository.NewSQLiteFirmRepo(env.db).Create(ctx, otherFirm))
	foreign := testutil.NewTestTask(otherFirm.ID, "Foreign")
	require.NoError(t, repository.NewSQLiteTaskRepo(env.db).Create(ctx, foreign))

	err = env.deps.AddDependency(ctx, env.taskByTitle(t, project.ID, "A").ID, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidDependencyScope)
}

func TestAddDependencySpansProjectsWithinFirm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Twice", "A")
	p1, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	p2, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 2, 1), InstantiateOptions{})
	require.NoError(t, err)

	err = env.deps.AddDependency(ctx, env.taskByTitle(t, p1.ID, "A").ID, env.taskByTitle(t, p2.ID, "A").ID)
	assert.NoError(t, err)
}

func TestAddDependencyDuplicateEdgeFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Chained", "A", "B")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	a := env.taskByTitle(t, project.ID, "A")
	b := env.taskByTitle(t, project.ID, "B")

	require.NoError(t, env.deps.AddDependency(ctx, b.ID, a.ID))
	assert.Error(t, env.deps.AddDependency(ctx, b.ID, a.ID), "edge table primary key rejects the duplicate")
}

func TestWouldCreateCycleDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Chained", "A", "B")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	a := env.taskByTitle(t, project.ID, "A")
	b := env.taskByTitle(t, project.ID, "B")

	require.NoError(t, env.deps.AddDependency(ctx, b.ID, a.ID))

	cyclic, err := env.deps.WouldCreateCycle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, cyclic)

	safe, err := env.deps.WouldCreateCycle(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, safe, "an existing edge is not a cycle")

	edges, err := repository.NewSQLiteDependencyRepo(env.db).ListForTask(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestRemoveDependency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Chained", "A", "B")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	a := env.taskByTitle(t, project.ID, "A")
	b := env.taskByTitle(t, project.ID, "B")

	require.NoError(t, env.deps.AddDependency(ctx, b.ID, a.ID))
	require.NoError(t, env.deps.RemoveDependency(ctx, b.ID, a.ID))

	edges, err := repository.NewSQLiteDependencyRepo(env.db).ListForTask(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}
