package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/repository"
	"github.com/mkowalczyk/praxis/internal/testutil"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateStr(tm *time.Time) string {
	if tm == nil {
		return ""
	}
	return tm.Format("2006-01-02")
}

func TestInstantiateComputesDueDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	days7, days30 := 7, 30
	rule := "monthly"
	tmpl, err := env.templates.CreateTemplate(ctx, CreateTemplateInput{
		FirmID: env.firm.ID,
		Name:   "Bookkeeping",
		Tasks: []CreateTemplateTaskInput{
			{Title: "Collect receipts", DaysFromStart: &days7},
			{Title: "Post entries", DaysFromStart: &days30},
			{Title: "Monthly reconciliation", RecurrenceRule: &rule},
		},
	})
	require.NoError(t, err)

	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 10), InstantiateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Bookkeeping", project.Name)

	collect := env.taskByTitle(t, project.ID, "Collect receipts")
	assert.Equal(t, "2024-01-17", dateStr(collect.DueDate))
	assert.False(t, collect.IsRecurring)

	post := env.taskByTitle(t, project.ID, "Post entries")
	assert.Equal(t, "2024-02-09", dateStr(post.DueDate))

	recon := env.taskByTitle(t, project.ID, "Monthly reconciliation")
	assert.Equal(t, "2024-02-10", dateStr(recon.DueDate))
	assert.True(t, recon.IsRecurring)
	assert.Equal(t, "2024-02-10", dateStr(recon.NextDueDate))
	require.NotNil(t, recon.RecurrenceRule)

	// Every task starts at the default stage of the compiled work type.
	stages := env.stagesFor(t, tmpl.ID)
	for _, task := range []*domain.Task{collect, post, recon} {
		require.NotNil(t, task.StatusID)
		assert.Equal(t, stages[0].ID, *task.StatusID)
		assert.NotNil(t, task.TemplateTaskOriginID)
	}
}

func TestInstantiateCapsDueDatesAtProjectDueDate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Rush Job", "Draft", "Review", "Deliver")
	cap := date(2024, 1, 20)
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 10), InstantiateOptions{
		DueDate: &cap,
	})
	require.NoError(t, err)
	require.NotNil(t, project.DueDate)

	draft := env.taskByTitle(t, project.ID, "Draft")
	assert.Equal(t, "2024-01-17", dateStr(draft.DueDate), "within the cap, keep the computed date")
	review := env.taskByTitle(t, project.ID, "Review")
	assert.Equal(t, "2024-01-20", dateStr(review.DueDate), "beyond the cap, clamp to the project due date")
	deliver := env.taskByTitle(t, project.ID, "Deliver")
	assert.Equal(t, "2024-01-20", dateStr(deliver.DueDate))
}

func TestInstantiateRemapsTemplateDependencies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl, err := env.templates.CreateTemplate(ctx, CreateTemplateInput{
		FirmID: env.firm.ID,
		Name:   "Chained",
		Tasks: []CreateTemplateTaskInput{
			{Title: "First"},
			{Title: "Second", DependsOn: []int{1}},
		},
	})
	require.NoError(t, err)
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 3, 1), InstantiateOptions{})
	require.NoError(t, err)

	first := env.taskByTitle(t, project.ID, "First")
	second := env.taskByTitle(t, project.ID, "Second")
	edges, err := repository.NewSQLiteDependencyRepo(env.db).ListForTask(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, first.ID, edges[0].DependsOnTaskID)
}

func TestInstantiateRejectsInactiveClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	dormant := testutil.NewTestClient(env.firm.ID, "Dormant GmbH", testutil.WithInactive())
	require.NoError(t, repository.NewSQLiteClientRepo(env.db).Create(ctx, dormant))

	tmpl := env.createTemplate(t, "Audit", "Kickoff")
	_, err := env.projects.InstantiateProject(ctx, tmpl.ID, dormant.ID, date(2024, 1, 1), InstantiateOptions{})
	assert.ErrorIs(t, err, domain.ErrInactiveClient)
}

func TestInstantiateCompilesUncompiledTemplate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Payroll", "Collect timesheets", "Run payroll")
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 2, 1), InstantiateOptions{})
	require.NoError(t, err)

	stored, err := repository.NewSQLiteTemplateRepo(env.db).GetByID(ctx, tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WorkTypeID)
	assert.Equal(t, *stored.WorkTypeID, project.WorkTypeID)

	stages := env.stagesFor(t, tmpl.ID)
	require.Len(t, stages, 2)
}

func TestInstantiateOverridesDependencyMode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Audit", "Kickoff", "Report")
	off := false
	project, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{
		DependencyModeOverride: &off,
	})
	require.NoError(t, err)
	assert.False(t, project.TaskDependencyMode)
}

func TestInstantiateRollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Audit", "Kickoff", "Fieldwork", "Report")
	_, err := env.templates.CompileTemplate(ctx, tmpl.ID)
	require.NoError(t, err)

	injected := errors.New("disk full")
	failing := &testutil.FailOnNthExecUoW{DB: env.db, FailOn: 3, Err: injected}
	svc := NewProjectService(
		repository.NewSQLiteProjectRepo(env.db),
		repository.NewSQLiteTaskRepo(env.db),
		repository.NewSQLiteTaskStatusRepo(env.db),
		failing, discardLogger(),
	)

	_, err = svc.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.ErrorIs(t, err, injected)

	projects, err := repository.NewSQLiteProjectRepo(env.db).ListByFirm(ctx, env.firm.ID)
	require.NoError(t, err)
	assert.Empty(t, projects, "a mid-instantiation failure must leave no project behind")

	var taskCount int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&taskCount))
	assert.Zero(t, taskCount, "a mid-instantiation failure must leave no tasks behind")
}

func TestBoardDerivesColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tmpl := env.createTemplate(t, "Tax Return", "Gather", "Prepare", "File")
	fresh, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 1, 1), InstantiateOptions{})
	require.NoError(t, err)
	moving, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 2, 1), InstantiateOptions{
		Name: "Acme 2023 Return",
	})
	require.NoError(t, err)

	// Complete the first stage of the second project.
	stages := env.stagesFor(t, tmpl.ID)
	byPos := env.stagedByPosition(t, moving.ID)
	_, err = env.cascade.AdvanceTaskStatus(ctx, byPos[1].Task.ID, stages[2].ID)
	require.NoError(t, err)

	// A fully finished project sorts to the end of the board.
	done, err := env.projects.InstantiateProject(ctx, tmpl.ID, env.client.ID, date(2024, 3, 1), InstantiateOptions{
		Name: "Globex 2022 Return",
	})
	require.NoError(t, err)
	_, err = env.cascade.MoveProjectToColumn(ctx, done.ID, domain.Column{Completed: true})
	require.NoError(t, err)

	entries, err := env.projects.Board(ctx, env.firm.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, fresh.ID, entries[0].Project.ID)
	assert.Equal(t, domain.Column{Position: 1}, entries[0].Column)
	assert.Equal(t, "Gather", entries[0].StageName)
	assert.Equal(t, 0, entries[0].TasksDone)

	assert.Equal(t, moving.ID, entries[1].Project.ID)
	assert.Equal(t, domain.Column{Position: 2}, entries[1].Column)
	assert.Equal(t, "Prepare", entries[1].StageName)
	assert.Equal(t, 1, entries[1].TasksDone)
	assert.Equal(t, 3, entries[1].TasksTotal)

	assert.Equal(t, done.ID, entries[2].Project.ID)
	assert.True(t, entries[2].Column.Completed)
	assert.Equal(t, "completed", entries[2].StageName)
	assert.Equal(t, 3, entries[2].TasksDone)
}
