package service

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/repository"
	"github.com/mkowalczyk/praxis/internal/testutil"
)

// testEnv wires every service against one in-memory database with a seeded
// firm and active client.
type testEnv struct {
	db     *sql.DB
	uow    db.UnitOfWork
	firm   *domain.Firm
	client *domain.Client

	templates  TemplateService
	projects   ProjectService
	deps       DependencyService
	cascade    CascadeService
	recurrence RecurrenceService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	logger := discardLogger()

	templateRepo := repository.NewSQLiteTemplateRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	statusRepo := repository.NewSQLiteTaskStatusRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)

	recurrenceSvc := NewRecurrenceService(taskRepo, uow, logger)
	env := &testEnv{
		db:         database,
		uow:        uow,
		templates:  NewTemplateService(templateRepo, uow, logger),
		projects:   NewProjectService(projectRepo, taskRepo, statusRepo, uow, logger),
		deps:       NewDependencyService(taskRepo, depRepo, uow, logger),
		cascade:    NewCascadeService(uow, recurrenceSvc, logger),
		recurrence: recurrenceSvc,
	}

	ctx := context.Background()
	env.firm = testutil.NewTestFirm("Meridian & Co")
	require.NoError(t, repository.NewSQLiteFirmRepo(database).Create(ctx, env.firm))
	env.client = testutil.NewTestClient(env.firm.ID, "Acme LLC")
	require.NoError(t, repository.NewSQLiteClientRepo(database).Create(ctx, env.client))
	return env
}

// createTemplate builds a dependency-mode template with one task per title,
// each due a week after the previous.
func (e *testEnv) createTemplate(t *testing.T, name string, titles ...string) *domain.Template {
	t.Helper()
	input := CreateTemplateInput{FirmID: e.firm.ID, Name: name, TaskDependencyMode: true}
	for i, title := range titles {
		days := (i + 1) * 7
		input.Tasks = append(input.Tasks, CreateTemplateTaskInput{Title: title, DaysFromStart: &days})
	}
	tmpl, err := e.templates.CreateTemplate(context.Background(), input)
	require.NoError(t, err)
	return tmpl
}

// stagesFor returns the compiled stages of a template's work type in
// position order.
func (e *testEnv) stagesFor(t *testing.T, templateID string) []*domain.TaskStatus {
	t.Helper()
	ctx := context.Background()
	tmpl, err := repository.NewSQLiteTemplateRepo(e.db).GetByID(ctx, templateID)
	require.NoError(t, err)
	require.NotNil(t, tmpl.WorkTypeID)
	stages, err := repository.NewSQLiteTaskStatusRepo(e.db).ListByWorkType(ctx, *tmpl.WorkTypeID)
	require.NoError(t, err)
	return stages
}

// stagedByPosition maps a project's template-origin tasks by stage position.
func (e *testEnv) stagedByPosition(t *testing.T, projectID string) map[int]repository.StagedTask {
	t.Helper()
	staged, err := repository.NewSQLiteTaskRepo(e.db).ListStaged(context.Background(), projectID)
	require.NoError(t, err)
	byPos := make(map[int]repository.StagedTask, len(staged))
	for _, st := range staged {
		byPos[st.StagePosition] = st
	}
	return byPos
}

// taskByTitle finds one of a project's tasks by title.
func (e *testEnv) taskByTitle(t *testing.T, projectID, title string) *domain.Task {
	t.Helper()
	tasks, err := repository.NewSQLiteTaskRepo(e.db).ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	for _, task := range tasks {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("no task titled %q in project %s", title, projectID)
	return nil
}
