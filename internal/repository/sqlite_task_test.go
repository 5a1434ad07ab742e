package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/testutil"
)

func TestTaskRoundTrip(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	firm := testutil.NewTestFirm("Firm")
	require.NoError(t, NewSQLiteFirmRepo(database).Create(ctx, firm))

	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	task := testutil.NewTestTask(firm.ID, "File VAT return",
		testutil.WithDueDate(due),
		testutil.WithRecurringMaster("quarterly:last_biz_day", due))
	task.Description = "Q1 filing"
	task.Priority = domain.PriorityHigh
	task.EstimatedHours = 2.5

	repo := NewSQLiteTaskRepo(database)
	require.NoError(t, repo.Create(ctx, task))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.Title, got.Title)
	assert.Equal(t, task.Description, got.Description)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.InDelta(t, 2.5, got.EstimatedHours, 0.001)
	assert.True(t, got.IsRecurring)
	require.NotNil(t, got.RecurrenceRule)
	assert.Equal(t, "quarterly:last_biz_day", *got.RecurrenceRule)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2024-03-15", got.DueDate.Format("2006-01-02"))
	assert.Nil(t, got.StatusID)
	assert.Nil(t, got.ProjectID)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, 1, got.Version)
}

func TestTaskGetByIDNotFound(t *testing.T) {
	database := testutil.NewTestDB(t)
	_, err := NewSQLiteTaskRepo(database).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatusVersionedBumpsVersion(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	firm := testutil.NewTestFirm("Firm")
	require.NoError(t, NewSQLiteFirmRepo(database).Create(ctx, firm))
	task := testutil.NewTestTask(firm.ID, "Review")
	repo := NewSQLiteTaskRepo(database)
	require.NoError(t, repo.Create(ctx, task))

	wt := testutil.NewTestWorkType(firm.ID, "Review flow")
	require.NoError(t, NewSQLiteWorkTypeRepo(database).Create(ctx, wt))
	stages := testutil.NewTestStages(wt.ID, "Open", "Done")
	statusRepo := NewSQLiteTaskStatusRepo(database)
	for _, s := range stages {
		require.NoError(t, statusRepo.Create(ctx, s))
	}

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatusVersioned(ctx, task.ID, &stages[1].ID, &now, 1))

	got, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	require.NotNil(t, got.CompletedAt)

	// The old version token no longer matches.
	err = repo.UpdateStatusVersioned(ctx, task.ID, &stages[0].ID, nil, 1)
	assert.ErrorIs(t, err, domain.ErrStaleCascade)
}

func TestRecurringInstanceUniquePerDueDate(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	firm := testutil.NewTestFirm("Firm")
	require.NoError(t, NewSQLiteFirmRepo(database).Create(ctx, firm))
	repo := NewSQLiteTaskRepo(database)

	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	master := testutil.NewTestTask(firm.ID, "Recurring",
		testutil.WithDueDate(due), testutil.WithRecurringMaster("monthly", due))
	require.NoError(t, repo.Create(ctx, master))

	next := due.AddDate(0, 1, 0)
	first := testutil.NewTestTask(firm.ID, "Recurring",
		testutil.WithDueDate(next), testutil.WithMaster(master.ID))
	require.NoError(t, repo.Create(ctx, first))

	dup := testutil.NewTestTask(firm.ID, "Recurring",
		testutil.WithDueDate(next), testutil.WithMaster(master.ID))
	assert.Error(t, repo.Create(ctx, dup), "one instance per master and due date")

	found, err := repo.FindRecurringInstance(ctx, master.ID, next)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
}

func TestListDueMastersFiltersAndOrders(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	firm := testutil.NewTestFirm("Firm")
	require.NoError(t, NewSQLiteFirmRepo(database).Create(ctx, firm))
	repo := NewSQLiteTaskRepo(database)

	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	overdue := testutil.NewTestTask(firm.ID, "Overdue",
		testutil.WithDueDate(asOf.AddDate(0, 0, -10)),
		testutil.WithRecurringMaster("weekly", asOf.AddDate(0, 0, -10)))
	require.NoError(t, repo.Create(ctx, overdue))
	future := testutil.NewTestTask(firm.ID, "Future",
		testutil.WithDueDate(asOf.AddDate(0, 0, 10)),
		testutil.WithRecurringMaster("weekly", asOf.AddDate(0, 0, 10)))
	require.NoError(t, repo.Create(ctx, future))
	oneOff := testutil.NewTestTask(firm.ID, "One-off",
		testutil.WithDueDate(asOf.AddDate(0, 0, -10)))
	require.NoError(t, repo.Create(ctx, oneOff))

	due, err := repo.ListDueMasters(ctx, firm.ID, asOf)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)
}

func TestDeletingProjectCascadesToTasksAndEdges(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	firm := testutil.NewTestFirm("Firm")
	require.NoError(t, NewSQLiteFirmRepo(database).Create(ctx, firm))
	client := testutil.NewTestClient(firm.ID, "Client")
	require.NoError(t, NewSQLiteClientRepo(database).Create(ctx, client))
	wt := testutil.NewTestWorkType(firm.ID, "Flow")
	require.NoError(t, NewSQLiteWorkTypeRepo(database).Create(ctx, wt))

	project := testutil.NewTestProject(firm.ID, client.ID, wt.ID, "Doomed")
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx, project))

	taskRepo := NewSQLiteTaskRepo(database)
	a := testutil.NewTestTask(firm.ID, "A", testutil.WithProject(project.ID))
	b := testutil.NewTestTask(firm.ID, "B", testutil.WithProject(project.ID))
	require.NoError(t, taskRepo.Create(ctx, a))
	require.NoError(t, taskRepo.Create(ctx, b))
	depRepo := NewSQLiteDependencyRepo(database)
	require.NoError(t, depRepo.Create(ctx, &domain.Dependency{TaskID: b.ID, DependsOnTaskID: a.ID}))

	_, err := database.Exec(`DELETE FROM projects WHERE id = ?`, project.ID)
	require.NoError(t, err)

	_, err = taskRepo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	edges, err := depRepo.ListByFirm(ctx, firm.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}
