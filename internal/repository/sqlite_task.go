package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// taskColumns is the canonical SELECT column list for tasks.
const taskColumns = `id, firm_id, project_id, title, description, status_id,
		template_task_origin_id, assignee_id, priority, estimated_hours,
		due_date, completed_at, is_recurring, recurrence_rule, next_due_date,
		master_task_id, version, created_at, updated_at`

// taskColumnsAliased is the same column list prefixed with "t." for join queries.
const taskColumnsAliased = `t.id, t.firm_id, t.project_id, t.title, t.description, t.status_id,
		t.template_task_origin_id, t.assignee_id, t.priority, t.estimated_hours,
		t.due_date, t.completed_at, t.is_recurring, t.recurrence_rule, t.next_due_date,
		t.master_task_id, t.version, t.created_at, t.updated_at`

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	query := `INSERT INTO tasks (id, firm_id, project_id, title, description, status_id,
		template_task_origin_id, assignee_id, priority, estimated_hours,
		due_date, completed_at, is_recurring, recurrence_rule, next_due_date,
		master_task_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if t.Version == 0 {
		t.Version = 1
	}
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.FirmID,
		nullableStrToValue(t.ProjectID),
		t.Title,
		t.Description,
		nullableStrToValue(t.StatusID),
		nullableStrToValue(t.TemplateTaskOriginID),
		t.AssigneeID,
		string(t.Priority),
		t.EstimatedHours,
		nullableTimeToString(t.DueDate, dateLayout),
		nullableTimeToString(t.CompletedAt, time.RFC3339),
		boolToInt(t.IsRecurring),
		nullableStrToValue(t.RecurrenceRule),
		nullableTimeToString(t.NextDueDate, dateLayout),
		nullableStrToValue(t.MasterTaskID),
		t.Version,
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by project: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) ListStaged(ctx context.Context, projectID string) ([]StagedTask, error) {
	query := `SELECT ` + taskColumnsAliased + `, tt.position
		FROM tasks t
		JOIN template_tasks tt ON t.template_task_origin_id = tt.id
		WHERE t.project_id = ? AND t.master_task_id IS NULL
		ORDER BY tt.position`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing staged tasks: %w", err)
	}
	defer rows.Close()

	var staged []StagedTask
	for rows.Next() {
		var s StagedTask
		if err := scanTaskInto(&s.Task, rows.Scan, &s.StagePosition); err != nil {
			return nil, fmt.Errorf("scanning staged task: %w", err)
		}
		staged = append(staged, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating staged tasks: %w", err)
	}
	return staged, nil
}

func (r *SQLiteTaskRepo) UpdateStatusVersioned(ctx context.Context, taskID string, statusID *string, completedAt *time.Time, expectedVersion int) error {
	query := `UPDATE tasks
		SET status_id = ?, completed_at = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(statusID),
		nullableTimeToString(completedAt, time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		taskID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking task status update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", taskID, domain.ErrStaleCascade)
	}
	return nil
}

func (r *SQLiteTaskRepo) ReassignStatus(ctx context.Context, taskID string, statusID *string) error {
	query := `UPDATE tasks SET status_id = ?, version = version + 1, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(statusID), time.Now().UTC().Format(time.RFC3339), taskID)
	if err != nil {
		return fmt.Errorf("reassigning task status: %w", err)
	}
	return nil
}

func (r *SQLiteTaskRepo) ListStatusPositions(ctx context.Context, workTypeID string) ([]TaskStagePosition, error) {
	query := `SELECT t.id, s.position
		FROM tasks t
		JOIN task_statuses s ON t.status_id = s.id
		WHERE s.work_type_id = ?`
	rows, err := r.db.QueryContext(ctx, query, workTypeID)
	if err != nil {
		return nil, fmt.Errorf("listing task status positions: %w", err)
	}
	defer rows.Close()

	var positions []TaskStagePosition
	for rows.Next() {
		var p TaskStagePosition
		if err := rows.Scan(&p.TaskID, &p.Position); err != nil {
			return nil, fmt.Errorf("scanning task status position: %w", err)
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task status positions: %w", err)
	}
	return positions, nil
}

func (r *SQLiteTaskRepo) FindRecurringInstance(ctx context.Context, masterTaskID string, dueDate time.Time) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE master_task_id = ? AND due_date = ?`
	row := r.db.QueryRowContext(ctx, query, masterTaskID, dueDate.Format(dateLayout))
	t, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recurring instance of %s: %w", masterTaskID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("finding recurring instance: %w", err)
	}
	return t, nil
}

func (r *SQLiteTaskRepo) ListDueMasters(ctx context.Context, firmID string, asOf time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE firm_id = ? AND is_recurring = 1 AND master_task_id IS NULL
		  AND next_due_date IS NOT NULL AND next_due_date <= ?
		ORDER BY next_due_date`
	rows, err := r.db.QueryContext(ctx, query, firmID, asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing due recurring masters: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *SQLiteTaskRepo) SetNextDueDate(ctx context.Context, taskID string, nextDue time.Time) error {
	query := `UPDATE tasks SET next_due_date = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nextDue.Format(dateLayout), time.Now().UTC().Format(time.RFC3339), taskID)
	if err != nil {
		return fmt.Errorf("updating next due date: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("task %s: %w", taskID, domain.ErrNotFound)
	}
	return nil
}

// scanTask scans a single task row.
func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var t domain.Task
	if err := scanTaskInto(&t, scan); err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTaskInto scans task columns into t, followed by any extra columns.
func scanTaskInto(t *domain.Task, scan func(dest ...any) error, extra ...any) error {
	var projectID, statusID, originID, recurrenceRule, masterTaskID sql.NullString
	var dueDateStr, completedAtStr, nextDueDateStr sql.NullString
	var recurringInt int
	var priorityStr, createdAtStr, updatedAtStr string

	dest := []any{
		&t.ID, &t.FirmID, &projectID, &t.Title, &t.Description, &statusID,
		&originID, &t.AssigneeID, &priorityStr, &t.EstimatedHours,
		&dueDateStr, &completedAtStr, &recurringInt, &recurrenceRule, &nextDueDateStr,
		&masterTaskID, &t.Version, &createdAtStr, &updatedAtStr,
	}
	dest = append(dest, extra...)
	if err := scan(dest...); err != nil {
		return err
	}

	t.ProjectID = nullableStr(projectID)
	t.StatusID = nullableStr(statusID)
	t.TemplateTaskOriginID = nullableStr(originID)
	t.Priority = domain.Priority(priorityStr)
	t.DueDate = parseNullableTime(dueDateStr, dateLayout)
	t.CompletedAt = parseNullableTime(completedAtStr, time.RFC3339)
	t.IsRecurring = intToBool(recurringInt)
	t.RecurrenceRule = nullableStr(recurrenceRule)
	t.NextDueDate = parseNullableTime(nextDueDateStr, dateLayout)
	t.MasterTaskID = nullableStr(masterTaskID)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return nil
}

// scanTasks scans multiple task rows from *sql.Rows.
func scanTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}
