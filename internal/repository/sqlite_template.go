package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteTemplateRepo implements TemplateRepo using a SQLite database.
type SQLiteTemplateRepo struct {
	db db.DBTX
}

// NewSQLiteTemplateRepo creates a new SQLiteTemplateRepo.
func NewSQLiteTemplateRepo(conn db.DBTX) *SQLiteTemplateRepo {
	return &SQLiteTemplateRepo{db: conn}
}

const templateColumns = `id, firm_id, name, task_dependency_mode, work_type_id, created_at, updated_at`

func (r *SQLiteTemplateRepo) Create(ctx context.Context, t *domain.Template) error {
	query := `INSERT INTO templates (id, firm_id, name, task_dependency_mode, work_type_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.FirmID,
		t.Name,
		boolToInt(t.TaskDependencyMode),
		nullableStrToValue(t.WorkTypeID),
		t.CreatedAt.Format(time.RFC3339),
		t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTemplate(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return t, nil
}

func (r *SQLiteTemplateRepo) ListByFirm(ctx context.Context, firmID string) ([]*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE firm_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

func (r *SQLiteTemplateRepo) SetWorkType(ctx context.Context, templateID, workTypeID string) error {
	query := `UPDATE templates SET work_type_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, workTypeID, time.Now().UTC().Format(time.RFC3339), templateID)
	if err != nil {
		return fmt.Errorf("linking template work type: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", templateID, domain.ErrNotFound)
	}
	return nil
}

func scanTemplate(scan func(dest ...any) error) (*domain.Template, error) {
	var t domain.Template
	var depModeInt int
	var workTypeID sql.NullString
	var createdAtStr, updatedAtStr string
	if err := scan(&t.ID, &t.FirmID, &t.Name, &depModeInt, &workTypeID, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	t.TaskDependencyMode = intToBool(depModeInt)
	t.WorkTypeID = nullableStr(workTypeID)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &t, nil
}

// SQLiteTemplateTaskRepo implements TemplateTaskRepo using a SQLite database.
type SQLiteTemplateTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTemplateTaskRepo creates a new SQLiteTemplateTaskRepo.
func NewSQLiteTemplateTaskRepo(conn db.DBTX) *SQLiteTemplateTaskRepo {
	return &SQLiteTemplateTaskRepo{db: conn}
}

func (r *SQLiteTemplateTaskRepo) Create(ctx context.Context, t *domain.TemplateTask) error {
	if err := t.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO template_tasks (id, template_id, position, title, description,
		days_from_start, recurrence_rule, default_status_id, assignee_id, priority, estimated_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TemplateID,
		t.Position,
		t.Title,
		t.Description,
		nullableIntToValue(t.DaysFromStart),
		nullableStrToValue(t.RecurrenceRule),
		nullableStrToValue(t.DefaultStatusID),
		t.AssigneeID,
		string(t.Priority),
		t.EstimatedHours,
	)
	if err != nil {
		return fmt.Errorf("inserting template task: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateTaskRepo) ListByTemplate(ctx context.Context, templateID string) ([]*domain.TemplateTask, error) {
	query := `SELECT id, template_id, position, title, description,
		days_from_start, recurrence_rule, default_status_id, assignee_id, priority, estimated_hours
		FROM template_tasks WHERE template_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing template tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.TemplateTask
	byID := make(map[string]*domain.TemplateTask)
	for rows.Next() {
		var t domain.TemplateTask
		var daysFromStart sql.NullInt64
		var recurrenceRule, defaultStatusID sql.NullString
		var priorityStr string
		if err := rows.Scan(&t.ID, &t.TemplateID, &t.Position, &t.Title, &t.Description,
			&daysFromStart, &recurrenceRule, &defaultStatusID, &t.AssigneeID, &priorityStr, &t.EstimatedHours); err != nil {
			return nil, fmt.Errorf("scanning template task: %w", err)
		}
		t.DaysFromStart = nullableInt(daysFromStart)
		t.RecurrenceRule = nullableStr(recurrenceRule)
		t.DefaultStatusID = nullableStr(defaultStatusID)
		t.Priority = domain.Priority(priorityStr)
		tasks = append(tasks, &t)
		byID[t.ID] = &t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template tasks: %w", err)
	}

	depQuery := `SELECT d.template_task_id, d.depends_on_template_task_id
		FROM template_task_dependencies d
		JOIN template_tasks t ON d.template_task_id = t.id
		WHERE t.template_id = ?`
	depRows, err := r.db.QueryContext(ctx, depQuery, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing template task dependencies: %w", err)
	}
	defer depRows.Close()
	for depRows.Next() {
		var from, to string
		if err := depRows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("scanning template task dependency: %w", err)
		}
		if t, ok := byID[from]; ok {
			t.DependsOn = append(t.DependsOn, to)
		}
	}
	if err := depRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template task dependencies: %w", err)
	}

	return tasks, nil
}

func (r *SQLiteTemplateTaskRepo) SetDefaultStatus(ctx context.Context, templateTaskID, statusID string) error {
	query := `UPDATE template_tasks SET default_status_id = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, statusID, templateTaskID)
	if err != nil {
		return fmt.Errorf("linking template task status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template task %s: %w", templateTaskID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteTemplateTaskRepo) AddDependency(ctx context.Context, templateTaskID, dependsOnTemplateTaskID string) error {
	query := `INSERT INTO template_task_dependencies (template_task_id, depends_on_template_task_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, templateTaskID, dependsOnTemplateTaskID)
	if err != nil {
		return fmt.Errorf("inserting template task dependency: %w", err)
	}
	return nil
}
