package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, firm_id, client_id, work_type_id, template_id, name,
		start_date, due_date, task_dependency_mode, current_status_id, created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (id, firm_id, client_id, work_type_id, template_id, name,
		start_date, due_date, task_dependency_mode, current_status_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.FirmID,
		p.ClientID,
		p.WorkTypeID,
		nullableStrToValue(p.TemplateID),
		p.Name,
		p.StartDate.Format(dateLayout),
		nullableTimeToString(p.DueDate, dateLayout),
		boolToInt(p.TaskDependencyMode),
		nullableStrToValue(p.CurrentStatusID),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	p, err := scanProject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) ListByFirm(ctx context.Context, firmID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE firm_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) ListByWorkType(ctx context.Context, workTypeID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE work_type_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, workTypeID)
	if err != nil {
		return nil, fmt.Errorf("listing projects by work type: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) SetCurrentStatus(ctx context.Context, projectID string, statusID *string) error {
	query := `UPDATE projects SET current_status_id = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(statusID), time.Now().UTC().Format(time.RFC3339), projectID)
	if err != nil {
		return fmt.Errorf("updating project status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	return nil
}

func scanProject(scan func(dest ...any) error) (*domain.Project, error) {
	var p domain.Project
	var templateID, currentStatusID sql.NullString
	var dueDateStr sql.NullString
	var depModeInt int
	var startDateStr, createdAtStr, updatedAtStr string
	if err := scan(&p.ID, &p.FirmID, &p.ClientID, &p.WorkTypeID, &templateID, &p.Name,
		&startDateStr, &dueDateStr, &depModeInt, &currentStatusID, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	p.TemplateID = nullableStr(templateID)
	p.CurrentStatusID = nullableStr(currentStatusID)
	p.DueDate = parseNullableTime(dueDateStr, dateLayout)
	p.TaskDependencyMode = intToBool(depModeInt)
	p.StartDate, _ = time.Parse(dateLayout, startDateStr)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &p, nil
}
