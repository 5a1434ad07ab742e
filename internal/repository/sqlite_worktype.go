package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteWorkTypeRepo implements WorkTypeRepo using a SQLite database.
type SQLiteWorkTypeRepo struct {
	db db.DBTX
}

// NewSQLiteWorkTypeRepo creates a new SQLiteWorkTypeRepo.
func NewSQLiteWorkTypeRepo(conn db.DBTX) *SQLiteWorkTypeRepo {
	return &SQLiteWorkTypeRepo{db: conn}
}

func (r *SQLiteWorkTypeRepo) Create(ctx context.Context, w *domain.WorkType) error {
	query := `INSERT INTO work_types (id, firm_id, name, template_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.FirmID,
		w.Name,
		nullableStrToValue(w.TemplateID),
		w.CreatedAt.Format(time.RFC3339),
		w.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting work type: %w", err)
	}
	return nil
}

func (r *SQLiteWorkTypeRepo) GetByID(ctx context.Context, id string) (*domain.WorkType, error) {
	query := `SELECT id, firm_id, name, template_id, created_at, updated_at FROM work_types WHERE id = ?`
	var w domain.WorkType
	var templateID sql.NullString
	var createdAtStr, updatedAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.FirmID, &w.Name, &templateID, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("work type %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting work type: %w", err)
	}
	w.TemplateID = nullableStr(templateID)
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	w.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)
	return &w, nil
}

func (r *SQLiteWorkTypeRepo) Touch(ctx context.Context, id string) error {
	query := `UPDATE work_types SET updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("touching work type: %w", err)
	}
	return nil
}

// SQLiteTaskStatusRepo implements TaskStatusRepo using a SQLite database.
type SQLiteTaskStatusRepo struct {
	db db.DBTX
}

// NewSQLiteTaskStatusRepo creates a new SQLiteTaskStatusRepo.
func NewSQLiteTaskStatusRepo(conn db.DBTX) *SQLiteTaskStatusRepo {
	return &SQLiteTaskStatusRepo{db: conn}
}

const taskStatusColumns = `id, work_type_id, name, position, is_default, is_terminal`

func (r *SQLiteTaskStatusRepo) Create(ctx context.Context, s *domain.TaskStatus) error {
	query := `INSERT INTO task_statuses (id, work_type_id, name, position, is_default, is_terminal)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.WorkTypeID, s.Name, s.Position, boolToInt(s.IsDefault), boolToInt(s.IsTerminal))
	if err != nil {
		return fmt.Errorf("inserting task status: %w", err)
	}
	return nil
}

func (r *SQLiteTaskStatusRepo) GetByID(ctx context.Context, id string) (*domain.TaskStatus, error) {
	query := `SELECT ` + taskStatusColumns + ` FROM task_statuses WHERE id = ?`
	return r.scanStatus(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *SQLiteTaskStatusRepo) GetDefault(ctx context.Context, workTypeID string) (*domain.TaskStatus, error) {
	query := `SELECT ` + taskStatusColumns + ` FROM task_statuses WHERE work_type_id = ? AND is_default = 1`
	return r.scanStatus(r.db.QueryRowContext(ctx, query, workTypeID), workTypeID)
}

func (r *SQLiteTaskStatusRepo) ListByWorkType(ctx context.Context, workTypeID string) ([]*domain.TaskStatus, error) {
	query := `SELECT ` + taskStatusColumns + ` FROM task_statuses WHERE work_type_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, workTypeID)
	if err != nil {
		return nil, fmt.Errorf("listing task statuses: %w", err)
	}
	defer rows.Close()

	var statuses []*domain.TaskStatus
	for rows.Next() {
		var s domain.TaskStatus
		var defaultInt, terminalInt int
		if err := rows.Scan(&s.ID, &s.WorkTypeID, &s.Name, &s.Position, &defaultInt, &terminalInt); err != nil {
			return nil, fmt.Errorf("scanning task status: %w", err)
		}
		s.IsDefault = intToBool(defaultInt)
		s.IsTerminal = intToBool(terminalInt)
		statuses = append(statuses, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task statuses: %w", err)
	}
	return statuses, nil
}

func (r *SQLiteTaskStatusRepo) DeleteByWorkType(ctx context.Context, workTypeID string) error {
	query := `DELETE FROM task_statuses WHERE work_type_id = ?`
	if _, err := r.db.ExecContext(ctx, query, workTypeID); err != nil {
		return fmt.Errorf("deleting task statuses: %w", err)
	}
	return nil
}

func (r *SQLiteTaskStatusRepo) scanStatus(row *sql.Row, ref string) (*domain.TaskStatus, error) {
	var s domain.TaskStatus
	var defaultInt, terminalInt int
	err := row.Scan(&s.ID, &s.WorkTypeID, &s.Name, &s.Position, &defaultInt, &terminalInt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task status %s: %w", ref, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting task status: %w", err)
	}
	s.IsDefault = intToBool(defaultInt)
	s.IsTerminal = intToBool(terminalInt)
	return &s, nil
}
