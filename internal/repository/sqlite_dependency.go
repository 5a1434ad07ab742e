package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteDependencyRepo implements DependencyRepo using a SQLite database.
type SQLiteDependencyRepo struct {
	db db.DBTX
}

// NewSQLiteDependencyRepo creates a new SQLiteDependencyRepo.
func NewSQLiteDependencyRepo(conn db.DBTX) *SQLiteDependencyRepo {
	return &SQLiteDependencyRepo{db: conn}
}

func (r *SQLiteDependencyRepo) Create(ctx context.Context, d *domain.Dependency) error {
	query := `INSERT INTO task_dependencies (task_id, depends_on_task_id) VALUES (?, ?)`
	_, err := r.db.ExecContext(ctx, query, d.TaskID, d.DependsOnTaskID)
	if err != nil {
		return fmt.Errorf("inserting dependency: %w", err)
	}
	return nil
}

func (r *SQLiteDependencyRepo) Delete(ctx context.Context, taskID, dependsOnTaskID string) error {
	query := `DELETE FROM task_dependencies WHERE task_id = ? AND depends_on_task_id = ?`
	_, err := r.db.ExecContext(ctx, query, taskID, dependsOnTaskID)
	if err != nil {
		return fmt.Errorf("deleting dependency: %w", err)
	}
	return nil
}

// ListByFirm returns every dependency edge whose endpoints belong to the firm.
// Both endpoints always share a firm, so scoping by the dependent side suffices.
func (r *SQLiteDependencyRepo) ListByFirm(ctx context.Context, firmID string) ([]domain.Dependency, error) {
	query := `SELECT d.task_id, d.depends_on_task_id
		FROM task_dependencies d
		JOIN tasks t ON d.task_id = t.id
		WHERE t.firm_id = ?`
	rows, err := r.db.QueryContext(ctx, query, firmID)
	if err != nil {
		return nil, fmt.Errorf("listing firm dependencies: %w", err)
	}
	defer rows.Close()
	return r.scanDependencies(rows)
}

func (r *SQLiteDependencyRepo) ListForTask(ctx context.Context, taskID string) ([]domain.Dependency, error) {
	query := `SELECT task_id, depends_on_task_id FROM task_dependencies WHERE task_id = ?`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing task dependencies: %w", err)
	}
	defer rows.Close()
	return r.scanDependencies(rows)
}

// scanDependencies scans multiple dependency rows from *sql.Rows.
func (r *SQLiteDependencyRepo) scanDependencies(rows *sql.Rows) ([]domain.Dependency, error) {
	var deps []domain.Dependency
	for rows.Next() {
		var d domain.Dependency
		if err := rows.Scan(&d.TaskID, &d.DependsOnTaskID); err != nil {
			return nil, fmt.Errorf("scanning dependency: %w", err)
		}
		deps = append(deps, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dependencies: %w", err)
	}
	return deps, nil
}
