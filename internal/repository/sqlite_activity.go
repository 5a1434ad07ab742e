package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteActivityRepo implements ActivityRepo using a SQLite database.
type SQLiteActivityRepo struct {
	db db.DBTX
}

// NewSQLiteActivityRepo creates a new SQLiteActivityRepo.
func NewSQLiteActivityRepo(conn db.DBTX) *SQLiteActivityRepo {
	return &SQLiteActivityRepo{db: conn}
}

func (r *SQLiteActivityRepo) Create(ctx context.Context, e *domain.ActivityEntry) error {
	query := `INSERT INTO activity_log (id, firm_id, message, actor_user_id, project_id, task_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.FirmID,
		e.Message,
		e.ActorUserID,
		nullableStrToValue(e.ProjectID),
		nullableStrToValue(e.TaskID),
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting activity entry: %w", err)
	}
	return nil
}

func (r *SQLiteActivityRepo) ListByFirm(ctx context.Context, firmID string, limit int) ([]*domain.ActivityEntry, error) {
	query := `SELECT id, firm_id, message, actor_user_id, project_id, task_id, created_at
		FROM activity_log WHERE firm_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, firmID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing activity entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var projectID, taskID sql.NullString
		var createdAtStr string
		if err := rows.Scan(&e.ID, &e.FirmID, &e.Message, &e.ActorUserID, &projectID, &taskID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		e.ProjectID = nullableStr(projectID)
		e.TaskID = nullableStr(taskID)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity entries: %w", err)
	}
	return entries, nil
}
