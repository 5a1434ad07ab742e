package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
)

// SQLiteFirmRepo implements FirmRepo using a SQLite database.
type SQLiteFirmRepo struct {
	db db.DBTX
}

// NewSQLiteFirmRepo creates a new SQLiteFirmRepo.
func NewSQLiteFirmRepo(conn db.DBTX) *SQLiteFirmRepo {
	return &SQLiteFirmRepo{db: conn}
}

func (r *SQLiteFirmRepo) Create(ctx context.Context, f *domain.Firm) error {
	query := `INSERT INTO firms (id, name, created_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, f.ID, f.Name, f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting firm: %w", err)
	}
	return nil
}

func (r *SQLiteFirmRepo) GetByID(ctx context.Context, id string) (*domain.Firm, error) {
	query := `SELECT id, name, created_at FROM firms WHERE id = ?`
	var f domain.Firm
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("firm %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting firm: %w", err)
	}
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &f, nil
}

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, firm_id, name, active, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.FirmID, c.Name, boolToInt(c.Active), c.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	query := `SELECT id, firm_id, name, active, created_at FROM clients WHERE id = ?`
	var c domain.Client
	var activeInt int
	var createdAtStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirmID, &c.Name, &activeInt, &createdAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting client: %w", err)
	}
	c.Active = intToBool(activeInt)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &c, nil
}

func (r *SQLiteClientRepo) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE clients SET active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("updating client active flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
