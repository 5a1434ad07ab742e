package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS firms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		firm_id    TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		active     INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_clients_firm ON clients(firm_id)`,

	`CREATE TABLE IF NOT EXISTS work_types (
		id          TEXT PRIMARY KEY,
		firm_id     TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		template_id TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_types_firm ON work_types(firm_id)`,

	`CREATE TABLE IF NOT EXISTS task_statuses (
		id           TEXT PRIMARY KEY,
		work_type_id TEXT NOT NULL REFERENCES work_types(id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		position     INTEGER NOT NULL CHECK(position >= 1),
		is_default   INTEGER NOT NULL DEFAULT 0,
		is_terminal  INTEGER NOT NULL DEFAULT 0,
		UNIQUE(work_type_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_statuses_work_type ON task_statuses(work_type_id, position)`,

	`CREATE TABLE IF NOT EXISTS templates (
		id                   TEXT PRIMARY KEY,
		firm_id              TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		name                 TEXT NOT NULL,
		task_dependency_mode INTEGER NOT NULL DEFAULT 0,
		work_type_id         TEXT REFERENCES work_types(id) ON DELETE SET NULL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_templates_firm ON templates(firm_id)`,

	`CREATE TABLE IF NOT EXISTS template_tasks (
		id                TEXT PRIMARY KEY,
		template_id       TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		position          INTEGER NOT NULL CHECK(position >= 1),
		title             TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		days_from_start   INTEGER,
		recurrence_rule   TEXT,
		default_status_id TEXT REFERENCES task_statuses(id) ON DELETE SET NULL,
		assignee_id       TEXT NOT NULL DEFAULT '',
		priority          TEXT NOT NULL DEFAULT 'normal'
		                  CHECK(priority IN ('low','normal','high','urgent')),
		estimated_hours   REAL NOT NULL DEFAULT 0,
		UNIQUE(template_id, position),
		CHECK(days_from_start IS NULL OR recurrence_rule IS NULL)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_template_tasks_template ON template_tasks(template_id, position)`,

	`CREATE TABLE IF NOT EXISTS template_task_dependencies (
		template_task_id            TEXT NOT NULL REFERENCES template_tasks(id) ON DELETE CASCADE,
		depends_on_template_task_id TEXT NOT NULL REFERENCES template_tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (template_task_id, depends_on_template_task_id)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id                   TEXT PRIMARY KEY,
		firm_id              TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		client_id            TEXT NOT NULL REFERENCES clients(id),
		work_type_id         TEXT NOT NULL REFERENCES work_types(id),
		template_id          TEXT REFERENCES templates(id) ON DELETE SET NULL,
		name                 TEXT NOT NULL,
		start_date           TEXT NOT NULL,
		due_date             TEXT,
		task_dependency_mode INTEGER NOT NULL DEFAULT 0,
		current_status_id    TEXT REFERENCES task_statuses(id) ON DELETE SET NULL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_firm ON projects(firm_id)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id                      TEXT PRIMARY KEY,
		firm_id                 TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		project_id              TEXT REFERENCES projects(id) ON DELETE CASCADE,
		title                   TEXT NOT NULL,
		description             TEXT NOT NULL DEFAULT '',
		status_id               TEXT REFERENCES task_statuses(id) ON DELETE SET NULL,
		template_task_origin_id TEXT REFERENCES template_tasks(id) ON DELETE SET NULL,
		assignee_id             TEXT NOT NULL DEFAULT '',
		priority                TEXT NOT NULL DEFAULT 'normal'
		                        CHECK(priority IN ('low','normal','high','urgent')),
		estimated_hours         REAL NOT NULL DEFAULT 0,
		due_date                TEXT,
		completed_at            TEXT,
		is_recurring            INTEGER NOT NULL DEFAULT 0,
		recurrence_rule         TEXT,
		next_due_date           TEXT,
		master_task_id          TEXT REFERENCES tasks(id) ON DELETE SET NULL,
		version                 INTEGER NOT NULL DEFAULT 1,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_firm ON tasks(firm_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_master ON tasks(master_task_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_master_due ON tasks(master_task_id, due_date) WHERE master_task_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_recurring ON tasks(firm_id, next_due_date) WHERE is_recurring = 1`,

	`CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id            TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on_task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		PRIMARY KEY (task_id, depends_on_task_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_task_deps_depends_on ON task_dependencies(depends_on_task_id)`,

	`CREATE TABLE IF NOT EXISTS activity_log (
		id            TEXT PRIMARY KEY,
		firm_id       TEXT NOT NULL REFERENCES firms(id) ON DELETE CASCADE,
		message       TEXT NOT NULL,
		actor_user_id TEXT NOT NULL DEFAULT '',
		project_id    TEXT,
		task_id       TEXT,
		created_at    TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_activity_firm ON activity_log(firm_id, created_at)`,
}
