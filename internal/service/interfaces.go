package service

import (
	"context"
	"time"

	"github.com/mkowalczyk/praxis/internal/domain"
)

// TemplateService manages workflow templates and their compiled work types.
type TemplateService interface {
	// CreateTemplate persists a template together with its ordered tasks.
	// Task dependencies are given as 1-based position references into the
	// same template.
	CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.Template, error)
	// ImportTemplate reads a template definition from JSON and creates it.
	ImportTemplate(ctx context.Context, firmID string, data []byte) (*domain.Template, error)
	// CompileTemplate materializes the template's task list into a WorkType
	// with one stage per task. Recompiling regenerates the stages and remaps
	// existing tasks onto same-position stages.
	CompileTemplate(ctx context.Context, templateID string) (*domain.WorkType, error)
	ListTemplates(ctx context.Context, firmID string) ([]*domain.Template, error)
}

// CreateTemplateInput describes a template and its tasks before IDs exist.
type CreateTemplateInput struct {
	FirmID             string
	Name               string
	TaskDependencyMode bool
	Tasks              []CreateTemplateTaskInput
}

// CreateTemplateTaskInput describes one template task. DependsOn holds
// 1-based positions of other tasks in the same template.
type CreateTemplateTaskInput struct {
	Title          string
	Description    string
	DaysFromStart  *int
	RecurrenceRule *string
	AssigneeID     string
	Priority       domain.Priority
	EstimatedHours float64
	DependsOn      []int
}

// InstantiateOptions tune project creation from a template.
type InstantiateOptions struct {
	// Name overrides the project name; defaults to the template name.
	Name string
	// DueDate caps every computed task due date and becomes the project due date.
	DueDate *time.Time
	// DependencyModeOverride replaces the template's dependency mode flag.
	DependencyModeOverride *bool
}

// ProjectService creates projects from templates and reports board state.
type ProjectService interface {
	// InstantiateProject creates a project for a client from a compiled
	// template, spawning one task per template task with computed due dates
	// and remapped dependencies. Uncompiled templates are compiled first.
	InstantiateProject(ctx context.Context, templateID, clientID string, startDate time.Time, opts InstantiateOptions) (*domain.Project, error)
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)
	// Board returns one entry per project of the firm with its derived
	// Kanban column.
	Board(ctx context.Context, firmID string) ([]BoardEntry, error)
}

// BoardEntry is one project's position on the firm's Kanban board.
type BoardEntry struct {
	Project    *domain.Project
	Column     domain.Column
	StageName  string
	TasksTotal int
	TasksDone  int
}

// DependencyService edits the explicit task dependency graph.
type DependencyService interface {
	// AddDependency records that taskID depends on dependsOnTaskID. Both
	// tasks must belong to the same firm; an edge that would close a
	// cycle is rejected with domain.ErrCycleDetected.
	AddDependency(ctx context.Context, taskID, dependsOnTaskID string) error
	RemoveDependency(ctx context.Context, taskID, dependsOnTaskID string) error
	// WouldCreateCycle reports whether adding the edge would close a cycle,
	// without mutating anything.
	WouldCreateCycle(ctx context.Context, taskID, dependsOnTaskID string) (bool, error)
}

// CascadeSummary reports what a status change touched.
type CascadeSummary struct {
	TaskID      string
	NewStatusID string
	// Completed lists sibling tasks forced to the terminal stage.
	Completed []string
	// Reset lists sibling tasks forced back to the default stage.
	Reset []string
	// Column is the project's derived Kanban column after the change.
	Column domain.Column
}

// CascadeService moves tasks and projects through their work type's stages,
// cascading status changes across stage-ordered siblings.
type CascadeService interface {
	// AdvanceTaskStatus moves a task to a new stage. In dependency mode,
	// reaching the terminal stage completes all earlier-stage siblings and
	// returning to the default stage resets all later-stage completed
	// siblings. Completing a recurring master also spawns its next instance.
	AdvanceTaskStatus(ctx context.Context, taskID, statusID string) (*CascadeSummary, error)
	// MoveProjectToColumn forces every staged task into the state implied by
	// the target column, regardless of dependency mode.
	MoveProjectToColumn(ctx context.Context, projectID string, column domain.Column) (*CascadeSummary, error)
}

// RecurrenceService spawns instances of recurring master tasks.
type RecurrenceService interface {
	// GenerateNextInstance computes the master's next due date and creates
	// an instance task for it unless one already exists. Returns the
	// instance ID and whether it was created by this call.
	GenerateNextInstance(ctx context.Context, masterTaskID string) (string, bool, error)
	// RunSweep generates instances for every due recurring master of the
	// firm. A failing master is logged and skipped; the sweep continues.
	RunSweep(ctx context.Context, firmID string, asOf time.Time) (int, error)
}
