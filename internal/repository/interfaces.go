package repository

import (
	"context"
	"time"

	"github.com/mkowalczyk/praxis/internal/domain"
)

// StagedTask is a joined view of a template-origin task with the stage
// position of its origin template task. The cascade engine orders a
// project's tasks by this position.
type StagedTask struct {
	Task          domain.Task
	StagePosition int
}

// TaskStagePosition pairs a task with the position of the stage it currently
// references, used to remap tasks when a work type's stages are regenerated.
type TaskStagePosition struct {
	TaskID   string
	Position int
}

type FirmRepo interface {
	Create(ctx context.Context, f *domain.Firm) error
	GetByID(ctx context.Context, id string) (*domain.Firm, error)
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type WorkTypeRepo interface {
	Create(ctx context.Context, w *domain.WorkType) error
	GetByID(ctx context.Context, id string) (*domain.WorkType, error)
	Touch(ctx context.Context, id string) error
}

type TaskStatusRepo interface {
	Create(ctx context.Context, s *domain.TaskStatus) error
	GetByID(ctx context.Context, id string) (*domain.TaskStatus, error)
	ListByWorkType(ctx context.Context, workTypeID string) ([]*domain.TaskStatus, error)
	GetDefault(ctx context.Context, workTypeID string) (*domain.TaskStatus, error)
	DeleteByWorkType(ctx context.Context, workTypeID string) error
}

type TemplateRepo interface {
	Create(ctx context.Context, t *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	ListByFirm(ctx context.Context, firmID string) ([]*domain.Template, error)
	SetWorkType(ctx context.Context, templateID, workTypeID string) error
}

type TemplateTaskRepo interface {
	Create(ctx context.Context, t *domain.TemplateTask) error
	// ListByTemplate returns tasks in position order with DependsOn populated.
	ListByTemplate(ctx context.Context, templateID string) ([]*domain.TemplateTask, error)
	SetDefaultStatus(ctx context.Context, templateTaskID, statusID string) error
	AddDependency(ctx context.Context, templateTaskID, dependsOnTemplateTaskID string) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByFirm(ctx context.Context, firmID string) ([]*domain.Project, error)
	ListByWorkType(ctx context.Context, workTypeID string) ([]*domain.Project, error)
	SetCurrentStatus(ctx context.Context, projectID string, statusID *string) error
}

type TaskRepo interface {
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListStaged returns the project's template-origin tasks joined with
	// their origin stage position, ordered by position.
	ListStaged(ctx context.Context, projectID string) ([]StagedTask, error)
	// UpdateStatusVersioned writes status and completion under an optimistic
	// version check; a missed check returns domain.ErrStaleCascade.
	UpdateStatusVersioned(ctx context.Context, taskID string, statusID *string, completedAt *time.Time, expectedVersion int) error
	// ReassignStatus rewrites the status reference without touching
	// completion state, used when stages are regenerated.
	ReassignStatus(ctx context.Context, taskID string, statusID *string) error
	// ListStatusPositions returns, for every task referencing a stage of the
	// given work type, the position of that stage.
	ListStatusPositions(ctx context.Context, workTypeID string) ([]TaskStagePosition, error)
	FindRecurringInstance(ctx context.Context, masterTaskID string, dueDate time.Time) (*domain.Task, error)
	// ListDueMasters returns recurring masters of the firm whose
	// next_due_date is on or before asOf.
	ListDueMasters(ctx context.Context, firmID string, asOf time.Time) ([]*domain.Task, error)
	SetNextDueDate(ctx context.Context, taskID string, nextDue time.Time) error
}

type DependencyRepo interface {
	Create(ctx context.Context, d *domain.Dependency) error
	Delete(ctx context.Context, taskID, dependsOnTaskID string) error
	ListByFirm(ctx context.Context, firmID string) ([]domain.Dependency, error)
	ListForTask(ctx context.Context, taskID string) ([]domain.Dependency, error)
}

type ActivityRepo interface {
	Create(ctx context.Context, e *domain.ActivityEntry) error
	ListByFirm(ctx context.Context, firmID string, limit int) ([]*domain.ActivityEntry, error)
}
