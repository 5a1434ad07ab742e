package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/repository"
)

type cascadeService struct {
	uow        db.UnitOfWork
	recurrence RecurrenceService
	logger     *slog.Logger
	activity   ActivityLogger
}

// NewCascadeService creates a CascadeService. The recurrence service may be
// nil; completing a recurring master then skips instance generation.
func NewCascadeService(uow db.UnitOfWork, recurrence RecurrenceService, logger *slog.Logger, activity ...ActivityLogger) CascadeService {
	return &cascadeService{
		uow:        uow,
		recurrence: recurrence,
		logger:     logger,
		activity:   activityLoggerFor(activity),
	}
}

func (s *cascadeService) AdvanceTaskStatus(ctx context.Context, taskID, statusID string) (*CascadeSummary, error) {
	var summary *CascadeSummary
	var event ActivityEvent
	var regenMasterID string

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		statuses := repository.NewSQLiteTaskStatusRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)

		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		newStatus, err := statuses.GetByID(ctx, statusID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		var completedAt *time.Time
		if newStatus.IsTerminal {
			completedAt = &now
		}
		if err := tasks.UpdateStatusVersioned(ctx, task.ID, &newStatus.ID, completedAt, task.Version); err != nil {
			return err
		}
		summary = &CascadeSummary{TaskID: task.ID, NewStatusID: newStatus.ID}
		if task.IsRecurring && task.MasterTaskID == nil && newStatus.IsTerminal {
			regenMasterID = task.ID
		}
		event = ActivityEvent{
			FirmID:    task.FirmID,
			Message:   fmt.Sprintf("moved task %q to stage %q", task.Title, newStatus.Name),
			ProjectID: task.ProjectID,
			TaskID:    &task.ID,
		}

		// Independent tasks and manually added project tasks have no home
		// stage and never cascade.
		if task.ProjectID == nil || task.TemplateTaskOriginID == nil {
			return nil
		}
		project, err := projects.GetByID(ctx, *task.ProjectID)
		if err != nil {
			return err
		}
		if newStatus.WorkTypeID != project.WorkTypeID {
			return fmt.Errorf("stage %s does not belong to work type %s", newStatus.ID, project.WorkTypeID)
		}
		stages, err := statuses.ListByWorkType(ctx, project.WorkTypeID)
		if err != nil {
			return err
		}
		terminal := domain.TerminalStage(stages)
		defStage := domain.DefaultStage(stages)
		if terminal == nil || defStage == nil {
			return fmt.Errorf("work type %s has no compiled stages", project.WorkTypeID)
		}

		// Re-read inside the transaction so the ladder reflects the write above.
		staged, err := tasks.ListStaged(ctx, project.ID)
		if err != nil {
			return err
		}
		home := 0
		for _, st := range staged {
			if st.Task.ID == task.ID {
				home = st.StagePosition
			}
		}

		if project.TaskDependencyMode && home > 0 {
			switch {
			case newStatus.IsTerminal:
				// Completing stage k implies every earlier stage is done.
				for i := range staged {
					st := &staged[i]
					if st.StagePosition >= home || isAtStage(st.Task, terminal.ID) {
						continue
					}
					if err := tasks.UpdateStatusVersioned(ctx, st.Task.ID, &terminal.ID, &now, st.Task.Version); err != nil {
						return err
					}
					st.Task.StatusID = &terminal.ID
					summary.Completed = append(summary.Completed, st.Task.ID)
				}
			case newStatus.IsDefault:
				// Reopening stage k un-completes every later stage.
				for i := range staged {
					st := &staged[i]
					if st.StagePosition <= home || !isAtStage(st.Task, terminal.ID) {
						continue
					}
					if err := tasks.UpdateStatusVersioned(ctx, st.Task.ID, &defStage.ID, nil, st.Task.Version); err != nil {
						return err
					}
					st.Task.StatusID = &defStage.ID
					summary.Reset = append(summary.Reset, st.Task.ID)
				}
			}
		}

		summary.Column = deriveColumn(staged, terminal.ID)
		return projects.SetCurrentStatus(ctx, project.ID, currentStatusFor(stages, summary.Column, terminal))
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogEvent(ctx, event)
	if regenMasterID != "" && s.recurrence != nil {
		// The completion is committed; a failed regeneration must not undo it.
		if _, _, err := s.recurrence.GenerateNextInstance(ctx, regenMasterID); err != nil {
			s.logger.WarnContext(ctx, "failed to generate next recurring instance",
				"task_id", regenMasterID, "error", err)
		}
	}
	return summary, nil
}

func (s *cascadeService) MoveProjectToColumn(ctx context.Context, projectID string, column domain.Column) (*CascadeSummary, error) {
	summary := &CascadeSummary{}
	var event ActivityEvent

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		statuses := repository.NewSQLiteTaskStatusRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)

		project, err := projects.GetByID(ctx, projectID)
		if err != nil {
			return err
		}
		stages, err := statuses.ListByWorkType(ctx, project.WorkTypeID)
		if err != nil {
			return err
		}
		terminal := domain.TerminalStage(stages)
		defStage := domain.DefaultStage(stages)
		if terminal == nil || defStage == nil {
			return fmt.Errorf("work type %s has no compiled stages", project.WorkTypeID)
		}
		if !column.Completed && column.Position > len(stages) {
			return fmt.Errorf("column %d out of range: work type has %d stages", column.Position, len(stages))
		}
		staged, err := tasks.ListStaged(ctx, project.ID)
		if err != nil {
			return err
		}
		if len(staged) == 0 {
			return fmt.Errorf("project %q has no template tasks to move", project.Name)
		}

		// Force every task into the state the target column implies: done
		// before the column, active at it, default after it. This is a direct
		// board move, so it applies even with dependency mode off.
		// A terminal task at the target column steps back to the first
		// in-progress stage; with no intermediate stage that is the default.
		active := defStage
		for _, st := range stages {
			if !st.IsDefault && !st.IsTerminal {
				active = st
				break
			}
		}
		now := time.Now().UTC()
		for i := range staged {
			st := &staged[i]
			switch {
			case column.Completed || st.StagePosition < column.Position:
				if isAtStage(st.Task, terminal.ID) {
					continue
				}
				if err := tasks.UpdateStatusVersioned(ctx, st.Task.ID, &terminal.ID, &now, st.Task.Version); err != nil {
					return err
				}
				st.Task.StatusID = &terminal.ID
				summary.Completed = append(summary.Completed, st.Task.ID)
			case st.StagePosition == column.Position:
				if !isAtStage(st.Task, terminal.ID) {
					continue
				}
				if err := tasks.UpdateStatusVersioned(ctx, st.Task.ID, &active.ID, nil, st.Task.Version); err != nil {
					return err
				}
				st.Task.StatusID = &active.ID
				summary.Reset = append(summary.Reset, st.Task.ID)
			default:
				if isAtStage(st.Task, defStage.ID) {
					continue
				}
				if err := tasks.UpdateStatusVersioned(ctx, st.Task.ID, &defStage.ID, nil, st.Task.Version); err != nil {
					return err
				}
				st.Task.StatusID = &defStage.ID
				summary.Reset = append(summary.Reset, st.Task.ID)
			}
		}

		summary.Column = deriveColumn(staged, terminal.ID)
		event = ActivityEvent{
			FirmID:    project.FirmID,
			Message:   fmt.Sprintf("moved project %q to column %s", project.Name, column),
			ProjectID: &project.ID,
		}
		return projects.SetCurrentStatus(ctx, project.ID, currentStatusFor(stages, summary.Column, terminal))
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogEvent(ctx, event)
	return summary, nil
}

// isAtStage reports whether the task currently references the given stage.
func isAtStage(t domain.Task, stageID string) bool {
	return t.StatusID != nil && *t.StatusID == stageID
}

// deriveColumn computes a project's Kanban column from its staged tasks: the
// home position of the first task not at the terminal stage, or the
// completed column when every task is done.
func deriveColumn(staged []repository.StagedTask, terminalID string) domain.Column {
	for _, st := range staged {
		if !isAtStage(st.Task, terminalID) {
			return domain.Column{Position: st.StagePosition}
		}
	}
	return domain.Column{Completed: true}
}

// currentStatusFor resolves a derived column to the stage stored on the project.
func currentStatusFor(stages []*domain.TaskStatus, col domain.Column, terminal *domain.TaskStatus) *string {
	if col.Completed {
		return &terminal.ID
	}
	for _, s := range stages {
		if s.Position == col.Position {
			return &s.ID
		}
	}
	return nil
}
