package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/recurrence"
	"github.com/mkowalczyk/praxis/internal/repository"
)

type recurrenceService struct {
	tasks    repository.TaskRepo
	uow      db.UnitOfWork
	logger   *slog.Logger
	activity ActivityLogger
}

// NewRecurrenceService creates a RecurrenceService. The tasks repo serves
// the sweep listing; generation runs inside the unit of work.
func NewRecurrenceService(tasks repository.TaskRepo, uow db.UnitOfWork, logger *slog.Logger, activity ...ActivityLogger) RecurrenceService {
	return &recurrenceService{
		tasks:    tasks,
		uow:      uow,
		logger:   logger,
		activity: activityLoggerFor(activity),
	}
}

func (s *recurrenceService) GenerateNextInstance(ctx context.Context, masterTaskID string) (string, bool, error) {
	var instanceID string
	var created bool
	var event ActivityEvent

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		statuses := repository.NewSQLiteTaskStatusRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)

		master, err := tasks.GetByID(ctx, masterTaskID)
		if err != nil {
			return err
		}
		// Instances carry a master link and never recur, so check the link
		// first to give the more specific rejection.
		if master.MasterTaskID != nil {
			return fmt.Errorf("task %s is a generated instance, not a master", masterTaskID)
		}
		if !master.IsRecurring || master.RecurrenceRule == nil {
			return fmt.Errorf("task %s is not a recurring master", masterTaskID)
		}

		// Advance from the later of the master's due date and its completion;
		// an uncompleted master regenerates off its own schedule.
		base := master.DueDate
		if master.CompletedAt != nil && (base == nil || master.CompletedAt.After(*base)) {
			base = master.CompletedAt
		}
		if base == nil {
			now := time.Now().UTC()
			base = &now
		}
		nextDue, err := recurrence.Next(*master.RecurrenceRule, *base)
		if err != nil {
			return fmt.Errorf("task %q: %w", master.Title, err)
		}

		// Generation is idempotent: one instance per master and due date.
		// Concurrent generators are caught by the unique index on
		// (master_task_id, due_date).
		existing, err := tasks.FindRecurringInstance(ctx, master.ID, nextDue)
		switch {
		case err == nil:
			instanceID = existing.ID
		case errors.Is(err, domain.ErrNotFound):
			var statusID *string
			if master.ProjectID != nil {
				project, err := projects.GetByID(ctx, *master.ProjectID)
				if err != nil {
					return err
				}
				defStage, err := statuses.GetDefault(ctx, project.WorkTypeID)
				if err != nil {
					return err
				}
				statusID = &defStage.ID
			}
			now := time.Now().UTC()
			instance := &domain.Task{
				ID:                   uuid.NewString(),
				FirmID:               master.FirmID,
				ProjectID:            master.ProjectID,
				Title:                master.Title,
				Description:          master.Description,
				StatusID:             statusID,
				TemplateTaskOriginID: master.TemplateTaskOriginID,
				AssigneeID:           master.AssigneeID,
				Priority:             master.Priority,
				EstimatedHours:       master.EstimatedHours,
				DueDate:              &nextDue,
				MasterTaskID:         &master.ID,
				Version:              1,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := tasks.Create(ctx, instance); err != nil {
				return err
			}
			instanceID = instance.ID
			created = true
			event = ActivityEvent{
				FirmID:    master.FirmID,
				Message:   fmt.Sprintf("generated recurring instance of %q due %s", master.Title, nextDue.Format("2006-01-02")),
				ProjectID: master.ProjectID,
				TaskID:    &instance.ID,
			}
		default:
			return err
		}

		return tasks.SetNextDueDate(ctx, master.ID, nextDue)
	})
	if err != nil {
		return "", false, err
	}

	if created {
		s.activity.LogEvent(ctx, event)
	}
	return instanceID, created, nil
}

func (s *recurrenceService) RunSweep(ctx context.Context, firmID string, asOf time.Time) (int, error) {
	masters, err := s.tasks.ListDueMasters(ctx, firmID, asOf)
	if err != nil {
		return 0, fmt.Errorf("listing due recurring masters: %w", err)
	}

	created := 0
	for _, master := range masters {
		_, didCreate, err := s.GenerateNextInstance(ctx, master.ID)
		if err != nil {
			// One bad rule must not stall the rest of the sweep.
			s.logger.WarnContext(ctx, "skipping recurring master",
				"task_id", master.ID, "error", err)
			continue
		}
		if didCreate {
			created++
		}
	}
	s.logger.InfoContext(ctx, "recurring sweep finished",
		"firm_id", firmID, "masters", len(masters), "created", created)
	return created, nil
}
