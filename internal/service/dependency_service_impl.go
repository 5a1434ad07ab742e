package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/graph"
	"github.com/mkowalczyk/praxis/internal/repository"
)

type dependencyService struct {
	tasks    repository.TaskRepo
	deps     repository.DependencyRepo
	uow      db.UnitOfWork
	logger   *slog.Logger
	activity ActivityLogger
}

// NewDependencyService creates a DependencyService. The repos serve the
// read-only cycle probe; mutations run inside the unit of work.
func NewDependencyService(tasks repository.TaskRepo, deps repository.DependencyRepo, uow db.UnitOfWork, logger *slog.Logger, activity ...ActivityLogger) DependencyService {
	return &dependencyService{
		tasks:    tasks,
		deps:     deps,
		uow:      uow,
		logger:   logger,
		activity: activityLoggerFor(activity),
	}
}

func (s *dependencyService) AddDependency(ctx context.Context, taskID, dependsOnTaskID string) error {
	var event ActivityEvent
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		tasks := repository.NewSQLiteTaskRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		task, dep, err := loadEdgeEndpoints(ctx, tasks, taskID, dependsOnTaskID)
		if err != nil {
			return err
		}

		// The cycle check and the insert share one transaction so a
		// concurrent insert cannot slip a cycle past the check.
		edges, err := deps.ListByFirm(ctx, task.FirmID)
		if err != nil {
			return err
		}
		if graph.Build(edges).WouldCreateCycle(task.ID, dep.ID) {
			return fmt.Errorf("task %q depends on %q: %w", task.Title, dep.Title, domain.ErrCycleDetected)
		}
		if err := deps.Create(ctx, &domain.Dependency{TaskID: task.ID, DependsOnTaskID: dep.ID}); err != nil {
			return err
		}
		event = ActivityEvent{
			FirmID:    task.FirmID,
			Message:   fmt.Sprintf("task %q now depends on %q", task.Title, dep.Title),
			ProjectID: task.ProjectID,
			TaskID:    &task.ID,
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.LogEvent(ctx, event)
	return nil
}

func (s *dependencyService) RemoveDependency(ctx context.Context, taskID, dependsOnTaskID string) error {
	return s.deps.Delete(ctx, taskID, dependsOnTaskID)
}

func (s *dependencyService) WouldCreateCycle(ctx context.Context, taskID, dependsOnTaskID string) (bool, error) {
	task, dep, err := loadEdgeEndpoints(ctx, s.tasks, taskID, dependsOnTaskID)
	if err != nil {
		return false, err
	}
	edges, err := s.deps.ListByFirm(ctx, task.FirmID)
	if err != nil {
		return false, err
	}
	return graph.Build(edges).WouldCreateCycle(task.ID, dep.ID), nil
}

// loadEdgeEndpoints fetches both tasks of a prospective edge and enforces
// that they belong to the same firm. Edges may span projects within a firm
// and may reference independent tasks.
func loadEdgeEndpoints(ctx context.Context, tasks repository.TaskRepo, taskID, dependsOnTaskID string) (*domain.Task, *domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	dep, err := tasks.GetByID(ctx, dependsOnTaskID)
	if err != nil {
		return nil, nil, err
	}
	if task.FirmID != dep.FirmID {
		return nil, nil, fmt.Errorf("tasks %q and %q belong to different firms: %w",
			task.Title, dep.Title, domain.ErrInvalidDependencyScope)
	}
	return task, dep, nil
}
