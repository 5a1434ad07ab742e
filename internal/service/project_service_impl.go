package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/recurrence"
	"github.com/mkowalczyk/praxis/internal/repository"
)

type projectService struct {
	projects repository.ProjectRepo
	tasks    repository.TaskRepo
	statuses repository.TaskStatusRepo
	uow      db.UnitOfWork
	logger   *slog.Logger
	activity ActivityLogger
}

// NewProjectService creates a ProjectService. The repos serve board reads;
// instantiation runs inside the unit of work.
func NewProjectService(projects repository.ProjectRepo, tasks repository.TaskRepo, statuses repository.TaskStatusRepo, uow db.UnitOfWork, logger *slog.Logger, activity ...ActivityLogger) ProjectService {
	return &projectService{
		projects: projects,
		tasks:    tasks,
		statuses: statuses,
		uow:      uow,
		logger:   logger,
		activity: activityLoggerFor(activity),
	}
}

func (s *projectService) InstantiateProject(ctx context.Context, templateID, clientID string, startDate time.Time, opts InstantiateOptions) (*domain.Project, error) {
	if startDate.IsZero() {
		return nil, fmt.Errorf("start date is required")
	}

	var project *domain.Project
	var taskCount int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		templateTasks := repository.NewSQLiteTemplateTaskRepo(tx)
		clients := repository.NewSQLiteClientRepo(tx)
		statuses := repository.NewSQLiteTaskStatusRepo(tx)
		projects := repository.NewSQLiteProjectRepo(tx)
		tasks := repository.NewSQLiteTaskRepo(tx)
		deps := repository.NewSQLiteDependencyRepo(tx)

		tmpl, err := templates.GetByID(ctx, templateID)
		if err != nil {
			return err
		}
		client, err := clients.GetByID(ctx, clientID)
		if err != nil {
			return err
		}
		if client.FirmID != tmpl.FirmID {
			return fmt.Errorf("client %s does not belong to firm %s", clientID, tmpl.FirmID)
		}
		if !client.Active {
			return fmt.Errorf("client %q: %w", client.Name, domain.ErrInactiveClient)
		}

		// An uncompiled template is compiled on the spot, in the same
		// transaction, so instantiation either fully succeeds or leaves
		// nothing behind.
		workTypeID := ""
		if tmpl.WorkTypeID == nil {
			workType, err := compileTemplateTx(ctx, tx, tmpl.ID)
			if err != nil {
				return err
			}
			workTypeID = workType.ID
		} else {
			workTypeID = *tmpl.WorkTypeID
		}

		ttList, err := templateTasks.ListByTemplate(ctx, tmpl.ID)
		if err != nil {
			return err
		}
		if len(ttList) == 0 {
			return fmt.Errorf("instantiating template %q: %w", tmpl.Name, domain.ErrEmptyTemplate)
		}
		defStage, err := statuses.GetDefault(ctx, workTypeID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		project = &domain.Project{
			ID:                 uuid.NewString(),
			FirmID:             tmpl.FirmID,
			ClientID:           clientID,
			WorkTypeID:         workTypeID,
			TemplateID:         &tmpl.ID,
			Name:               domain.CoalesceStr(opts.Name, tmpl.Name),
			StartDate:          startDate,
			DueDate:            opts.DueDate,
			TaskDependencyMode: domain.BoolFromPtrWithDefault(tmpl.TaskDependencyMode, opts.DependencyModeOverride),
			CurrentStatusID:    &defStage.ID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := projects.Create(ctx, project); err != nil {
			return err
		}

		taskByOrigin := make(map[string]string, len(ttList))
		for _, tt := range ttList {
			task := &domain.Task{
				ID:                   uuid.NewString(),
				FirmID:               tmpl.FirmID,
				ProjectID:            &project.ID,
				Title:                tt.Title,
				Description:          tt.Description,
				StatusID:             &defStage.ID,
				TemplateTaskOriginID: &tt.ID,
				AssigneeID:           tt.AssigneeID,
				Priority:             tt.Priority,
				EstimatedHours:       tt.EstimatedHours,
				Version:              1,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			switch {
			case tt.DaysFromStart != nil:
				due := startDate.AddDate(0, 0, *tt.DaysFromStart)
				task.DueDate = &due
			case tt.RecurrenceRule != nil:
				due, err := recurrence.Next(*tt.RecurrenceRule, startDate)
				if err != nil {
					return fmt.Errorf("task %q: %w", tt.Title, err)
				}
				task.DueDate = &due
				task.IsRecurring = true
				task.RecurrenceRule = tt.RecurrenceRule
				task.NextDueDate = &due
			}
			// The project due date caps every task due date.
			if opts.DueDate != nil && task.DueDate != nil && task.DueDate.After(*opts.DueDate) {
				task.DueDate = opts.DueDate
			}
			if err := tasks.Create(ctx, task); err != nil {
				return err
			}
			taskByOrigin[tt.ID] = task.ID
		}

		for _, tt := range ttList {
			for _, depOrigin := range tt.DependsOn {
				target, ok := taskByOrigin[depOrigin]
				if !ok {
					s.logger.WarnContext(ctx, "dropping dependency on task outside template",
						"template_task_id", tt.ID, "depends_on", depOrigin)
					continue
				}
				edge := &domain.Dependency{TaskID: taskByOrigin[tt.ID], DependsOnTaskID: target}
				if err := deps.Create(ctx, edge); err != nil {
					return err
				}
			}
		}
		taskCount = len(ttList)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("instantiating project: %w", err)
	}

	s.logger.InfoContext(ctx, "instantiated project",
		"project_id", project.ID, "template_id", templateID, "tasks", taskCount)
	s.activity.LogEvent(ctx, ActivityEvent{
		FirmID:    project.FirmID,
		Message:   fmt.Sprintf("created project %q with %d tasks", project.Name, taskCount),
		ProjectID: &project.ID,
	})
	return project, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, projectID)
}

func (s *projectService) Board(ctx context.Context, firmID string) ([]BoardEntry, error) {
	projects, err := s.projects.ListByFirm(ctx, firmID)
	if err != nil {
		return nil, err
	}

	entries := make([]BoardEntry, 0, len(projects))
	for _, p := range projects {
		stages, err := s.statuses.ListByWorkType(ctx, p.WorkTypeID)
		if err != nil {
			return nil, err
		}
		staged, err := s.tasks.ListStaged(ctx, p.ID)
		if err != nil {
			return nil, err
		}

		entry := BoardEntry{Project: p, TasksTotal: len(staged)}
		terminal := domain.TerminalStage(stages)
		if terminal == nil || len(staged) == 0 {
			entries = append(entries, entry)
			continue
		}
		for _, st := range staged {
			if st.Task.StatusID != nil && *st.Task.StatusID == terminal.ID {
				entry.TasksDone++
			}
		}
		entry.Column = deriveColumn(staged, terminal.ID)
		entry.StageName = stageNameAt(stages, entry.Column)
		entries = append(entries, entry)
	}

	// Earliest columns first, completed projects last. ListByFirm orders by
	// creation time, which the stable sort preserves within a column.
	sort.SliceStable(entries, func(i, j int) bool {
		return columnRank(entries[i].Column) < columnRank(entries[j].Column)
	})
	return entries, nil
}

func columnRank(col domain.Column) int {
	if col.Completed {
		return int(^uint(0) >> 1)
	}
	return col.Position
}

// stageNameAt resolves a column to a display name.
func stageNameAt(stages []*domain.TaskStatus, col domain.Column) string {
	if col.Completed {
		return "completed"
	}
	for _, s := range stages {
		if s.Position == col.Position {
			return s.Name
		}
	}
	return ""
}
