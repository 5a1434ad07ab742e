package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/graph"
	"github.com/mkowalczyk/praxis/internal/repository"
)

type templateService struct {
	templates repository.TemplateRepo
	uow       db.UnitOfWork
	logger    *slog.Logger
	activity  ActivityLogger
}

// NewTemplateService creates a TemplateService. The templates repo serves
// reads; mutations run inside the unit of work.
func NewTemplateService(templates repository.TemplateRepo, uow db.UnitOfWork, logger *slog.Logger, activity ...ActivityLogger) TemplateService {
	return &templateService{
		templates: templates,
		uow:       uow,
		logger:    logger,
		activity:  activityLoggerFor(activity),
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.Template, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if err := validateTaskInputs(input.Tasks); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tmpl := &domain.Template{
		ID:                 uuid.NewString(),
		FirmID:             input.FirmID,
		Name:               input.Name,
		TaskDependencyMode: input.TaskDependencyMode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		templates := repository.NewSQLiteTemplateRepo(tx)
		templateTasks := repository.NewSQLiteTemplateTaskRepo(tx)

		if err := templates.Create(ctx, tmpl); err != nil {
			return err
		}

		idByPos := make(map[int]string, len(input.Tasks))
		for i, in := range input.Tasks {
			tt := &domain.TemplateTask{
				ID:             uuid.NewString(),
				TemplateID:     tmpl.ID,
				Position:       i + 1,
				Title:          in.Title,
				Description:    in.Description,
				DaysFromStart:  in.DaysFromStart,
				RecurrenceRule: in.RecurrenceRule,
				AssigneeID:     in.AssigneeID,
				Priority:       in.Priority,
				EstimatedHours: in.EstimatedHours,
			}
			if tt.Priority == "" {
				tt.Priority = domain.PriorityNormal
			}
			if err := templateTasks.Create(ctx, tt); err != nil {
				return err
			}
			idByPos[tt.Position] = tt.ID
		}
		for i, in := range input.Tasks {
			for _, pos := range in.DependsOn {
				if err := templateTasks.AddDependency(ctx, idByPos[i+1], idByPos[pos]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating template %q: %w", input.Name, err)
	}

	s.activity.LogEvent(ctx, ActivityEvent{
		FirmID:  tmpl.FirmID,
		Message: fmt.Sprintf("created template %q with %d tasks", tmpl.Name, len(input.Tasks)),
	})
	return tmpl, nil
}

// templateFile is the JSON import format. Dependencies reference 1-based
// task positions within the same file.
type templateFile struct {
	Name               string             `json:"name"`
	TaskDependencyMode bool               `json:"task_dependency_mode"`
	Tasks              []templateFileTask `json:"tasks"`
}

type templateFileTask struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	DaysFromStart  *int    `json:"days_from_start"`
	RecurrenceRule *string `json:"recurrence_rule"`
	AssigneeID     string  `json:"assignee_id"`
	Priority       string  `json:"priority"`
	EstimatedHours float64 `json:"estimated_hours"`
	DependsOn      []int   `json:"depends_on"`
}

func (s *templateService) ImportTemplate(ctx context.Context, firmID string, data []byte) (*domain.Template, error) {
	var file templateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing template file: %w", err)
	}

	input := CreateTemplateInput{
		FirmID:             firmID,
		Name:               file.Name,
		TaskDependencyMode: file.TaskDependencyMode,
	}
	for _, ft := range file.Tasks {
		priority := domain.Priority(ft.Priority)
		if ft.Priority == "" {
			priority = domain.PriorityNormal
		} else if !domain.ValidPriorities[ft.Priority] {
			return nil, fmt.Errorf("task %q: unknown priority %q", ft.Title, ft.Priority)
		}
		input.Tasks = append(input.Tasks, CreateTemplateTaskInput{
			Title:          ft.Title,
			Description:    ft.Description,
			DaysFromStart:  ft.DaysFromStart,
			RecurrenceRule: ft.RecurrenceRule,
			AssigneeID:     ft.AssigneeID,
			Priority:       priority,
			EstimatedHours: ft.EstimatedHours,
			DependsOn:      ft.DependsOn,
		})
	}
	return s.CreateTemplate(ctx, input)
}

func (s *templateService) CompileTemplate(ctx context.Context, templateID string) (*domain.WorkType, error) {
	var workType *domain.WorkType
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		workType, err = compileTemplateTx(ctx, tx, templateID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "compiled template",
		"template_id", templateID, "work_type_id", workType.ID)
	s.activity.LogEvent(ctx, ActivityEvent{
		FirmID:  workType.FirmID,
		Message: fmt.Sprintf("compiled template into work type %q", workType.Name),
	})
	return workType, nil
}

func (s *templateService) ListTemplates(ctx context.Context, firmID string) ([]*domain.Template, error) {
	return s.templates.ListByFirm(ctx, firmID)
}

// validateTaskInputs checks per-task fields and dependency position
// references before anything is written.
func validateTaskInputs(tasks []CreateTemplateTaskInput) error {
	g := graph.New()
	for i, in := range tasks {
		pos := i + 1
		if in.Title == "" {
			return fmt.Errorf("task at position %d: title is required", pos)
		}
		if in.DaysFromStart != nil && in.RecurrenceRule != nil {
			return fmt.Errorf("task %q: days_from_start and recurrence_rule are mutually exclusive", in.Title)
		}
		for _, dep := range in.DependsOn {
			if dep < 1 || dep > len(tasks) {
				return fmt.Errorf("task %q: dependency position %d out of range", in.Title, dep)
			}
			from, to := fmt.Sprint(pos), fmt.Sprint(dep)
			if g.WouldCreateCycle(from, to) {
				return fmt.Errorf("task %q depends on position %d: %w", in.Title, dep, domain.ErrCycleDetected)
			}
			g.AddEdge(from, to)
		}
	}
	return nil
}

// compileTemplateTx turns the template's task list into a work type with one
// stage per task. On recompile the old stages are dropped, each template
// task is relinked to its same-position stage, and existing tasks are
// remapped by position with a fallback to the default stage.
func compileTemplateTx(ctx context.Context, tx db.DBTX, templateID string) (*domain.WorkType, error) {
	templates := repository.NewSQLiteTemplateRepo(tx)
	templateTasks := repository.NewSQLiteTemplateTaskRepo(tx)
	workTypes := repository.NewSQLiteWorkTypeRepo(tx)
	statuses := repository.NewSQLiteTaskStatusRepo(tx)
	tasks := repository.NewSQLiteTaskRepo(tx)

	tmpl, err := templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	ttList, err := templateTasks.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if len(ttList) == 0 {
		return nil, fmt.Errorf("compiling template %q: %w", tmpl.Name, domain.ErrEmptyTemplate)
	}

	now := time.Now().UTC()
	var workType *domain.WorkType
	if tmpl.WorkTypeID == nil {
		workType = &domain.WorkType{
			ID:         uuid.NewString(),
			FirmID:     tmpl.FirmID,
			Name:       tmpl.Name,
			TemplateID: &tmpl.ID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := workTypes.Create(ctx, workType); err != nil {
			return nil, err
		}
		if err := templates.SetWorkType(ctx, tmpl.ID, workType.ID); err != nil {
			return nil, err
		}
	} else {
		workType, err = workTypes.GetByID(ctx, *tmpl.WorkTypeID)
		if err != nil {
			return nil, err
		}
		if err := workTypes.Touch(ctx, workType.ID); err != nil {
			return nil, err
		}
	}

	// Capture where existing tasks sit before the old stages go away.
	oldPositions, err := tasks.ListStatusPositions(ctx, workType.ID)
	if err != nil {
		return nil, err
	}
	if err := statuses.DeleteByWorkType(ctx, workType.ID); err != nil {
		return nil, err
	}

	stageByPos := make(map[int]string, len(ttList))
	newStages := make([]*domain.TaskStatus, 0, len(ttList))
	for i, tt := range ttList {
		stage := &domain.TaskStatus{
			ID:         uuid.NewString(),
			WorkTypeID: workType.ID,
			Name:       tt.Title,
			Position:   i + 1,
			IsDefault:  i == 0,
			IsTerminal: i == len(ttList)-1,
		}
		if err := statuses.Create(ctx, stage); err != nil {
			return nil, err
		}
		if err := templateTasks.SetDefaultStatus(ctx, tt.ID, stage.ID); err != nil {
			return nil, err
		}
		stageByPos[stage.Position] = stage.ID
		newStages = append(newStages, stage)
	}

	for _, tp := range oldPositions {
		stageID, ok := stageByPos[tp.Position]
		if !ok {
			// The stage list shrank; park the task at the default stage.
			stageID = stageByPos[1]
		}
		if err := tasks.ReassignStatus(ctx, tp.TaskID, &stageID); err != nil {
			return nil, err
		}
	}

	// Dropping the old stages nulled every project's derived status pointer,
	// so restore it from the remapped tasks before the transaction ends.
	projects := repository.NewSQLiteProjectRepo(tx)
	affected, err := projects.ListByWorkType(ctx, workType.ID)
	if err != nil {
		return nil, err
	}
	terminal := newStages[len(newStages)-1]
	for _, p := range affected {
		staged, err := tasks.ListStaged(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		status := &newStages[0].ID
		if len(staged) > 0 {
			status = currentStatusFor(newStages, deriveColumn(staged, terminal.ID), terminal)
		}
		if err := projects.SetCurrentStatus(ctx, p.ID, status); err != nil {
			return nil, err
		}
	}
	return workType, nil
}
