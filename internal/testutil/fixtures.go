package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/praxis/internal/domain"
)

// Firm fixtures

func NewTestFirm(name string) *domain.Firm {
	return &domain.Firm{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// Client options
type ClientOption func(*domain.Client)

func WithInactive() ClientOption {
	return func(c *domain.Client) {
		c.Active = false
	}
}

func NewTestClient(firmID, name string, opts ...ClientOption) *domain.Client {
	c := &domain.Client{
		ID:        uuid.NewString(),
		FirmID:    firmID,
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Template options
type TemplateOption func(*domain.Template)

func WithDependencyMode(on bool) TemplateOption {
	return func(t *domain.Template) {
		t.TaskDependencyMode = on
	}
}

func NewTestTemplate(firmID, name string, opts ...TemplateOption) *domain.Template {
	now := time.Now().UTC()
	t := &domain.Template{
		ID:                 uuid.NewString(),
		FirmID:             firmID,
		Name:               name,
		TaskDependencyMode: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TemplateTask options
type TemplateTaskOption func(*domain.TemplateTask)

func WithDaysFromStart(days int) TemplateTaskOption {
	return func(t *domain.TemplateTask) {
		t.DaysFromStart = &days
	}
}

func WithRecurrence(rule string) TemplateTaskOption {
	return func(t *domain.TemplateTask) {
		t.RecurrenceRule = &rule
	}
}

func WithTemplateTaskPriority(p domain.Priority) TemplateTaskOption {
	return func(t *domain.TemplateTask) {
		t.Priority = p
	}
}

func NewTestTemplateTask(templateID string, position int, title string, opts ...TemplateTaskOption) *domain.TemplateTask {
	t := &domain.TemplateTask{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Position:   position,
		Title:      title,
		Priority:   domain.PriorityNormal,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WorkType fixtures

func NewTestWorkType(firmID, name string) *domain.WorkType {
	now := time.Now().UTC()
	return &domain.WorkType{
		ID:        uuid.NewString(),
		FirmID:    firmID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestStages creates one stage per name, in order, with the first marked
// default and the last terminal.
func NewTestStages(workTypeID string, names ...string) []*domain.TaskStatus {
	stages := make([]*domain.TaskStatus, 0, len(names))
	for i, name := range names {
		stages = append(stages, &domain.TaskStatus{
			ID:         uuid.NewString(),
			WorkTypeID: workTypeID,
			Name:       name,
			Position:   i + 1,
			IsDefault:  i == 0,
			IsTerminal: i == len(names)-1,
		})
	}
	return stages
}

// Project options
type ProjectOption func(*domain.Project)

func WithProjectDueDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.DueDate = &d
	}
}

func WithProjectDependencyMode(on bool) ProjectOption {
	return func(p *domain.Project) {
		p.TaskDependencyMode = on
	}
}

func NewTestProject(firmID, clientID, workTypeID, name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	p := &domain.Project{
		ID:                 uuid.NewString(),
		FirmID:             firmID,
		ClientID:           clientID,
		WorkTypeID:         workTypeID,
		Name:               name,
		StartDate:          now.AddDate(0, 0, -7),
		TaskDependencyMode: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task options
type TaskOption func(*domain.Task)

func WithProject(projectID string) TaskOption {
	return func(t *domain.Task) {
		t.ProjectID = &projectID
	}
}

func WithStatus(statusID string) TaskOption {
	return func(t *domain.Task) {
		t.StatusID = &statusID
	}
}

func WithOrigin(templateTaskID string) TaskOption {
	return func(t *domain.Task) {
		t.TemplateTaskOriginID = &templateTaskID
	}
}

func WithDueDate(d time.Time) TaskOption {
	return func(t *domain.Task) {
		t.DueDate = &d
	}
}

func WithRecurringMaster(rule string, nextDue time.Time) TaskOption {
	return func(t *domain.Task) {
		t.IsRecurring = true
		t.RecurrenceRule = &rule
		t.NextDueDate = &nextDue
	}
}

func WithMaster(masterTaskID string) TaskOption {
	return func(t *domain.Task) {
		t.MasterTaskID = &masterTaskID
	}
}

func NewTestTask(firmID, title string, opts ...TaskOption) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:        uuid.NewString(),
		FirmID:    firmID,
		Title:     title,
		Priority:  domain.PriorityNormal,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
