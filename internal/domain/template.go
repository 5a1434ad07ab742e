package domain

import (
	"fmt"
	"time"
)

// Template is a firm-scoped blueprint for a project and its tasks.
type Template struct {
	ID                 string
	FirmID             string
	Name               string
	TaskDependencyMode bool
	WorkTypeID         *string // set once the template has been compiled
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TemplateTask is one ordered task of a template. Due dates for instantiated
// tasks come from DaysFromStart or RecurrenceRule; at most one of the two is
// set. DependsOn holds template-local task IDs.
type TemplateTask struct {
	ID              string
	TemplateID      string
	Position        int
	Title           string
	Description     string
	DaysFromStart   *int
	RecurrenceRule  *string
	DefaultStatusID *string // stage generated for this task by compilation
	AssigneeID      string
	Priority        Priority
	EstimatedHours  float64
	DependsOn       []string
}

// Validate checks the due-date source invariant: DaysFromStart and
// RecurrenceRule are mutually exclusive (both unset is allowed).
func (t *TemplateTask) Validate() error {
	if t.DaysFromStart != nil && t.RecurrenceRule != nil {
		return fmt.Errorf("template task %q: days_from_start and recurrence_rule are mutually exclusive", t.Title)
	}
	if t.Position < 1 {
		return fmt.Errorf("template task %q: position must be >= 1, got %d", t.Title, t.Position)
	}
	return nil
}
