package domain

import "time"

// Task is a unit of work. Tasks created from a template carry the origin
// template task ID; the cascade engine only ever touches those. Independent
// tasks (nil ProjectID) live outside any project and never cascade.
//
// Version is an optimistic-concurrency counter: every status write asserts
// the version it read and bumps it, so a lost race inside a cascade surfaces
// as ErrStaleCascade instead of a silent overwrite.
type Task struct {
	ID                   string
	FirmID               string
	ProjectID            *string
	Title                string
	Description          string
	StatusID             *string
	TemplateTaskOriginID *string
	AssigneeID           string
	Priority             Priority
	EstimatedHours       float64
	DueDate              *time.Time
	CompletedAt          *time.Time

	// Recurrence
	IsRecurring    bool
	RecurrenceRule *string
	NextDueDate    *time.Time
	MasterTaskID   *string // set on generated instances, nil on masters

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Dependency is one depends-on edge: TaskID depends on DependsOnTaskID.
// Edges are firm-scoped; both endpoints always belong to the same firm.
type Dependency struct {
	TaskID          string
	DependsOnTaskID string
}

// ActivityEntry is one activity-log row written after a successful mutation.
type ActivityEntry struct {
	ID          string
	FirmID      string
	Message     string
	ActorUserID string
	ProjectID   *string
	TaskID      *string
	CreatedAt   time.Time
}
