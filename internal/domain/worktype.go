package domain

import "time"

// WorkType is a firm-scoped workflow category. It owns an ordered list of
// TaskStatus stages; the order is the Kanban board for every project of
// this type.
type WorkType struct {
	ID         string
	FirmID     string
	Name       string
	TemplateID *string // template that generated this work type, if any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TaskStatus is one ordered stage of a WorkType. Positions are 1-based and
// contiguous; exactly one stage per work type is the default (position 1)
// and exactly one is terminal (position N). A single-stage work type is both.
type TaskStatus struct {
	ID         string
	WorkTypeID string
	Name       string
	Position   int
	IsDefault  bool
	IsTerminal bool
}

// DefaultStage returns the default stage from an ordered stage list, or nil.
func DefaultStage(stages []*TaskStatus) *TaskStatus {
	for _, s := range stages {
		if s.IsDefault {
			return s
		}
	}
	return nil
}

// TerminalStage returns the terminal stage from an ordered stage list, or nil.
func TerminalStage(stages []*TaskStatus) *TaskStatus {
	for _, s := range stages {
		if s.IsTerminal {
			return s
		}
	}
	return nil
}
