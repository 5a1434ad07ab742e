package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Firm is the tenant boundary. Every entity the engine touches is scoped to
// exactly one firm; the engine never operates across firms.
type Firm struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Client is a firm's customer. Projects are instantiated for a client;
// inactive clients reject new projects.
type Client struct {
	ID        string
	FirmID    string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Project is a concrete engagement instantiated from a template (or created
// ad hoc). CurrentStatusID is derived from its tasks by the cascade engine
// and is never authoritative on its own.
type Project struct {
	ID                 string
	FirmID             string
	ClientID           string
	WorkTypeID         string
	TemplateID         *string
	Name               string
	StartDate          time.Time
	DueDate            *time.Time
	TaskDependencyMode bool
	CurrentStatusID    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Column identifies a project's Kanban column: either a stage position or
// the synthetic completed column past the last stage.
type Column struct {
	Position  int
	Completed bool
}

func (c Column) String() string {
	if c.Completed {
		return "completed"
	}
	return fmt.Sprintf("%d", c.Position)
}

// ParseColumn parses a column argument: a 1-based stage position or the
// literal "completed".
func ParseColumn(s string) (Column, error) {
	if s == "completed" {
		return Column{Completed: true}, nil
	}
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 1 {
		return Column{}, fmt.Errorf("column must be a stage position >= 1 or %q, got %q", "completed", s)
	}
	return Column{Position: pos}, nil
}
