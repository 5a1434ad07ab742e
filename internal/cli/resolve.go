package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mkowalczyk/praxis/internal/domain"
)

// resolveProjectID accepts a full project ID, a unique ID prefix, or a
// case-insensitive project name. Prefix and name matching need the firm.
func resolveProjectID(ctx context.Context, app *App, firmID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("project is required")
	}
	if _, err := app.ProjectsRepo.GetByID(ctx, input); err == nil {
		return input, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	if firmID == "" {
		return "", fmt.Errorf("project not found: %q (pass --firm to match by prefix or name)", input)
	}

	projects, err := app.ProjectsRepo.ListByFirm(ctx, firmID)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) || strings.EqualFold(p.Name, input) {
			matches = append(matches, p.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("project %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveTaskID accepts a full task ID, a unique ID prefix, or a
// case-insensitive title within the project.
func resolveTaskID(ctx context.Context, app *App, projectID, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("task is required")
	}
	tasks, err := app.Tasks.ListByProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range tasks {
		if t.ID == input {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, input) || strings.EqualFold(t.Title, input) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveStageID accepts a 1-based stage position or a case-insensitive
// stage name within the work type.
func resolveStageID(ctx context.Context, app *App, workTypeID, input string) (string, error) {
	stages, err := app.Statuses.ListByWorkType(ctx, workTypeID)
	if err != nil {
		return "", err
	}
	if pos, err := strconv.Atoi(input); err == nil {
		for _, s := range stages {
			if s.Position == pos {
				return s.ID, nil
			}
		}
		return "", fmt.Errorf("no stage at position %d (work type has %d stages)", pos, len(stages))
	}
	for _, s := range stages {
		if strings.EqualFold(s.Name, input) {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("stage not found: %q", input)
}
