package formatter

import (
	"fmt"
	"strings"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/service"
)

// FormatBoard renders the firm's Kanban board as a table, one row per
// project.
func FormatBoard(entries []service.BoardEntry) string {
	if len(entries) == 0 {
		return Dim("No projects.") + "\n"
	}

	headers := []string{"PROJECT", "COLUMN", "STAGE", "PROGRESS", "DUE"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		column := e.Column.String()
		stage := e.StageName
		if e.Column.Completed {
			stage = StyleGreen.Render("completed")
			column = StyleGreen.Render(column)
		}
		due := ""
		if e.Project.DueDate != nil {
			due = e.Project.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []string{
			Bold(e.Project.Name),
			column,
			stage,
			progressCell(e.TasksDone, e.TasksTotal),
			due,
		})
	}
	return RenderTable(headers, rows)
}

// FormatProjectTasks renders a project's tasks with their stage names.
func FormatProjectTasks(tasks []*domain.Task, stageNames map[string]string) string {
	if len(tasks) == 0 {
		return Dim("No tasks.") + "\n"
	}

	headers := []string{"ID", "TASK", "STAGE", "PRIORITY", "DUE"}
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		stage := ""
		if task.StatusID != nil {
			stage = stageNames[*task.StatusID]
		}
		if task.CompletedAt != nil {
			stage = StyleGreen.Render(stage)
		}
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.Format("2006-01-02")
		}
		title := task.Title
		if task.IsRecurring {
			title += Dim(" ↻")
		}
		rows = append(rows, []string{
			Dim(shortID(task.ID)),
			title,
			stage,
			PriorityStyle(task.Priority).Render(string(task.Priority)),
			due,
		})
	}
	return RenderTable(headers, rows)
}

// FormatActivity renders activity entries newest first.
func FormatActivity(entries []*domain.ActivityEntry) string {
	if len(entries) == 0 {
		return Dim("No activity.") + "\n"
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %s %s\n",
			Dim(e.CreatedAt.Format("2006-01-02 15:04")),
			e.Message,
			Dim("("+e.ActorUserID+")"))
	}
	return b.String()
}

func progressCell(done, total int) string {
	if total == 0 {
		return Dim("-")
	}
	cell := fmt.Sprintf("%d/%d", done, total)
	if done == total {
		return StyleGreen.Render(cell)
	}
	return cell
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
