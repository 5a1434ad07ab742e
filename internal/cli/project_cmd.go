package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/praxis/internal/cli/formatter"
	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/service"
)

const dateLayout = "2006-01-02"

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectCreateCmd(app),
		newProjectShowCmd(app),
		newProjectMoveCmd(app),
	)
	return cmd
}

func newProjectCreateCmd(app *App) *cobra.Command {
	var templateID, clientID, name, start, due string
	var independent bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project from a template",
		RunE: func(cmd *cobra.Command, args []string) error {
			if templateID == "" || clientID == "" || start == "" {
				return fmt.Errorf("--template, --client and --start are required")
			}
			startDate, err := time.Parse(dateLayout, start)
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", start, err)
			}

			opts := service.InstantiateOptions{Name: name}
			if due != "" {
				dueDate, err := time.Parse(dateLayout, due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				opts.DueDate = &dueDate
			}
			if independent {
				off := false
				opts.DependencyModeOverride = &off
			}

			project, err := app.Projects.InstantiateProject(context.Background(), templateID, clientID, startDate, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&templateID, "template", "", "Template ID")
	cmd.Flags().StringVar(&clientID, "client", "", "Client ID")
	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the template name)")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&due, "due", "", "Due date cap for the project and its tasks (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&independent, "independent-tasks", false, "Disable stage cascading for this project")
	return cmd
}

func newProjectShowCmd(app *App) *cobra.Command {
	var firmID string

	cmd := &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, firmID, args[0])
			if err != nil {
				return err
			}
			project, err := app.Projects.GetProject(ctx, projectID)
			if err != nil {
				return err
			}
			tasks, err := app.Tasks.ListByProject(ctx, projectID)
			if err != nil {
				return err
			}
			stages, err := app.Statuses.ListByWorkType(ctx, project.WorkTypeID)
			if err != nil {
				return err
			}
			stageNames := make(map[string]string, len(stages))
			for _, s := range stages {
				stageNames[s.ID] = s.Name
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(project.Name))
			fmt.Fprintf(out, "Start: %s", project.StartDate.Format(dateLayout))
			if project.DueDate != nil {
				fmt.Fprintf(out, "   Due: %s", project.DueDate.Format(dateLayout))
			}
			if !project.TaskDependencyMode {
				fmt.Fprintf(out, "   %s", formatter.Dim("(independent tasks)"))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out)
			fmt.Fprint(out, formatter.FormatProjectTasks(tasks, stageNames))
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}

func newProjectMoveCmd(app *App) *cobra.Command {
	var firmID string

	cmd := &cobra.Command{
		Use:   "move <project> <column>",
		Short: "Move a project to a board column, forcing its tasks along",
		Long: `Move a project to a board column. Tasks at earlier stages are completed,
tasks at later stages are reopened. The column is a 1-based stage position
or the literal "completed".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			projectID, err := resolveProjectID(ctx, app, firmID, args[0])
			if err != nil {
				return err
			}
			column, err := domain.ParseColumn(args[1])
			if err != nil {
				return err
			}
			summary, err := app.Cascade.MoveProjectToColumn(ctx, projectID, column)
			if err != nil {
				return err
			}
			printCascadeSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}

func printCascadeSummary(cmd *cobra.Command, summary *service.CascadeSummary) {
	out := cmd.OutOrStdout()
	if n := len(summary.Completed); n > 0 {
		fmt.Fprintf(out, "%s %d task(s) completed by cascade\n", formatter.StyleGreen.Render("✓"), n)
	}
	if n := len(summary.Reset); n > 0 {
		fmt.Fprintf(out, "%s %d task(s) reopened by cascade\n", formatter.StyleYellow.Render("↺"), n)
	}
	fmt.Fprintf(out, "Project column: %s\n", formatter.Bold(summary.Column.String()))
}
