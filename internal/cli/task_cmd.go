package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/praxis/internal/domain"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with tasks",
	}
	cmd.AddCommand(
		newTaskMoveCmd(app),
		newTaskDoneCmd(app),
		newTaskDependCmd(app),
		newTaskUndependCmd(app),
	)
	return cmd
}

// taskContext resolves the --project/--firm flags plus a task argument into
// concrete IDs.
func taskContext(ctx context.Context, app *App, firmID, projectArg, taskArg string) (*domain.Project, string, error) {
	projectID, err := resolveProjectID(ctx, app, firmID, projectArg)
	if err != nil {
		return nil, "", err
	}
	project, err := app.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	taskID, err := resolveTaskID(ctx, app, projectID, taskArg)
	if err != nil {
		return nil, "", err
	}
	return project, taskID, nil
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var firmID, projectArg string

	cmd := &cobra.Command{
		Use:   "move <task> <stage>",
		Short: "Move a task to a stage of its work type",
		Long: `Move a task to a stage, given as a 1-based position or stage name.
In dependency mode, moving to the terminal stage completes earlier-stage
tasks and moving to the default stage reopens later-stage tasks.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			project, taskID, err := taskContext(ctx, app, firmID, projectArg, args[0])
			if err != nil {
				return err
			}
			stageID, err := resolveStageID(ctx, app, project.WorkTypeID, args[1])
			if err != nil {
				return err
			}
			summary, err := app.Cascade.AdvanceTaskStatus(ctx, taskID, stageID)
			if err != nil {
				return err
			}
			printCascadeSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectArg, "project", "", "Project ID, prefix or name")
	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}

func newTaskDoneCmd(app *App) *cobra.Command {
	var firmID, projectArg string

	cmd := &cobra.Command{
		Use:   "done <task>",
		Short: "Complete a task (move it to the terminal stage)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			project, taskID, err := taskContext(ctx, app, firmID, projectArg, args[0])
			if err != nil {
				return err
			}
			stages, err := app.Statuses.ListByWorkType(ctx, project.WorkTypeID)
			if err != nil {
				return err
			}
			terminal := domain.TerminalStage(stages)
			if terminal == nil {
				return fmt.Errorf("work type %s has no terminal stage", project.WorkTypeID)
			}
			summary, err := app.Cascade.AdvanceTaskStatus(ctx, taskID, terminal.ID)
			if err != nil {
				return err
			}
			printCascadeSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectArg, "project", "", "Project ID, prefix or name")
	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}

func newTaskDependCmd(app *App) *cobra.Command {
	var firmID, projectArg string

	cmd := &cobra.Command{
		Use:   "depend <task> <depends-on>",
		Short: "Record that one task depends on another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, taskID, err := taskContext(ctx, app, firmID, projectArg, args[0])
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, firmID, projectArg)
			if err != nil {
				return err
			}
			dependsOnID, err := resolveTaskID(ctx, app, projectID, args[1])
			if err != nil {
				return err
			}
			if err := app.Deps.AddDependency(ctx, taskID, dependsOnID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dependency recorded")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectArg, "project", "", "Project ID, prefix or name")
	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}

func newTaskUndependCmd(app *App) *cobra.Command {
	var firmID, projectArg string

	cmd := &cobra.Command{
		Use:   "undepend <task> <depends-on>",
		Short: "Remove a dependency between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_, taskID, err := taskContext(ctx, app, firmID, projectArg, args[0])
			if err != nil {
				return err
			}
			projectID, err := resolveProjectID(ctx, app, firmID, projectArg)
			if err != nil {
				return err
			}
			dependsOnID, err := resolveTaskID(ctx, app, projectID, args[1])
			if err != nil {
				return err
			}
			if err := app.Deps.RemoveDependency(ctx, taskID, dependsOnID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dependency removed")
			return nil
		},
	}

	cmd.Flags().StringVar(&projectArg, "project", "", "Project ID, prefix or name")
	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID, for matching the project by prefix or name")
	return cmd
}
