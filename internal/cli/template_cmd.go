package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/praxis/internal/cli/formatter"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage workflow templates",
	}
	cmd.AddCommand(
		newTemplateImportCmd(app),
		newTemplateListCmd(app),
		newTemplateCompileCmd(app),
	)
	return cmd
}

func newTemplateImportCmd(app *App) *cobra.Command {
	var firmID, file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a template from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" || file == "" {
				return fmt.Errorf("--firm and --file are required")
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			tmpl, err := app.Templates.ImportTemplate(context.Background(), firmID, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s (%s)\n", tmpl.Name, tmpl.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Template JSON file")
	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	var firmID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the firm's templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" {
				return fmt.Errorf("--firm is required")
			}
			templates, err := app.Templates.ListTemplates(context.Background(), firmID)
			if err != nil {
				return err
			}

			headers := []string{"NAME", "ID", "DEPENDENCY MODE", "COMPILED"}
			rows := make([][]string, 0, len(templates))
			for _, t := range templates {
				depMode := "off"
				if t.TaskDependencyMode {
					depMode = "on"
				}
				compiled := formatter.Dim("no")
				if t.WorkTypeID != nil {
					compiled = formatter.StyleGreen.Render("yes")
				}
				rows = append(rows, []string{t.Name, formatter.Dim(t.ID), depMode, compiled})
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderTable(headers, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	return cmd
}

func newTemplateCompileCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <template-id>",
		Short: "Compile a template into a work type with one stage per task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			workType, err := app.Templates.CompileTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			stages, err := app.Statuses.ListByWorkType(ctx, workType.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Compiled into work type %s with %d stages:\n", workType.Name, len(stages))
			for _, s := range stages {
				marker := "  "
				switch {
				case s.IsDefault:
					marker = formatter.StyleBlue.Render("▸ ")
				case s.IsTerminal:
					marker = formatter.StyleGreen.Render("✓ ")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s%s\n", s.Position, marker, s.Name)
			}
			return nil
		},
	}
}
