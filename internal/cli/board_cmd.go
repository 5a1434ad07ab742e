package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mkowalczyk/praxis/internal/cli/formatter"
)

func newBoardCmd(app *App) *cobra.Command {
	var firmID string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the firm's Kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" {
				return fmt.Errorf("--firm is required")
			}
			entries, err := app.Projects.Board(context.Background(), firmID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBoard(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	return cmd
}

func newActivityCmd(app *App) *cobra.Command {
	var firmID string
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the firm's recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" {
				return fmt.Errorf("--firm is required")
			}
			entries, err := app.Activity.ListByFirm(context.Background(), firmID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatActivity(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}
