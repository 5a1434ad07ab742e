package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func newSweepCmd(app *App) *cobra.Command {
	var firmID, asOf, schedule string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Generate due recurring task instances",
		Long: `Generate the next instance for every recurring master whose next due
date has arrived. With --schedule, keeps running and sweeps on the given
cron expression.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" {
				return fmt.Errorf("--firm is required")
			}
			asOfTime := time.Now().UTC()
			if asOf != "" {
				parsed, err := time.Parse(dateLayout, asOf)
				if err != nil {
					return fmt.Errorf("invalid as-of date %q: %w", asOf, err)
				}
				asOfTime = parsed
			}

			if schedule == "" {
				created, err := app.Recurrence.RunSweep(context.Background(), firmID, asOfTime)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d recurring instance(s)\n", created)
				return nil
			}

			c := cron.New()
			_, err := c.AddFunc(schedule, func() {
				created, err := app.Recurrence.RunSweep(context.Background(), firmID, time.Now().UTC())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "sweep failed: %v\n", err)
					return
				}
				if created > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Generated %d recurring instance(s)\n", created)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid schedule %q: %w", schedule, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sweeping on schedule %q, press Ctrl-C to stop\n", schedule)
			c.Run()
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Treat this date as today (YYYY-MM-DD)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron expression; keep running and sweep on it")
	return cmd
}
