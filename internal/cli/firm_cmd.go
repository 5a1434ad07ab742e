package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mkowalczyk/praxis/internal/domain"
)

func newFirmCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firm",
		Short: "Manage firms",
	}
	cmd.AddCommand(newFirmAddCmd(app))
	return cmd
}

func newFirmAddCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new firm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			firm := &domain.Firm{
				ID:        uuid.NewString(),
				Name:      name,
				CreatedAt: time.Now().UTC(),
			}
			if err := app.Firms.Create(context.Background(), firm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created firm %s (%s)\n", firm.Name, firm.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Firm name")
	return cmd
}

func newClientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(newClientAddCmd(app), newClientDeactivateCmd(app), newClientActivateCmd(app))
	return cmd
}

func newClientAddCmd(app *App) *cobra.Command {
	var firmID, name string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if firmID == "" || name == "" {
				return fmt.Errorf("--firm and --name are required")
			}
			client := &domain.Client{
				ID:        uuid.NewString(),
				FirmID:    firmID,
				Name:      name,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			}
			if err := app.Clients.Create(context.Background(), client); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created client %s (%s)\n", client.Name, client.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&firmID, "firm", "", "Firm ID")
	cmd.Flags().StringVar(&name, "name", "", "Client name")
	return cmd
}

func newClientDeactivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <client-id>",
		Short: "Deactivate a client; new projects for it are rejected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Clients.SetActive(context.Background(), args[0], false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated client %s\n", args[0])
			return nil
		},
	}
}

func newClientActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <client-id>",
		Short: "Reactivate a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Clients.SetActive(context.Background(), args[0], true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activated client %s\n", args[0])
			return nil
		},
	}
}
