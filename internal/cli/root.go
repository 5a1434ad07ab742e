package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mkowalczyk/praxis/internal/repository"
	"github.com/mkowalczyk/praxis/internal/service"
)

// App holds the services and read-side repositories used by CLI commands.
type App struct {
	Templates  service.TemplateService
	Projects   service.ProjectService
	Deps       service.DependencyService
	Cascade    service.CascadeService
	Recurrence service.RecurrenceService

	Firms        repository.FirmRepo
	Clients      repository.ClientRepo
	ProjectsRepo repository.ProjectRepo
	Tasks        repository.TaskRepo
	Statuses     repository.TaskStatusRepo
	Activity     repository.ActivityRepo
}

// NewRootCmd creates the top-level "praxis" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "praxis",
		Short:         "Workflow templates and task dependency engine for client work",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Accept underscore spellings of multi-word flags.
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.AddCommand(
		newFirmCmd(app),
		newClientCmd(app),
		newTemplateCmd(app),
		newProjectCmd(app),
		newTaskCmd(app),
		newBoardCmd(app),
		newActivityCmd(app),
		newSweepCmd(app),
	)

	return root
}
