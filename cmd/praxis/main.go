package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/mkowalczyk/praxis/internal/cli"
	"github.com/mkowalczyk/praxis/internal/config"
	"github.com/mkowalczyk/praxis/internal/db"
	"github.com/mkowalczyk/praxis/internal/repository"
	"github.com/mkowalczyk/praxis/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Text logs for humans at a terminal, JSON when piped.
	logOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, logOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, logOpts)
	}
	logger := slog.New(handler)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	firmRepo := repository.NewSQLiteFirmRepo(database)
	clientRepo := repository.NewSQLiteClientRepo(database)
	templateRepo := repository.NewSQLiteTemplateRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	taskRepo := repository.NewSQLiteTaskRepo(database)
	statusRepo := repository.NewSQLiteTaskStatusRepo(database)
	depRepo := repository.NewSQLiteDependencyRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)
	activity := service.NewStoreActivityLogger(activityRepo, cfg.Actor, logger)

	recurrenceSvc := service.NewRecurrenceService(taskRepo, uow, logger, activity)
	app := &cli.App{
		Templates:  service.NewTemplateService(templateRepo, uow, logger, activity),
		Projects:   service.NewProjectService(projectRepo, taskRepo, statusRepo, uow, logger, activity),
		Deps:       service.NewDependencyService(taskRepo, depRepo, uow, logger, activity),
		Cascade:    service.NewCascadeService(uow, recurrenceSvc, logger, activity),
		Recurrence: recurrenceSvc,

		Firms:        firmRepo,
		Clients:      clientRepo,
		ProjectsRepo: projectRepo,
		Tasks:        taskRepo,
		Statuses:     statusRepo,
		Activity:     activityRepo,
	}

	return cli.NewRootCmd(app).Execute()
}
