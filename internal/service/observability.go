package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/praxis/internal/domain"
	"github.com/mkowalczyk/praxis/internal/repository"
)

// ActivityEvent describes a completed mutation for the activity feed.
type ActivityEvent struct {
	FirmID    string
	Message   string
	ProjectID *string
	TaskID    *string
}

// ActivityLogger records activity events after successful mutations.
// Implementations must never fail the calling operation.
type ActivityLogger interface {
	LogEvent(ctx context.Context, event ActivityEvent)
}

// NoopActivityLogger discards all events.
type NoopActivityLogger struct{}

func (NoopActivityLogger) LogEvent(context.Context, ActivityEvent) {}

// SlogActivityLogger writes events to a structured logger.
type SlogActivityLogger struct {
	logger *slog.Logger
}

func NewSlogActivityLogger(logger *slog.Logger) *SlogActivityLogger {
	return &SlogActivityLogger{logger: logger}
}

func (l *SlogActivityLogger) LogEvent(ctx context.Context, event ActivityEvent) {
	attrs := []any{"firm_id", event.FirmID}
	if event.ProjectID != nil {
		attrs = append(attrs, "project_id", *event.ProjectID)
	}
	if event.TaskID != nil {
		attrs = append(attrs, "task_id", *event.TaskID)
	}
	l.logger.InfoContext(ctx, event.Message, attrs...)
}

// StoreActivityLogger persists events to the activity log table. Write
// failures are logged and swallowed so the originating mutation, already
// committed, is never reported as failed.
type StoreActivityLogger struct {
	repo   repository.ActivityRepo
	actor  string
	logger *slog.Logger
}

func NewStoreActivityLogger(repo repository.ActivityRepo, actor string, logger *slog.Logger) *StoreActivityLogger {
	if actor == "" {
		actor = "system"
	}
	return &StoreActivityLogger{repo: repo, actor: actor, logger: logger}
}

func (l *StoreActivityLogger) LogEvent(ctx context.Context, event ActivityEvent) {
	entry := &domain.ActivityEntry{
		ID:          uuid.NewString(),
		FirmID:      event.FirmID,
		Message:     event.Message,
		ActorUserID: l.actor,
		ProjectID:   event.ProjectID,
		TaskID:      event.TaskID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.WarnContext(ctx, "activity log write failed", "error", err)
	}
}

// MultiActivityLogger fans one event out to several sinks.
type MultiActivityLogger []ActivityLogger

func (m MultiActivityLogger) LogEvent(ctx context.Context, event ActivityEvent) {
	for _, l := range m {
		l.LogEvent(ctx, event)
	}
}

// activityLoggerFor collapses a variadic logger list into a single sink.
func activityLoggerFor(loggers []ActivityLogger) ActivityLogger {
	switch len(loggers) {
	case 0:
		return NoopActivityLogger{}
	case 1:
		return loggers[0]
	default:
		return MultiActivityLogger(loggers)
	}
}
