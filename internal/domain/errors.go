package domain

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyTemplate indicates a template with zero tasks was compiled.
	ErrEmptyTemplate = errors.New("template has no tasks")

	// ErrCycleDetected indicates a dependency edge would close a cycle.
	ErrCycleDetected = errors.New("dependency would create a cycle")

	// ErrInvalidDependencyScope indicates a dependency edge references a task
	// in another firm.
	ErrInvalidDependencyScope = errors.New("dependency crosses firm boundary")

	// ErrStaleCascade indicates a task was modified concurrently while a
	// cascade transaction was writing it.
	ErrStaleCascade = errors.New("task modified concurrently during cascade")

	// ErrInactiveClient indicates a project was instantiated for a client
	// that has been deactivated.
	ErrInactiveClient = errors.New("client is inactive")
)
