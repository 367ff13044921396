// Package task provides in-memory background task processing. Tasks are
// deliberately not persisted: job results live in the status store and are
// lost on restart, which is acceptable for short-lived audio jobs.
package task

import "context"

// Task represents a unit of background work to be processed
// Version: 2.0
type Task interface {
	// ID returns the task's unique identifier
	ID() string

	// Type returns the task type identifier
	Type() string

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// funcTask adapts a closure into a Task.
type funcTask struct {
	id   string
	typ  string
	exec func(ctx context.Context) error
}

// NewFunc wraps a closure as a Task.
func NewFunc(id, typ string, exec func(ctx context.Context) error) Task {
	return &funcTask{id: id, typ: typ, exec: exec}
}

func (t *funcTask) ID() string   { return t.id }
func (t *funcTask) Type() string { return t.typ }

func (t *funcTask) Execute(ctx context.Context) error { return t.exec(ctx) }
