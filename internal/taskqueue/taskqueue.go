// Package taskqueue schedules delayed HTTP tasks. Task names are chosen
// by the caller, so the queue deduplicates re-submissions of the same
// work.
package taskqueue

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyExists reports that a task with the same name was already
// created. Callers treat it as success.
var ErrAlreadyExists = errors.New("taskqueue: task already exists")

// Task is one delayed HTTP POST.
type Task struct {
	// ID is the deterministic task name used for dedup.
	ID string
	// URL is the target the queue will POST to.
	URL string
	// Body is the JSON request body.
	Body []byte
	// ScheduleTime is when the queue should deliver the task.
	ScheduleTime time.Time
}

// Queue is the delayed-task seam.
type Queue interface {
	CreateTask(ctx context.Context, t Task) error
}
