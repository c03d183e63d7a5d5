package services

import (
	"context"
	"time"
)

// Task is a background job message with a type and opaque payload bytes.
type Task struct {
	Type    string
	Payload []byte
}

// TaskHandler processes a Task. A non-nil error asks the backend to retry.
type TaskHandler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Zero values mean "unspecified".
type EnqueueOption struct {
	Queue     string
	ProcessIn time.Duration
	MaxRetry  int
	Timeout   time.Duration
}

type TaskClient interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// TaskServer runs workers. Run blocks until ctx is cancelled.
type TaskServer interface {
	Register(taskType string, h TaskHandler)
	Run(ctx context.Context) error
}
