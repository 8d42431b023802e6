package core

import "context"

// Job processes a single webhook delivery end to end.
type Job interface {
	Run(ctx context.Context, event *Event) error
}

// JobDispatcher queues deliveries for background processing by a worker pool.
type JobDispatcher interface {
	Dispatch(ctx context.Context, event *Event) error
	Stop()
}
