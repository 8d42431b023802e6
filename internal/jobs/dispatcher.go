// Package jobs runs webhook deliveries as background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sevigo/repo-butler/internal/core"
)

// dispatcher implements core.JobDispatcher and manages a pool of worker
// goroutines processing deliveries independently of each other.
type dispatcher struct {
	job        core.Job
	queue      chan *core.Event
	maxWorkers int
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewDispatcher initializes a dispatcher with a worker pool.
// If maxWorkers is 0 or negative, it defaults to 1.
func NewDispatcher(job core.Job, maxWorkers int, logger *slog.Logger) core.JobDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &dispatcher{
		job:        job,
		maxWorkers: maxWorkers,
		queue:      make(chan *core.Event, 100),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes deliveries from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting delivery worker", "id", workerID)

	for event := range d.queue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down delivery worker", "id", workerID)
}

func (d *dispatcher) processEvent(workerID int, event *core.Event) {
	d.logger.Info("worker processing delivery",
		"worker_id", workerID,
		"delivery", event.DeliveryID,
		"repo", event.RepoFullName,
		"kind", event.Kind,
	)

	if err := d.job.Run(context.Background(), event); err != nil {
		d.logger.Error("delivery processing failed",
			"delivery", event.DeliveryID,
			"repo", event.RepoFullName,
			"error", err,
		)
	}
}

// Dispatch queues a delivery for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, event *core.Event) error {
	d.logger.Info("queuing delivery", "delivery", event.DeliveryID, "repo", event.RepoFullName, "kind", event.Kind)

	select {
	case d.queue <- event:
		return nil
	default:
		return fmt.Errorf("delivery queue is full, cannot accept new work")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for in-flight
// deliveries to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping job dispatcher and waiting for deliveries to finish")
	close(d.queue)
	d.wg.Wait()
	d.logger.Info("all deliveries have finished")
}
