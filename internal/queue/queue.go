// Package queue provides the durable dispatch queue decoupling message
// ingestion from delivery. Consumption is at-least-once: a job acked only
// after its status write may be seen twice after a crash, and downstream
// status writes are idempotent to make that safe.
package queue

import (
	"context"

	"github.com/hardcorebadger/push-api/internal/models"
)

// Delivery is one dequeued job plus its acknowledgement handles.
type Delivery struct {
	Job *models.DeliveryJob

	// Ack marks the job done. Nack returns it: with requeue the job is
	// redelivered, without it the job goes to the dead-letter queue.
	Ack  func() error
	Nack func(requeue bool) error
}

// Queue is the dispatch queue contract. Enqueue is safe for concurrent
// producers; Consume may be called by multiple worker processes, each
// receiving a share of the jobs.
type Queue interface {
	Enqueue(ctx context.Context, job *models.DeliveryJob) error
	Consume(ctx context.Context) (<-chan Delivery, error)
	Close() error
}
