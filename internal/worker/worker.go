// Package worker runs the delivery worker pool. Workers pull jobs from the
// dispatch queue, invoke the adapter matching the job's platform, and record
// the outcome. Each worker handles one job end-to-end without holding any
// lock, so a slow provider call never blocks the rest of the pool.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/push"
	"github.com/hardcorebadger/push-api/internal/queue"
)

// StatusStore is the slice of storage the workers need.
type StatusStore interface {
	UpsertDeliveryStatus(ctx context.Context, messageID, deviceID uint, status models.DeliveryState, detail string) error
}

// Pool consumes the dispatch queue with a fixed number of workers.
type Pool struct {
	queue    queue.Queue
	adapters push.Registry
	store    StatusStore
	logger   *slog.Logger
	workers  int
}

// NewPool creates a Pool. workers below 1 is clamped to 1.
func NewPool(q queue.Queue, adapters push.Registry, store StatusStore, logger *slog.Logger, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{queue: q, adapters: adapters, store: store, logger: logger, workers: workers}
}

// Run blocks until the context is cancelled or the queue's delivery stream
// closes. Jobs in flight when the context ends are finished by their worker.
func (p *Pool) Run(ctx context.Context) error {
	deliveries, err := p.queue.Consume(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				p.process(ctx, d)
			}
		}()
	}
	wg.Wait()
	return nil
}

// process runs one job through its adapter and upserts the outcome. The job
// is acked only after the status write, so a crash in between redelivers it;
// the monotonic upsert makes the repeat harmless.
func (p *Pool) process(ctx context.Context, d queue.Delivery) {
	job := d.Job

	adapter, ok := p.adapters[job.Platform]
	var outcome push.Outcome
	if !ok {
		outcome = push.Outcome{
			Status: models.StateError,
			Detail: "no adapter for platform " + string(job.Platform),
		}
	} else {
		outcome = adapter.Deliver(ctx, job)
	}

	if err := p.store.UpsertDeliveryStatus(ctx, job.MessageID, job.DeviceID, outcome.Status, outcome.Detail); err != nil {
		p.logger.Error("failed to record delivery status, requeueing",
			slog.Uint64("message_id", uint64(job.MessageID)),
			slog.Uint64("device_id", uint64(job.DeviceID)),
			slog.Any("error", err))
		_ = d.Nack(true)
		return
	}

	p.logger.Info("job processed",
		slog.Uint64("message_id", uint64(job.MessageID)),
		slog.Uint64("device_id", uint64(job.DeviceID)),
		slog.String("platform", string(job.Platform)),
		slog.String("status", string(outcome.Status)))
	_ = d.Ack()
}
