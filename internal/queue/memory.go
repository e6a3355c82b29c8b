package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/hardcorebadger/push-api/internal/models"
)

// MemoryQueue is a bounded in-process queue with the same ack semantics as
// the AMQP queue. It backs tests and single-node development; production
// deployments use RabbitMQ so jobs survive a restart.
type MemoryQueue struct {
	jobs chan *models.DeliveryJob

	mu     sync.RWMutex
	closed bool
}

// NewMemoryQueue creates a queue holding at most size jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{jobs: make(chan *models.DeliveryJob, size)}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job *models.DeliveryJob) error {
	// The read lock spans the send so Close cannot close the channel under
	// an in-flight Enqueue.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return errors.New("queue is closed")
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				j := job
				out <- Delivery{
					Job: j,
					Ack: func() error { return nil },
					Nack: func(requeue bool) error {
						if requeue {
							return q.Enqueue(context.Background(), j)
						}
						return nil
					},
				}
			}
		}
	}()
	return out, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return errors.New("queue already closed")
	}
	q.closed = true
	close(q.jobs)
	return nil
}

// Len reports the number of buffered jobs. Test helper.
func (q *MemoryQueue) Len() int { return len(q.jobs) }
