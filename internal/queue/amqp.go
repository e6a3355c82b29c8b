package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/pkg/rabbitmq"
)

const (
	// Exchange is the direct exchange delivery jobs are published to.
	Exchange = "push.direct"
	// JobQueue is the durable queue the delivery workers consume.
	JobQueue = "push.jobs"
	// RoutingKey binds JobQueue to Exchange.
	RoutingKey = "jobs"
	// DeadLetterQueue receives jobs the workers reject without requeue.
	DeadLetterQueue = "push.failed"

	prefetch = 16
)

// AMQPQueue is the RabbitMQ-backed dispatch queue.
type AMQPQueue struct {
	manager *rabbitmq.Manager
	logger  *slog.Logger
}

// NewAMQPQueue declares the job topology and returns the queue.
func NewAMQPQueue(manager *rabbitmq.Manager, logger *slog.Logger) (*AMQPQueue, error) {
	if err := manager.DeclareJobTopology(Exchange, JobQueue, RoutingKey, DeadLetterQueue); err != nil {
		return nil, fmt.Errorf("declare job topology: %w", err)
	}
	return &AMQPQueue{manager: manager, logger: logger}, nil
}

// Enqueue publishes one delivery job as a persistent message.
func (q *AMQPQueue) Enqueue(ctx context.Context, job *models.DeliveryJob) error {
	ch, err := q.manager.Connection().Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return ch.Publish(
		Exchange,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
}

// Consume opens a channel with manual acks and streams deliveries until the
// context is cancelled or the connection drops.
func (q *AMQPQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	ch, err := q.manager.Connection().Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, err
	}

	msgs, err := ch.Consume(
		JobQueue,
		"",    // consumer tag
		false, // autoAck off: ack only after the status write
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, err
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				job := new(models.DeliveryJob)
				if err := json.Unmarshal(msg.Body, job); err != nil {
					// Undecodable payloads can never succeed; dead-letter them.
					q.logger.Error("discarding undecodable job", slog.Any("error", err))
					_ = msg.Nack(false, false)
					continue
				}
				m := msg
				out <- Delivery{
					Job:  job,
					Ack:  func() error { return m.Ack(false) },
					Nack: func(requeue bool) error { return m.Nack(false, requeue) },
				}
			}
		}
	}()
	return out, nil
}

// Close is a no-op; the underlying connection is owned by the manager.
func (q *AMQPQueue) Close() error { return nil }
