package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardcorebadger/push-api/internal/models"
)

func TestMemoryQueueDeliversEnqueuedJobs(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, &models.DeliveryJob{MessageID: 1, DeviceID: 1}))
	require.NoError(t, q.Enqueue(ctx, &models.DeliveryJob{MessageID: 1, DeviceID: 2}))
	assert.Equal(t, 2, q.Len())

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	seen := map[uint]bool{}
	for i := 0; i < 2; i++ {
		select {
		case d := <-deliveries:
			seen[d.Job.DeviceID] = true
			require.NoError(t, d.Ack())
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
	assert.True(t, seen[1])
	assert.True(t, seen[2])
}

func TestMemoryQueueNackRequeues(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, q.Enqueue(ctx, &models.DeliveryJob{MessageID: 9, DeviceID: 1}))

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)

	first := <-deliveries
	require.NoError(t, first.Nack(true))

	select {
	case second := <-deliveries:
		assert.Equal(t, uint(9), second.Job.MessageID)
		require.NoError(t, second.Ack())
	case <-time.After(time.Second):
		t.Fatal("nacked job was not redelivered")
	}
}

func TestMemoryQueueEnqueueAfterCloseErrors(t *testing.T) {
	q := NewMemoryQueue(4)
	require.NoError(t, q.Close())

	err := q.Enqueue(context.Background(), &models.DeliveryJob{MessageID: 1, DeviceID: 1})
	assert.EqualError(t, err, "queue is closed")
}

func TestMemoryQueueConsumeStopsOnCancel(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())

	deliveries, err := q.Consume(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-deliveries:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("delivery channel did not close after cancel")
	}
}
