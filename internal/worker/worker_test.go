package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/push"
	"github.com/hardcorebadger/push-api/internal/queue"
)

type recordingStore struct {
	mu       sync.Mutex
	statuses map[string]models.DeliveryState
	details  map[string]string
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		statuses: map[string]models.DeliveryState{},
		details:  map[string]string{},
	}
}

func (s *recordingStore) UpsertDeliveryStatus(_ context.Context, messageID, deviceID uint, status models.DeliveryState, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d/%d", messageID, deviceID)
	s.statuses[key] = status
	s.details[key] = detail
	return nil
}

func (s *recordingStore) get(messageID, deviceID uint) (models.DeliveryState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status, ok := s.statuses[fmt.Sprintf("%d/%d", messageID, deviceID)]
	return status, ok
}

type stubAdapter struct {
	outcome push.Outcome
}

func (a *stubAdapter) Deliver(context.Context, *models.DeliveryJob) push.Outcome {
	return a.outcome
}

func runPool(t *testing.T, q queue.Queue, adapters push.Registry, store *recordingStore) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(q, adapters, store, slog.New(slog.NewTextHandler(io.Discard, nil)), 2)
	go func() {
		_ = pool.Run(ctx)
	}()
	return cancel
}

func TestWorkerRecordsInvalidForDeadSubscription(t *testing.T) {
	// A web push job whose provider answered 410 must be recorded as
	// invalid, not failed.
	q := queue.NewMemoryQueue(4)
	store := newRecordingStore()
	adapters := push.Registry{
		models.PlatformWeb: &stubAdapter{outcome: push.Outcome{
			Status: models.StateInvalid,
			Detail: "push service 410: subscription gone",
		}},
	}
	cancel := runPool(t, q, adapters, store)
	defer cancel()

	job := &models.DeliveryJob{MessageID: 1, DeviceID: 2, Platform: models.PlatformWeb, Token: `{"endpoint":"https://e"}`}
	require.NoError(t, q.Enqueue(context.Background(), job))

	require.Eventually(t, func() bool {
		status, ok := store.get(1, 2)
		return ok && status == models.StateInvalid
	}, 2*time.Second, 10*time.Millisecond)

	status, _ := store.get(1, 2)
	assert.Equal(t, models.StateInvalid, status)
}

func TestWorkerRecordsDelivered(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	store := newRecordingStore()
	adapters := push.Registry{
		models.PlatformIOS: &stubAdapter{outcome: push.Outcome{
			Status: models.StateDelivered,
			Detail: "apns id abc",
		}},
	}
	cancel := runPool(t, q, adapters, store)
	defer cancel()

	require.NoError(t, q.Enqueue(context.Background(), &models.DeliveryJob{
		MessageID: 3, DeviceID: 4, Platform: models.PlatformIOS, Token: "tok",
	}))

	require.Eventually(t, func() bool {
		status, ok := store.get(3, 4)
		return ok && status == models.StateDelivered
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerUnknownPlatformIsAnErrorOutcome(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	store := newRecordingStore()
	cancel := runPool(t, q, push.Registry{}, store)
	defer cancel()

	require.NoError(t, q.Enqueue(context.Background(), &models.DeliveryJob{
		MessageID: 5, DeviceID: 6, Platform: models.Platform("gopherwatch"),
	}))

	require.Eventually(t, func() bool {
		status, ok := store.get(5, 6)
		return ok && status == models.StateError
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerIsolatesFailuresPerDevice(t *testing.T) {
	// One device's failure never affects another device's delivery.
	q := queue.NewMemoryQueue(8)
	store := newRecordingStore()
	adapters := push.Registry{
		models.PlatformIOS: &stubAdapter{outcome: push.Outcome{Status: models.StateFailed, Detail: "apns 500"}},
		models.PlatformWeb: &stubAdapter{outcome: push.Outcome{Status: models.StateDelivered}},
	}
	cancel := runPool(t, q, adapters, store)
	defer cancel()

	require.NoError(t, q.Enqueue(context.Background(), &models.DeliveryJob{MessageID: 7, DeviceID: 1, Platform: models.PlatformIOS}))
	require.NoError(t, q.Enqueue(context.Background(), &models.DeliveryJob{MessageID: 7, DeviceID: 2, Platform: models.PlatformWeb}))

	require.Eventually(t, func() bool {
		a, okA := store.get(7, 1)
		b, okB := store.get(7, 2)
		return okA && okB && a == models.StateFailed && b == models.StateDelivered
	}, 2*time.Second, 10*time.Millisecond)
}
