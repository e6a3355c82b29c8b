package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/queue"
	"github.com/hardcorebadger/push-api/internal/vault"
)

// fakeStore implements Store in memory with the same project scoping as the
// real repository.
type fakeStore struct {
	devices     []models.Device
	userPrefs   map[string]*models.Preference
	devicePrefs map[uint]*models.DevicePreference
	statuses    map[string]models.DeliveryState

	listErr error
	prefErr error
}

func newFakeStore(devices ...models.Device) *fakeStore {
	return &fakeStore{
		devices:     devices,
		userPrefs:   map[string]*models.Preference{},
		devicePrefs: map[uint]*models.DevicePreference{},
		statuses:    map[string]models.DeliveryState{},
	}
}

func (s *fakeStore) ListDevices(_ context.Context, projectID string, criteria models.TargetCriteria) ([]models.Device, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Device
	for _, d := range s.devices {
		if d.ProjectID != projectID {
			continue
		}
		if criteria.UserID != "" && d.UserID != criteria.UserID {
			continue
		}
		if criteria.Platform != "" && d.Platform != criteria.Platform {
			continue
		}
		if criteria.DeviceID != "" && d.Identifier != criteria.DeviceID {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeStore) GetUserPreference(_ context.Context, projectID, userID string) (*models.Preference, error) {
	if s.prefErr != nil {
		return nil, s.prefErr
	}
	return s.userPrefs[projectID+"/"+userID], nil
}

func (s *fakeStore) GetDevicePreference(_ context.Context, deviceID uint) (*models.DevicePreference, error) {
	if s.prefErr != nil {
		return nil, s.prefErr
	}
	return s.devicePrefs[deviceID], nil
}

func (s *fakeStore) UpsertDeliveryStatus(_ context.Context, messageID, deviceID uint, status models.DeliveryState, _ string) error {
	s.statuses[fmt.Sprintf("%d/%d", messageID, deviceID)] = status
	return nil
}

// captureQueue records enqueued jobs.
type captureQueue struct {
	jobs []*models.DeliveryJob
	err  error
}

func (q *captureQueue) Enqueue(_ context.Context, job *models.DeliveryJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *captureQueue) Consume(context.Context) (<-chan queue.Delivery, error) { return nil, nil }
func (q *captureQueue) Close() error                                           { return nil }

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	v, err := vault.New(key.Encode())
	require.NoError(t, err)
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchCategoryScenario(t *testing.T) {
	// u1 has an ios device with every category allowed and an android
	// device that only accepts "promo"; a "news" message reaches only ios.
	store := newFakeStore(
		models.Device{ID: 1, ProjectID: "p1", UserID: "u1", Platform: models.PlatformIOS, Token: "tok-a"},
		models.Device{ID: 2, ProjectID: "p1", UserID: "u1", Platform: models.PlatformAndroid, Token: "tok-b"},
	)
	store.devicePrefs[2] = &models.DevicePreference{DeviceID: 2, Enabled: true, Categories: []string{"promo"}}

	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	message := &models.Message{ID: 10, ProjectID: "p1", UserID: "u1", Title: "t", Body: "b", Category: "news"}
	results, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{UserID: "u1"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, uint(1), results[0].Device.ID)
	assert.Equal(t, models.StatePending, results[0].Status)

	require.Len(t, q.jobs, 1)
	assert.Equal(t, "tok-a", q.jobs[0].Token)

	// The skipped android device contributes no status record.
	assert.Contains(t, store.statuses, "10/1")
	assert.NotContains(t, store.statuses, "10/2")
}

func TestDispatchNeverCrossesTenants(t *testing.T) {
	store := newFakeStore(
		models.Device{ID: 1, ProjectID: "p1", Platform: models.PlatformIOS, Token: "a"},
		models.Device{ID: 2, ProjectID: "p2", Platform: models.PlatformIOS, Token: "b"},
		models.Device{ID: 3, ProjectID: "p1", Platform: models.PlatformWeb, Token: `{"endpoint":"https://e"}`},
	)
	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", Title: "t", Body: "b"}
	results, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{})
	require.NoError(t, err)

	assert.Len(t, results, 2)
	for _, job := range q.jobs {
		assert.Equal(t, "p1", job.ProjectID)
		assert.NotEqual(t, uint(2), job.DeviceID)
	}
}

func TestDispatchDisabledUserBlocksAllDevices(t *testing.T) {
	store := newFakeStore(
		models.Device{ID: 1, ProjectID: "p1", UserID: "u1", Platform: models.PlatformIOS, Token: "a"},
		models.Device{ID: 2, ProjectID: "p1", UserID: "u1", Platform: models.PlatformWeb, Token: "w"},
	)
	store.userPrefs["p1/u1"] = &models.Preference{Enabled: false}
	// A permissive device-level preference cannot override the user opt-out.
	store.devicePrefs[1] = &models.DevicePreference{DeviceID: 1, Enabled: true}

	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", UserID: "u1", Title: "t", Body: "b"}
	results, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{UserID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, q.jobs)
	assert.Empty(t, store.statuses)
}

func TestDispatchCategorylessMessageReachesEveryEnabledDevice(t *testing.T) {
	store := newFakeStore(
		models.Device{ID: 1, ProjectID: "p1", UserID: "u1", Platform: models.PlatformIOS, Token: "a"},
		models.Device{ID: 2, ProjectID: "p1", UserID: "u1", Platform: models.PlatformAndroid, Token: "b"},
	)
	store.userPrefs["p1/u1"] = &models.Preference{Enabled: true, Categories: []string{"promo"}}
	store.devicePrefs[2] = &models.DevicePreference{DeviceID: 2, Enabled: true, Categories: []string{"news"}}

	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", UserID: "u1", Title: "t", Body: "b"}
	results, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDispatchCredentialErrorAbortsBeforeEnqueue(t *testing.T) {
	store := newFakeStore(
		models.Device{ID: 1, ProjectID: "p1", Platform: models.PlatformAndroid, Token: "a"},
	)
	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	// Ciphertext written under a different key cannot decrypt.
	project := &models.Project{ID: "p1", FCMCredentialsJSON: "not-a-fernet-token"}
	message := &models.Message{ID: 1, ProjectID: "p1", Title: "t", Body: "b"}
	_, err := d.Dispatch(context.Background(), project, message, models.TargetCriteria{})

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Empty(t, q.jobs)
	assert.Empty(t, store.statuses)
}

func TestDispatchValidation(t *testing.T) {
	q := &captureQueue{}
	d := NewDispatcher(newFakeStore(), testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", Title: "  ", Body: "b"}
	_, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, q.jobs)
}

func TestDispatchTargetingErrorAborts(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")

	q := &captureQueue{}
	d := NewDispatcher(store, testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", Title: "t", Body: "b"}
	_, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{})

	var targetingErr *TargetingError
	require.ErrorAs(t, err, &targetingErr)
	assert.Empty(t, q.jobs)
}

func TestDispatchNoMatchingDevices(t *testing.T) {
	q := &captureQueue{}
	d := NewDispatcher(newFakeStore(), testVault(t), q, discardLogger())

	message := &models.Message{ID: 1, ProjectID: "p1", Title: "t", Body: "b"}
	results, err := d.Dispatch(context.Background(), &models.Project{ID: "p1"}, message, models.TargetCriteria{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, q.jobs)
}
