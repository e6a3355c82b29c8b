package dispatch

import (
	"context"

	"github.com/hardcorebadger/push-api/internal/models"
)

// Store is the storage behavior the dispatch pipeline depends on.
type Store interface {
	ListDevices(ctx context.Context, projectID string, criteria models.TargetCriteria) ([]models.Device, error)
	GetUserPreference(ctx context.Context, projectID, userID string) (*models.Preference, error)
	GetDevicePreference(ctx context.Context, deviceID uint) (*models.DevicePreference, error)
	UpsertDeliveryStatus(ctx context.Context, messageID, deviceID uint, status models.DeliveryState, detail string) error
}

// Resolve returns the devices in a project matching the criteria. All
// constraints are ANDed and the query is always scoped by project id, so a
// device from another tenant can never appear in the result. No match is an
// empty set, not an error.
func Resolve(ctx context.Context, store Store, projectID string, criteria models.TargetCriteria) ([]models.Device, error) {
	devices, err := store.ListDevices(ctx, projectID, criteria)
	if err != nil {
		return nil, &TargetingError{Cause: err}
	}
	return devices, nil
}
