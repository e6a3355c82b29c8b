// Package dispatch implements the fan-out pipeline: target resolution,
// preference filtering, credential resolution, job building, and enqueue.
// It runs synchronously inside the ingesting request; delivery itself is the
// workers' job.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/queue"
	"github.com/hardcorebadger/push-api/internal/vault"
)

// Dispatcher orchestrates one message's fan-out into delivery jobs.
type Dispatcher struct {
	store  Store
	vault  *vault.Vault
	queue  queue.Queue
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(store Store, v *vault.Vault, q queue.Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{store: store, vault: v, queue: q, logger: logger}
}

// Dispatch resolves the message's targets, filters them by preference,
// decrypts the project credentials once, and enqueues one job per eligible
// device. Everything up to enqueue is all-or-nothing: a validation,
// targeting, or credential error leaves no job behind. The returned results
// carry each targeted device with its immediate pending status; actual
// delivery completes asynchronously.
func (d *Dispatcher) Dispatch(ctx context.Context, project *models.Project, message *models.Message, criteria models.TargetCriteria) ([]models.TargetResult, error) {
	if err := validate(message, criteria); err != nil {
		return nil, err
	}

	devices, err := Resolve(ctx, d.store, project.ID, criteria)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return []models.TargetResult{}, nil
	}

	eligible, err := d.filterEligible(ctx, project.ID, message, devices)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return []models.TargetResult{}, nil
	}

	// Decrypted once per dispatch and shared read-only across every job
	// built below; never cached beyond this call.
	creds, err := d.vault.Decrypt(project)
	if err != nil {
		return nil, &CredentialError{Cause: err}
	}

	enqueuedAt := time.Now().UTC()
	jobs := make([]*models.DeliveryJob, 0, len(eligible))
	for i := range eligible {
		jobs = append(jobs, BuildJob(message, &eligible[i], creds, enqueuedAt))
	}

	results := make([]models.TargetResult, 0, len(jobs))
	for i, job := range jobs {
		if err := d.queue.Enqueue(ctx, job); err != nil {
			return nil, fmt.Errorf("enqueue job for device %d: %w", job.DeviceID, err)
		}
		if err := d.store.UpsertDeliveryStatus(ctx, job.MessageID, job.DeviceID, models.StatePending, ""); err != nil {
			// The job is already queued; the worker's own upsert will
			// create the record when it completes.
			d.logger.Error("failed to record pending status",
				slog.Uint64("message_id", uint64(job.MessageID)),
				slog.Uint64("device_id", uint64(job.DeviceID)),
				slog.Any("error", err))
		}
		results = append(results, models.TargetResult{
			Device: eligible[i],
			Status: models.StatePending,
		})
	}

	d.logger.Info("message dispatched",
		slog.String("project_id", project.ID),
		slog.Uint64("message_id", uint64(message.ID)),
		slog.Int("devices_resolved", len(devices)),
		slog.Int("jobs_enqueued", len(results)))
	return results, nil
}

// filterEligible applies user- and device-level preferences. User
// preferences are fetched once per user within the dispatch. Ineligible
// devices are skipped silently and contribute no status record.
func (d *Dispatcher) filterEligible(ctx context.Context, projectID string, message *models.Message, devices []models.Device) ([]models.Device, error) {
	userPrefs := make(map[string]*models.Preference)
	eligible := make([]models.Device, 0, len(devices))

	for _, device := range devices {
		var userPref *models.Preference
		if device.UserID != "" {
			cached, ok := userPrefs[device.UserID]
			if !ok {
				pref, err := d.store.GetUserPreference(ctx, projectID, device.UserID)
				if err != nil {
					return nil, &TargetingError{Cause: err}
				}
				userPrefs[device.UserID] = pref
				cached = pref
			}
			userPref = cached
		}

		devicePref, err := d.store.GetDevicePreference(ctx, device.ID)
		if err != nil {
			return nil, &TargetingError{Cause: err}
		}

		if Eligible(userPref, devicePref, message.Category) {
			eligible = append(eligible, device)
		}
	}
	return eligible, nil
}

func validate(message *models.Message, criteria models.TargetCriteria) error {
	if strings.TrimSpace(message.Title) == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if strings.TrimSpace(message.Body) == "" {
		return &ValidationError{Reason: "body is required"}
	}
	if criteria.Platform != "" && !criteria.Platform.Valid() {
		return &ValidationError{Reason: "unknown platform: " + string(criteria.Platform)}
	}
	return nil
}
