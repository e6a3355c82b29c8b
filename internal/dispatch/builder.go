package dispatch

import (
	"time"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/vault"
)

// BuildJob turns a (message, device, decrypted credentials) triple into the
// immutable delivery job for that device. Only the credential subset for the
// device's own platform is carried; a job never holds another platform's
// secrets. enqueuedAt is stamped once per dispatch and shared by every job in
// the batch, so identical inputs always yield identical jobs.
func BuildJob(message *models.Message, device *models.Device, creds *vault.Credentials, enqueuedAt time.Time) *models.DeliveryJob {
	job := &models.DeliveryJob{
		ProjectID:  device.ProjectID,
		MessageID:  message.ID,
		DeviceID:   device.ID,
		Platform:   device.Platform,
		Token:      device.Token,
		Title:      message.Title,
		Body:       message.Body,
		Category:   message.Category,
		Icon:       message.Icon,
		ActionURL:  message.ActionURL,
		EnqueuedAt: enqueuedAt,
	}

	switch device.Platform {
	case models.PlatformIOS:
		job.Credentials.APNS = &models.APNSCredentials{
			KeyID:      creds.APNSKeyID,
			TeamID:     creds.APNSTeamID,
			BundleID:   creds.APNSBundleID,
			PrivateKey: creds.APNSPrivateKey,
		}
	case models.PlatformAndroid:
		job.Credentials.FCM = &models.FCMCredentials{
			CredentialsJSON: creds.FCMCredentialsJSON,
		}
	case models.PlatformWeb:
		job.Credentials.VAPID = &models.VAPIDCredentials{
			PublicKey:  creds.VAPIDPublicKey,
			PrivateKey: creds.VAPIDPrivateKey,
			Subject:    creds.VAPIDSubject,
		}
	}
	return job
}
