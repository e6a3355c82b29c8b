package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"github.com/hardcorebadger/push-api/internal/models"
)

// APNSAdapter delivers iOS jobs over APNs using p8 token authentication.
type APNSAdapter struct {
	production bool
}

// NewAPNSAdapter creates an APNSAdapter. production selects the APNs
// production host; development builds use the sandbox.
func NewAPNSAdapter(production bool) *APNSAdapter {
	return &APNSAdapter{production: production}
}

// Deliver sends one alert push to the job's device token.
func (a *APNSAdapter) Deliver(ctx context.Context, job *models.DeliveryJob) Outcome {
	creds := job.Credentials.APNS
	if creds == nil || creds.PrivateKey == "" || creds.KeyID == "" || creds.TeamID == "" {
		return errored("apns credentials not configured for project")
	}

	authKey, err := token.AuthKeyFromBytes([]byte(creds.PrivateKey))
	if err != nil {
		return errored(fmt.Sprintf("parse apns private key: %v", err))
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   creds.KeyID,
		TeamID:  creds.TeamID,
	})
	if a.production {
		client.Production()
	} else {
		client.Development()
	}

	p := payload.NewPayload().
		AlertTitle(job.Title).
		AlertBody(job.Body).
		Badge(1)
	if job.ActionURL != "" {
		p.Custom("action_url", job.ActionURL)
	}
	if job.Category != "" {
		p.Custom("category", job.Category)
	}

	notification := &apns2.Notification{
		DeviceToken: job.Token,
		Topic:       creds.BundleID,
		Payload:     p,
		PushType:    apns2.PushTypeAlert,
	}

	res, err := client.PushWithContext(ctx, notification)
	if err != nil {
		return failed(fmt.Sprintf("apns push: %v", err))
	}
	if res.Sent() {
		return delivered(fmt.Sprintf("apns id %s", res.ApnsID))
	}

	switch res.Reason {
	case apns2.ReasonUnregistered, apns2.ReasonBadDeviceToken, apns2.ReasonDeviceTokenNotForTopic:
		return invalid(fmt.Sprintf("apns %d: %s", res.StatusCode, res.Reason))
	}
	return failed(fmt.Sprintf("apns %d: %s", res.StatusCode, res.Reason))
}
