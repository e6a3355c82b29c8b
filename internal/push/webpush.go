package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/hardcorebadger/push-api/internal/models"
)

const webPushTTL = 60 * 60 * 24 // seconds

// WebPushAdapter delivers web jobs via the Web Push protocol with VAPID
// authentication. The device token is the serialized subscription captured
// at registration time.
type WebPushAdapter struct{}

// NewWebPushAdapter creates a WebPushAdapter.
func NewWebPushAdapter() *WebPushAdapter {
	return &WebPushAdapter{}
}

type webPushPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Category  string `json:"category,omitempty"`
	Icon      string `json:"icon,omitempty"`
	ActionURL string `json:"action_url,omitempty"`
}

// Deliver sends one push to the job's subscription endpoint. A 404 or 410
// from the push service means the subscription is permanently gone and the
// outcome is invalid, not failed.
func (a *WebPushAdapter) Deliver(ctx context.Context, job *models.DeliveryJob) Outcome {
	creds := job.Credentials.VAPID
	if creds == nil || creds.PrivateKey == "" || creds.Subject == "" {
		return errored("vapid credentials not configured for project")
	}

	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(job.Token), &sub); err != nil {
		return errored(fmt.Sprintf("parse subscription: %v", err))
	}
	if sub.Endpoint == "" {
		return errored("subscription has no endpoint")
	}

	body, err := json.Marshal(webPushPayload{
		Title:     job.Title,
		Body:      job.Body,
		Category:  job.Category,
		Icon:      job.Icon,
		ActionURL: job.ActionURL,
	})
	if err != nil {
		return errored(fmt.Sprintf("encode payload: %v", err))
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &sub, &webpush.Options{
		Subscriber:      creds.Subject,
		VAPIDPublicKey:  creds.PublicKey,
		VAPIDPrivateKey: creds.PrivateKey,
		TTL:             webPushTTL,
	})
	if err != nil {
		return failed(fmt.Sprintf("web push: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return delivered(fmt.Sprintf("push service %d", resp.StatusCode))
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return invalid(fmt.Sprintf("push service %d: subscription gone", resp.StatusCode))
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return failed(fmt.Sprintf("push service %d: %s", resp.StatusCode, detail))
	}
}
