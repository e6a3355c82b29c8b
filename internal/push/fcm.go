package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/hardcorebadger/push-api/internal/models"
)

// FCMAdapter delivers Android jobs through Firebase Cloud Messaging. The
// Firebase app is constructed from the job's own service-account JSON on
// every delivery, keeping credential lifetimes scoped to the job and ruling
// out cross-project client reuse.
type FCMAdapter struct{}

// NewFCMAdapter creates an FCMAdapter.
func NewFCMAdapter() *FCMAdapter {
	return &FCMAdapter{}
}

// Deliver sends one notification message to the job's registration token.
func (a *FCMAdapter) Deliver(ctx context.Context, job *models.DeliveryJob) Outcome {
	creds := job.Credentials.FCM
	if creds == nil || creds.CredentialsJSON == "" {
		return errored("fcm credentials not configured for project")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(creds.CredentialsJSON)))
	if err != nil {
		return errored(fmt.Sprintf("init firebase app: %v", err))
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return errored(fmt.Sprintf("init fcm client: %v", err))
	}

	msg := &messaging.Message{
		Token: job.Token,
		Notification: &messaging.Notification{
			Title: job.Title,
			Body:  job.Body,
		},
		Data: map[string]string{
			"category":     job.Category,
			"click_action": "FLUTTER_NOTIFICATION_CLICK",
		},
	}
	if job.ActionURL != "" {
		msg.Data["action_url"] = job.ActionURL
	}

	id, err := client.Send(ctx, msg)
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) || messaging.IsInvalidArgument(err) {
			return invalid(fmt.Sprintf("fcm: %v", err))
		}
		return failed(fmt.Sprintf("fcm: %v", err))
	}
	return delivered(fmt.Sprintf("fcm id %s", id))
}
