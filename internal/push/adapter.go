// Package push contains the platform adapters. Each adapter owns the wire
// protocol to its provider and maps every outcome, including provider-side
// faults, into the four-state delivery result; nothing escapes Deliver as an
// error value.
package push

import (
	"context"

	"github.com/hardcorebadger/push-api/internal/models"
)

// Outcome is the result of one delivery attempt.
//
//   - delivered: the provider accepted the push.
//   - invalid:   the provider reports the token or subscription is
//     permanently dead.
//   - failed:    the provider rejected the request for a possibly transient
//     or payload-related reason.
//   - error:     the attempt failed before reaching the provider
//     (credentials, config, encoding).
type Outcome struct {
	Status models.DeliveryState
	Detail string
}

func delivered(detail string) Outcome {
	return Outcome{Status: models.StateDelivered, Detail: detail}
}

func invalid(detail string) Outcome {
	return Outcome{Status: models.StateInvalid, Detail: detail}
}

func failed(detail string) Outcome {
	return Outcome{Status: models.StateFailed, Detail: detail}
}

func errored(detail string) Outcome {
	return Outcome{Status: models.StateError, Detail: detail}
}

// Adapter delivers one job to its platform's provider. Provider clients are
// built from the job's own credential subset on every call; no adapter holds
// process-global credential state.
type Adapter interface {
	Deliver(ctx context.Context, job *models.DeliveryJob) Outcome
}

// Registry maps each platform to its adapter. The platform set is closed;
// adding one is a code change, not runtime registration.
type Registry map[models.Platform]Adapter

// NewRegistry builds the standard adapter set.
func NewRegistry(apnsProduction bool) Registry {
	return Registry{
		models.PlatformIOS:     NewAPNSAdapter(apnsProduction),
		models.PlatformAndroid: NewFCMAdapter(),
		models.PlatformWeb:     NewWebPushAdapter(),
	}
}
