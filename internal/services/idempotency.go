package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const idempotencyKeyTTL = 24 * time.Hour

// IdempotencyService deduplicates message submissions that carry a
// client-chosen request id.
type IdempotencyService struct {
	client *redis.Client
}

// NewIdempotencyService creates a new IdempotencyService.
func NewIdempotencyService(client *redis.Client) *IdempotencyService {
	return &IdempotencyService{client: client}
}

// Seen atomically records the request id and reports whether it had been
// submitted before. A repeated id means the caller already dispatched this
// message and must not fan out again.
func (s *IdempotencyService) Seen(ctx context.Context, requestID string) (bool, error) {
	wasSet, err := s.client.SetNX(ctx, key(requestID), "processed", idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return !wasSet, nil
}

// Forget releases a request id claimed by Seen. Called when the dispatch the
// id guarded fails, so the client's retry is not misreported as a duplicate.
func (s *IdempotencyService) Forget(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, key(requestID)).Err()
}

func key(requestID string) string {
	return "idempotency:message:" + requestID
}
