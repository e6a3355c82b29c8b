package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/hardcorebadger/push-api/internal/models"
)

// ProjectCache caches API-key to project resolution in Redis so the auth
// middleware does not hit the database on every request. Only non-sensitive
// project fields are cached; encrypted credential columns stay in Postgres.
type ProjectCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProjectCache creates a ProjectCache. A nil client disables caching.
func NewProjectCache(client *redis.Client, ttl time.Duration) *ProjectCache {
	return &ProjectCache{client: client, ttl: ttl}
}

type cachedProject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Get returns the cached project for an API key, or (nil, nil) on a miss.
func (c *ProjectCache) Get(ctx context.Context, apiKey string) (*models.Project, error) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, nil
	}
	data, err := c.client.Get(ctx, c.key(apiKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cached cachedProject
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &models.Project{ID: cached.ID, Name: cached.Name}, nil
}

// Set stores the API-key to project mapping with the configured TTL.
func (c *ProjectCache) Set(ctx context.Context, apiKey string, project *models.Project) error {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(cachedProject{ID: project.ID, Name: project.Name})
	if err != nil {
		return err
	}
	return c.client.SetEX(ctx, c.key(apiKey), data, c.ttl).Err()
}

// key hashes the API key so the secret itself never appears in Redis.
func (c *ProjectCache) key(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return "project:apikey:" + hex.EncodeToString(sum[:])
}
