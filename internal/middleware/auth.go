package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hardcorebadger/push-api/internal/repository"
)

// ProjectIDKey is the gin context key holding the authenticated project id.
const ProjectIDKey = "project_id"

// APIKeyAuth authenticates requests by API key (Authorization: Bearer) and
// resolves the owning project. Every downstream query is scoped by the
// project id set here, which is what keeps tenants isolated.
func APIKeyAuth(store *repository.Store, cache *repository.ProjectCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}
		apiKey := parts[1]

		if project, err := cache.Get(c, apiKey); err == nil && project != nil {
			c.Set(ProjectIDKey, project.ID)
			c.Next()
			return
		}

		project, err := store.GetProjectByAPIKey(c, apiKey)
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve API key"})
			return
		}
		_ = cache.Set(c, apiKey, project)

		c.Set(ProjectIDKey, project.ID)
		c.Next()
	}
}

// ProjectID returns the authenticated project id from the context.
func ProjectID(c *gin.Context) string {
	return c.GetString(ProjectIDKey)
}
