package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hardcorebadger/push-api/internal/dispatch"
	"github.com/hardcorebadger/push-api/internal/middleware"
	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/repository"
	"github.com/hardcorebadger/push-api/internal/services"
	"github.com/hardcorebadger/push-api/pkg/metrics"
)

// MessageHandler handles message submission and lookup. Submission runs the
// synchronous dispatch path; delivery completes asynchronously.
type MessageHandler struct {
	store       *repository.Store
	dispatcher  *dispatch.Dispatcher
	idempotency *services.IdempotencyService
	metrics     *metrics.Collector
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(store *repository.Store, dispatcher *dispatch.Dispatcher, idempotency *services.IdempotencyService, collector *metrics.Collector) *MessageHandler {
	return &MessageHandler{store: store, dispatcher: dispatcher, idempotency: idempotency, metrics: collector}
}

// Send creates the message and dispatches one job per eligible device. The
// response lists the targeted devices with their pending status, before any
// delivery has happened.
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	projectID := middleware.ProjectID(c)

	// releaseRequestID undoes the idempotency claim when the dispatch it
	// guards never happened, so the client's retry is not reported as a
	// duplicate.
	releaseRequestID := func() {
		if req.RequestID != "" {
			_ = h.idempotency.Forget(c, projectID+":"+req.RequestID)
		}
	}

	if req.RequestID != "" {
		seen, err := h.idempotency.Seen(c, projectID+":"+req.RequestID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to check idempotency", err)
			return
		}
		if seen {
			respondSuccess(c, http.StatusOK, "duplicate request", gin.H{
				"request_id": req.RequestID,
				"status":     "duplicate",
			})
			return
		}
	}

	// Credential columns are needed for dispatch; the auth middleware only
	// resolves the project id.
	project, err := h.store.GetProject(c, projectID)
	if err != nil {
		releaseRequestID()
		respondError(c, http.StatusInternalServerError, "failed to load project", err)
		return
	}

	message := &models.Message{
		ProjectID: projectID,
		UserID:    req.UserID,
		Platform:  req.Platform,
		DeviceID:  req.DeviceID,
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Icon:      req.Icon,
		ActionURL: req.ActionURL,
	}
	if err := h.store.CreateMessage(c, message); err != nil {
		releaseRequestID()
		respondError(c, http.StatusInternalServerError, "failed to create message", err)
		return
	}

	results, err := h.dispatcher.Dispatch(c, project, message, models.CriteriaFromMessage(message))
	if err != nil {
		releaseRequestID()
		var validationErr *dispatch.ValidationError
		var credentialErr *dispatch.CredentialError
		var targetingErr *dispatch.TargetingError
		switch {
		case errors.As(err, &validationErr):
			respondValidationError(c, err)
		case errors.As(err, &credentialErr):
			respondError(c, http.StatusInternalServerError, "project credentials unavailable", err)
		case errors.As(err, &targetingErr):
			respondError(c, http.StatusServiceUnavailable, "failed to resolve targets", err)
		default:
			respondError(c, http.StatusInternalServerError, "failed to dispatch message", err)
		}
		return
	}
	if len(results) == 0 {
		respondError(c, http.StatusNotFound, "no matching devices found", nil)
		return
	}
	for range results {
		h.metrics.JobEnqueued()
	}

	respondSuccess(c, http.StatusOK, "message dispatched", gin.H{
		"message": message,
		"devices": results,
	})
}

// List returns the project's messages, optionally filtered.
func (h *MessageHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	filter := repository.MessageFilter{
		UserID:   c.Query("user_id"),
		Platform: models.Platform(c.Query("platform")),
		Category: c.Query("category"),
	}
	messages, total, err := h.store.ListMessages(c, middleware.ProjectID(c), filter, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list messages", err)
		return
	}
	respondSuccess(c, http.StatusOK, "messages retrieved", gin.H{
		"messages": messages,
		"total":    total,
	})
}

// Get returns one message.
func (h *MessageHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid message id", err)
		return
	}
	message, err := h.store.GetMessage(c, middleware.ProjectID(c), uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "message not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get message", err)
		return
	}
	respondSuccess(c, http.StatusOK, "message retrieved", message)
}

// Status returns the per-device delivery outcomes for one message.
func (h *MessageHandler) Status(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid message id", err)
		return
	}
	// Ownership check keeps one tenant from reading another's outcomes.
	if _, err := h.store.GetMessage(c, middleware.ProjectID(c), uint(id)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "message not found", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to get message", err)
		return
	}

	statuses, err := h.store.ListDeliveryStatuses(c, uint(id))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list delivery statuses", err)
		return
	}
	respondSuccess(c, http.StatusOK, "delivery status retrieved", gin.H{
		"message_id": id,
		"statuses":   statuses,
	})
}
