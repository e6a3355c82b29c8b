package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hardcorebadger/push-api/internal/middleware"
	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/repository"
)

// DeviceHandler handles device registration and lookup.
type DeviceHandler struct {
	store *repository.Store
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(store *repository.Store) *DeviceHandler {
	return &DeviceHandler{store: store}
}

// Register upserts a device for (user, device identifier). Registering the
// same (platform, token) pair again updates the existing record.
func (h *DeviceHandler) Register(c *gin.Context) {
	var req models.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	device := &models.Device{
		ProjectID:  middleware.ProjectID(c),
		UserID:     c.Param("user_id"),
		Identifier: c.Param("device_id"),
		Platform:   req.Platform,
		Token:      req.Token,
	}
	if err := h.store.UpsertDevice(c, device); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to register device", err)
		return
	}

	respondSuccess(c, http.StatusOK, "device registered", device)
}

// Get returns one device by its registration identity.
func (h *DeviceHandler) Get(c *gin.Context) {
	device, err := h.store.GetDevice(c, middleware.ProjectID(c), c.Param("user_id"), c.Param("device_id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "device not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get device", err)
		return
	}
	respondSuccess(c, http.StatusOK, "device retrieved", device)
}

// Delete removes a device registration.
func (h *DeviceHandler) Delete(c *gin.Context) {
	err := h.store.DeleteDevice(c, middleware.ProjectID(c), c.Param("user_id"), c.Param("device_id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "device not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to delete device", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns all of a user's devices in the project.
func (h *DeviceHandler) List(c *gin.Context) {
	devices, err := h.store.ListDevices(c, middleware.ProjectID(c), models.TargetCriteria{
		UserID: c.Param("user_id"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list devices", err)
		return
	}
	respondSuccess(c, http.StatusOK, "devices retrieved", devices)
}
