package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hardcorebadger/push-api/internal/middleware"
	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/repository"
)

// PreferenceHandler handles user- and device-level notification preferences.
type PreferenceHandler struct {
	store *repository.Store
}

// NewPreferenceHandler creates a new PreferenceHandler.
func NewPreferenceHandler(store *repository.Store) *PreferenceHandler {
	return &PreferenceHandler{store: store}
}

// GetUser returns a user's preference with the per-device breakdown. Absent
// rows surface as the default: enabled, all categories allowed.
func (h *PreferenceHandler) GetUser(c *gin.Context) {
	projectID := middleware.ProjectID(c)
	userID := c.Param("user_id")

	pref, err := h.store.GetUserPreference(c, projectID, userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get preferences", err)
		return
	}

	view := models.PreferenceView{Enabled: true, Categories: []string{}}
	if pref != nil {
		view.Enabled = pref.Enabled
		view.Categories = pref.Categories
	}

	devices, err := h.store.ListDevices(c, projectID, models.TargetCriteria{UserID: userID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list devices", err)
		return
	}
	for _, device := range devices {
		devicePref, err := h.store.GetDevicePreference(c, device.ID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "failed to get device preferences", err)
			return
		}
		deviceView := models.DevicePreferenceView{
			DeviceIdentifier: device.Identifier,
			Platform:         device.Platform,
			Enabled:          true,
			Categories:       []string{},
		}
		if devicePref != nil {
			deviceView.Enabled = devicePref.Enabled
			deviceView.Categories = devicePref.Categories
		}
		view.Devices = append(view.Devices, deviceView)
	}

	respondSuccess(c, http.StatusOK, "preferences retrieved", view)
}

// UpdateUser upserts a user's preference.
func (h *PreferenceHandler) UpdateUser(c *gin.Context) {
	var req models.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := req.Normalize(); err != nil {
		respondValidationError(c, err)
		return
	}

	pref := &models.Preference{
		ProjectID:  middleware.ProjectID(c),
		UserID:     c.Param("user_id"),
		Enabled:    *req.Enabled,
		Categories: req.Categories,
	}
	if err := h.store.UpsertUserPreference(c, pref); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update preferences", err)
		return
	}
	respondSuccess(c, http.StatusOK, "preferences updated", pref)
}

// GetDevice returns one device's preference.
func (h *PreferenceHandler) GetDevice(c *gin.Context) {
	device, err := h.store.GetDevice(c, middleware.ProjectID(c), c.Param("user_id"), c.Param("device_id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "device not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get device", err)
		return
	}

	pref, err := h.store.GetDevicePreference(c, device.ID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get device preferences", err)
		return
	}

	view := models.DevicePreferenceView{
		DeviceIdentifier: device.Identifier,
		Platform:         device.Platform,
		Enabled:          true,
		Categories:       []string{},
	}
	if pref != nil {
		view.Enabled = pref.Enabled
		view.Categories = pref.Categories
	}
	respondSuccess(c, http.StatusOK, "device preferences retrieved", view)
}

// UpdateDevice upserts one device's preference.
func (h *PreferenceHandler) UpdateDevice(c *gin.Context) {
	var req models.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if err := req.Normalize(); err != nil {
		respondValidationError(c, err)
		return
	}

	device, err := h.store.GetDevice(c, middleware.ProjectID(c), c.Param("user_id"), c.Param("device_id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "device not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get device", err)
		return
	}

	pref := &models.DevicePreference{
		DeviceID:   device.ID,
		Enabled:    *req.Enabled,
		Categories: req.Categories,
	}
	if err := h.store.UpsertDevicePreference(c, pref); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update device preferences", err)
		return
	}
	respondSuccess(c, http.StatusOK, "device preferences updated", pref)
}
