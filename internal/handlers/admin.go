package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hardcorebadger/push-api/internal/models"
	"github.com/hardcorebadger/push-api/internal/repository"
	"github.com/hardcorebadger/push-api/internal/vault"
)

// AdminHandler handles project provisioning and credential management.
type AdminHandler struct {
	store *repository.Store
	vault *vault.Vault
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store *repository.Store, v *vault.Vault) *AdminHandler {
	return &AdminHandler{store: store, vault: v}
}

// CreateProject provisions a tenant with a freshly generated API key. The
// key is returned exactly once, in this response.
func (h *AdminHandler) CreateProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if _, err := h.store.GetProject(c, req.ID); err == nil {
		respondError(c, http.StatusConflict, "project with this id already exists", nil)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusInternalServerError, "failed to check project", err)
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate API key", err)
		return
	}

	project := &models.Project{
		ID:     req.ID,
		Name:   req.Name,
		APIKey: apiKey,
	}
	if err := h.store.CreateProject(c, project); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to create project", err)
		return
	}

	respondSuccess(c, http.StatusCreated, "project created", gin.H{
		"id":      project.ID,
		"name":    project.Name,
		"api_key": project.APIKey,
	})
}

// GetCredentials reports which credential fields a project has configured.
// Sensitive values stay encrypted; only their presence is reported.
func (h *AdminHandler) GetCredentials(c *gin.Context) {
	project, err := h.store.GetProject(c, c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "project not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to get project", err)
		return
	}

	respondSuccess(c, http.StatusOK, "credentials retrieved", gin.H{
		"id":                   project.ID,
		"name":                 project.Name,
		"apns_key_id":          project.APNSKeyID,
		"apns_team_id":         project.APNSTeamID,
		"apns_bundle_id":       project.APNSBundleID,
		"apns_private_key":     project.APNSPrivateKey != "",
		"fcm_credentials_json": project.FCMCredentialsJSON != "",
		"vapid_public_key":     project.VAPIDPublicKey,
		"vapid_subject":        project.VAPIDSubject,
		"vapid_private_key":    project.VAPIDPrivateKey != "",
	})
}

// SetCredentials applies a partial credential update, encrypting the
// sensitive fields before they reach storage.
func (h *AdminHandler) SetCredentials(c *gin.Context) {
	var req models.UpdateCredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}
	if req.Empty() {
		respondError(c, http.StatusBadRequest, "no valid credential fields provided", nil)
		return
	}

	updates := map[string]interface{}{}
	setPlain := func(column string, value *string) {
		if value != nil {
			updates[column] = *value
		}
	}
	setEncrypted := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		if *value == "" {
			updates[column] = ""
			return nil
		}
		encrypted, err := h.vault.Encrypt(*value)
		if err != nil {
			return err
		}
		updates[column] = encrypted
		return nil
	}

	setPlain("apns_key_id", req.APNSKeyID)
	setPlain("apns_team_id", req.APNSTeamID)
	setPlain("apns_bundle_id", req.APNSBundleID)
	setPlain("vapid_public_key", req.VAPIDPublicKey)
	setPlain("vapid_subject", req.VAPIDSubject)
	for column, value := range map[string]*string{
		"apns_private_key":     req.APNSPrivateKey,
		"fcm_credentials_json": req.FCMCredentialsJSON,
		"vapid_private_key":    req.VAPIDPrivateKey,
	} {
		if err := setEncrypted(column, value); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to encrypt credentials", err)
			return
		}
	}

	err := h.store.UpdateProjectCredentials(c, c.Param("id"), updates)
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "project not found", nil)
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to update credentials", err)
		return
	}

	updated := make([]string, 0, len(updates))
	for column := range updates {
		if column != "updated_at" {
			updated = append(updated, column)
		}
	}
	respondSuccess(c, http.StatusOK, "credentials updated", gin.H{
		"updated_fields": updated,
	})
}

func generateAPIKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
