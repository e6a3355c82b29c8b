package models

import "errors"

// RegisterDeviceRequest is the body for device registration.
type RegisterDeviceRequest struct {
	Platform Platform `json:"platform" binding:"required,oneof=ios android web"`
	Token    string   `json:"token" binding:"required"`
}

// SendMessageRequest is the body for message submission. The optional
// targeting fields are ANDed together when resolving devices.
type SendMessageRequest struct {
	RequestID string   `json:"request_id"`
	UserID    string   `json:"user_id"`
	Platform  Platform `json:"platform" binding:"omitempty,oneof=ios android web"`
	DeviceID  string   `json:"device_id"`
	Title     string   `json:"title" binding:"required"`
	Body      string   `json:"body" binding:"required"`
	Category  string   `json:"category"`
	Icon      string   `json:"icon"`
	ActionURL string   `json:"action_url"`
}

// UpdatePreferenceRequest is the body for both user- and device-level
// preference updates. A nil Enabled is rejected; a nil category list keeps
// the allow-all default.
type UpdatePreferenceRequest struct {
	Enabled    *bool    `json:"enabled"`
	Categories []string `json:"categories"`
}

// Normalize validates the parts gin binding cannot express.
func (r *UpdatePreferenceRequest) Normalize() error {
	if r.Enabled == nil {
		return errors.New("enabled is required")
	}
	return nil
}

// CreateProjectRequest is the admin body for creating a tenant.
type CreateProjectRequest struct {
	ID   string `json:"id" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// UpdateCredentialsRequest carries per-platform credential updates. Absent
// fields are left untouched.
type UpdateCredentialsRequest struct {
	APNSKeyID          *string `json:"apns_key_id"`
	APNSTeamID         *string `json:"apns_team_id"`
	APNSBundleID       *string `json:"apns_bundle_id"`
	APNSPrivateKey     *string `json:"apns_private_key"`
	FCMCredentialsJSON *string `json:"fcm_credentials_json"`
	VAPIDPublicKey     *string `json:"vapid_public_key"`
	VAPIDPrivateKey    *string `json:"vapid_private_key"`
	VAPIDSubject       *string `json:"vapid_subject"`
}

// Empty reports whether no credential field was provided.
func (r *UpdateCredentialsRequest) Empty() bool {
	return r.APNSKeyID == nil && r.APNSTeamID == nil && r.APNSBundleID == nil &&
		r.APNSPrivateKey == nil && r.FCMCredentialsJSON == nil &&
		r.VAPIDPublicKey == nil && r.VAPIDPrivateKey == nil && r.VAPIDSubject == nil
}
