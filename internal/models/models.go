package models

import "time"

// Platform identifies the push platform a device belongs to. The set is
// closed; each platform has exactly one delivery adapter.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// DeliveryState is the lifecycle state of one (message, device) delivery.
// A job starts pending and makes exactly one transition to a terminal state.
type DeliveryState string

const (
	StatePending   DeliveryState = "pending"
	StateDelivered DeliveryState = "delivered"
	StateFailed    DeliveryState = "failed"
	StateInvalid   DeliveryState = "invalid"
	StateError     DeliveryState = "error"
)

// Terminal reports whether s admits no further transitions.
func (s DeliveryState) Terminal() bool {
	return s != StatePending && s != ""
}

// Project is one tenant of the gateway. The sensitive credential fields
// (FCMCredentialsJSON, APNSPrivateKey, VAPIDPrivateKey) are stored
// Fernet-encrypted; everything else is plaintext.
type Project struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	APIKey    string    `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	APNSKeyID      string `json:"apns_key_id,omitempty"`
	APNSTeamID     string `json:"apns_team_id,omitempty"`
	APNSBundleID   string `json:"apns_bundle_id,omitempty"`
	APNSPrivateKey string `json:"-"`

	FCMCredentialsJSON string `json:"-"`

	VAPIDPublicKey  string `json:"vapid_public_key,omitempty"`
	VAPIDPrivateKey string `json:"-"`
	VAPIDSubject    string `json:"vapid_subject,omitempty"`
}

// Device is one registered push endpoint. (ProjectID, Platform, Token) is
// unique: re-registering the same token updates the row instead of creating
// a duplicate. For web devices Token holds the serialized subscription JSON.
type Device struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  string    `gorm:"index;not null;uniqueIndex:idx_devices_identity" json:"project_id"`
	UserID     string    `gorm:"index" json:"user_id,omitempty"`
	Identifier string    `gorm:"index" json:"device_id,omitempty"`
	Platform   Platform  `gorm:"not null;uniqueIndex:idx_devices_identity" json:"platform"`
	Token      string    `gorm:"not null;uniqueIndex:idx_devices_identity" json:"token"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Message is one notification intent. Immutable once created.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID string    `gorm:"index;not null" json:"project_id"`
	UserID    string    `gorm:"index" json:"user_id,omitempty"`
	Platform  Platform  `json:"platform,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"not null" json:"body"`
	Category  string    `json:"category,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	ActionURL string    `json:"action_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Preference is a user-level opt-in record. An absent row means
// enabled=true with all categories allowed; an empty category list likewise
// allows every category.
type Preference struct {
	ProjectID  string    `gorm:"primaryKey" json:"project_id"`
	UserID     string    `gorm:"primaryKey" json:"user_id"`
	Enabled    bool      `gorm:"not null;default:true" json:"enabled"`
	Categories []string  `gorm:"serializer:json" json:"categories"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DevicePreference narrows a user preference to one device. Same default
// semantics as Preference.
type DevicePreference struct {
	DeviceID   uint      `gorm:"primaryKey" json:"device_id"`
	Enabled    bool      `gorm:"not null;default:true" json:"enabled"`
	Categories []string  `gorm:"serializer:json" json:"categories"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DeliveryStatus is the durable outcome record for one (message, device)
// pair. Status only moves forward: once terminal it is never overwritten.
type DeliveryStatus struct {
	MessageID uint          `gorm:"primaryKey" json:"message_id"`
	DeviceID  uint          `gorm:"primaryKey" json:"device_id"`
	Status    DeliveryState `gorm:"not null" json:"status"`
	Detail    string        `json:"detail,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}
