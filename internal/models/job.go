package models

import "time"

// APNSCredentials is the credential subset carried by iOS jobs.
type APNSCredentials struct {
	KeyID      string `json:"key_id"`
	TeamID     string `json:"team_id"`
	BundleID   string `json:"bundle_id"`
	PrivateKey string `json:"private_key"`
}

// FCMCredentials is the credential subset carried by Android jobs.
type FCMCredentials struct {
	CredentialsJSON string `json:"credentials_json"`
}

// VAPIDCredentials is the credential subset carried by web jobs.
type VAPIDCredentials struct {
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	Subject    string `json:"subject"`
}

// JobCredentials holds exactly one platform's credential subset; the fields
// for the other platforms stay nil and are omitted from the wire form.
type JobCredentials struct {
	APNS  *APNSCredentials  `json:"apns,omitempty"`
	FCM   *FCMCredentials   `json:"fcm,omitempty"`
	VAPID *VAPIDCredentials `json:"vapid,omitempty"`
}

// DeliveryJob is the ephemeral unit of work for one device. It lives only in
// memory and on the dispatch queue, never in a table of its own.
type DeliveryJob struct {
	ProjectID   string         `json:"project_id"`
	MessageID   uint           `json:"message_id"`
	DeviceID    uint           `json:"device_id"`
	Platform    Platform       `json:"platform"`
	Token       string         `json:"token"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Category    string         `json:"category,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	ActionURL   string         `json:"action_url,omitempty"`
	Credentials JobCredentials `json:"credentials"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
}
