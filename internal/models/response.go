package models

// ResponseEnvelope is the canonical response shape for the gateway.
type ResponseEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TargetResult is what the dispatch path hands back to the ingestion layer
// for each device it enqueued a job for: the device plus its immediate
// pending status, reported before asynchronous delivery completes.
type TargetResult struct {
	Device Device        `json:"device"`
	Status DeliveryState `json:"status"`
}

// PreferenceView is the API shape for user-level preferences, including the
// per-device breakdown.
type PreferenceView struct {
	Enabled    bool                   `json:"enabled"`
	Categories []string               `json:"categories"`
	Devices    []DevicePreferenceView `json:"devices,omitempty"`
}

// DevicePreferenceView is the API shape for one device's preference.
type DevicePreferenceView struct {
	DeviceIdentifier string   `json:"device_identifier"`
	Platform         Platform `json:"platform"`
	Enabled          bool     `json:"enabled"`
	Categories       []string `json:"categories"`
}
