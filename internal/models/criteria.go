package models

// TargetCriteria constrains which devices a message fans out to. All set
// fields are ANDed; the zero value matches every device in the project.
type TargetCriteria struct {
	UserID   string
	Platform Platform
	DeviceID string
}

// CriteriaFromMessage derives the targeting constraints from a stored
// message's addressing fields.
func CriteriaFromMessage(m *Message) TargetCriteria {
	return TargetCriteria{
		UserID:   m.UserID,
		Platform: m.Platform,
		DeviceID: m.DeviceID,
	}
}
