package dispatch

import "github.com/hardcorebadger/push-api/internal/models"

// Eligible decides whether a message may be delivered to one device.
// A nil preference (no row on file) defaults to enabled with every category
// allowed, and an empty category list likewise allows all categories. A
// message without a category bypasses category filtering entirely. The
// device is eligible only when both the user-level and device-level
// preference admit the message.
func Eligible(userPref *models.Preference, devicePref *models.DevicePreference, category string) bool {
	if userPref != nil {
		if !userPref.Enabled {
			return false
		}
		if !allowsCategory(userPref.Categories, category) {
			return false
		}
	}
	if devicePref != nil {
		if !devicePref.Enabled {
			return false
		}
		if !allowsCategory(devicePref.Categories, category) {
			return false
		}
	}
	return true
}

func allowsCategory(allowed []string, category string) bool {
	if category == "" || len(allowed) == 0 {
		return true
	}
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}
