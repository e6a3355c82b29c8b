package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hardcorebadger/push-api/internal/models"
)

func userPref(enabled bool) *models.Preference {
	return &models.Preference{Enabled: enabled}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name       string
		userPref   *models.Preference
		devicePref *models.DevicePreference
		category   string
		want       bool
	}{
		{
			name: "no preferences on file defaults to eligible",
			want: true,
		},
		{
			name:     "disabled user blocks every device",
			userPref: userPref(false),
			devicePref: &models.DevicePreference{
				Enabled:    true,
				Categories: []string{"news"},
			},
			category: "news",
			want:     false,
		},
		{
			name:       "disabled device blocks even with user enabled",
			userPref:   userPref(true),
			devicePref: &models.DevicePreference{Enabled: false},
			want:       false,
		},
		{
			name: "category missing from device allow-list",
			userPref: &models.Preference{
				Enabled:    true,
				Categories: []string{"news", "promo"},
			},
			devicePref: &models.DevicePreference{
				Enabled:    true,
				Categories: []string{"promo"},
			},
			category: "news",
			want:     false,
		},
		{
			name: "category in both allow-lists",
			userPref: &models.Preference{
				Enabled:    true,
				Categories: []string{"news"},
			},
			devicePref: &models.DevicePreference{
				Enabled:    true,
				Categories: []string{"news", "promo"},
			},
			category: "news",
			want:     true,
		},
		{
			name: "empty allow-list means all categories",
			userPref: &models.Preference{
				Enabled:    true,
				Categories: []string{},
			},
			devicePref: &models.DevicePreference{Enabled: true},
			category:   "anything",
			want:       true,
		},
		{
			name: "category-less message bypasses category filtering",
			userPref: &models.Preference{
				Enabled:    true,
				Categories: []string{"promo"},
			},
			devicePref: &models.DevicePreference{
				Enabled:    true,
				Categories: []string{"news"},
			},
			category: "",
			want:     true,
		},
		{
			name:     "category missing from user allow-list",
			userPref: &models.Preference{Enabled: true, Categories: []string{"promo"}},
			category: "news",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(tt.userPref, tt.devicePref, tt.category))
		})
	}
}
