package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("CALENDLY_TOLERANCE", "")
	t.Setenv("APP_TIMEZONE", "")
}

func TestLoadSettingsDefaults(t *testing.T) {
	setBaseEnv(t)

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, DefaultMaxUploadBytes, s.MaxUploadBytes)
	assert.Equal(t, 3*time.Minute, s.CalendlyTolerance)
	assert.Equal(t, time.UTC, s.Location)
	assert.Equal(t, "materials", s.MaterialsBucket)
}

func TestLoadSettingsOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("CALENDLY_TOLERANCE", "5m")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, int64(2048), s.MaxUploadBytes)
	assert.Equal(t, 5*time.Minute, s.CalendlyTolerance)
	assert.Equal(t, "Europe/Berlin", s.Location.String())
}

func TestLoadSettingsRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"upload limit": {"MAX_UPLOAD_BYTES", "-1"},
		"tolerance":    {"CALENDLY_TOLERANCE", "soon"},
		"timezone":     {"APP_TIMEZONE", "Mars/Olympus"},
		"driver":       {"STORE_DRIVER", "mongo"},
		"secret":       {"SUPABASE_JWT_SECRET", ""},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := LoadSettings()
			assert.Error(t, err)
		})
	}
}

func TestLoadSettingsSupabaseRequiresURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", DriverSupabase)
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_KEY", "")

	_, err := LoadSettings()
	assert.Error(t, err)
}
