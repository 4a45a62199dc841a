package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSupabase = "supabase"
	DriverMemory   = "memory"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port        string
	StoreDriver string

	SupabaseURL        string
	SupabaseKey        string
	SupabaseServiceKey string
	JWTSecret          string
	MaterialsBucket    string
	MaxUploadBytes     int64

	CalendlySigningKey string
	CalendlyTolerance  time.Duration

	// Location anchors "today" when template deadlines are resolved.
	Location *time.Location

	LogLevel   string
	CORSOrigin string
}

// Load environment variables and handle errors

func LoadEnv() {
	err := godotenv.Load()

	if err != nil {
		Logger.Warn("Error loading .env file, will use environment variables instead:", err)
		// Don't call Fatal here - continue execution
	}
}

// LoadSettings reads Settings from the environment, applying defaults.
func LoadSettings() (Settings, error) {
	s := Settings{
		Port:               getenv("PORT", "8080"),
		StoreDriver:        getenv("STORE_DRIVER", DriverSupabase),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseKey:        os.Getenv("SUPABASE_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		JWTSecret:          os.Getenv("SUPABASE_JWT_SECRET"),
		MaterialsBucket:    getenv("MATERIALS_BUCKET", "materials"),
		MaxUploadBytes:     DefaultMaxUploadBytes,
		CalendlySigningKey: os.Getenv("CALENDLY_SIGNING_KEY"),
		CalendlyTolerance:  3 * time.Minute,
		Location:           time.UTC,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		CORSOrigin:         getenv("CORS_ORIGIN", "*"),
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return s, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		s.MaxUploadBytes = n
	}

	if v := os.Getenv("CALENDLY_TOLERANCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("invalid CALENDLY_TOLERANCE %q: %w", v, err)
		}
		s.CalendlyTolerance = d
	}

	if v := os.Getenv("APP_TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return s, fmt.Errorf("invalid APP_TIMEZONE %q: %w", v, err)
		}
		s.Location = loc
	}

	switch s.StoreDriver {
	case DriverSupabase:
		if s.SupabaseURL == "" || s.SupabaseKey == "" {
			return s, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
		}
		if s.JWTSecret == "" {
			return s, fmt.Errorf("SUPABASE_JWT_SECRET is missing")
		}
	case DriverMemory:
		if s.JWTSecret == "" {
			return s, fmt.Errorf("SUPABASE_JWT_SECRET is missing")
		}
	default:
		return s, fmt.Errorf("unknown STORE_DRIVER %q", s.StoreDriver)
	}

	return s, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
