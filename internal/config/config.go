package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for timeout and retry configuration.
const (
	DefaultTokenPath       = "calendar_token.json"
	DefaultCredentialsPath = "credentials.json"
	DefaultCalendarID      = "primary"
	DefaultAuthTimeout     = 15 * time.Second
	DefaultAPITimeout      = 10 * time.Second
	DefaultMaxRetries      = 3
	DefaultRetryDelay      = 1 * time.Second
	DefaultDispatchWorkers = 4
	DefaultMetricsAddr     = ":9090"
)

// Config holds all environment-driven settings for voicecal.
type Config struct {
	// TokenPath is where the OAuth credential is persisted as JSON.
	TokenPath string

	// CredentialsPath points to the Google client secret file.
	CredentialsPath string

	// CalendarID selects the calendar all operations run against.
	CalendarID string

	// AttendeeEmail, when set, is added as an attendee on created events.
	AttendeeEmail string

	// AuthTimeout bounds the interactive authorization flow.
	AuthTimeout time.Duration

	// APITimeout bounds each individual Calendar API call.
	APITimeout time.Duration

	// MaxRetries bounds authentication attempts before giving up.
	MaxRetries int

	// RetryDelay is the fixed delay between authentication attempts.
	RetryDelay time.Duration

	// DispatchWorkers bounds concurrent outbound API calls.
	DispatchWorkers int

	LogLevel slog.Level

	MetricsEnabled bool
	MetricsAddr    string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		TokenPath:       getEnv("TOKEN_PATH", DefaultTokenPath),
		CredentialsPath: getEnv("CREDENTIALS_PATH", DefaultCredentialsPath),
		CalendarID:      getEnv("CALENDAR_ID", DefaultCalendarID),
		AttendeeEmail:   getEnv("GOOGLE_CALENDAR_EMAIL", ""),
		AuthTimeout:     getEnvSeconds("CALENDAR_AUTH_TIMEOUT", DefaultAuthTimeout),
		APITimeout:      getEnvSeconds("CALENDAR_API_TIMEOUT", DefaultAPITimeout),
		MaxRetries:      getEnvInt("CALENDAR_MAX_RETRIES", DefaultMaxRetries),
		RetryDelay:      getEnvSeconds("CALENDAR_RETRY_DELAY", DefaultRetryDelay),
		DispatchWorkers: getEnvInt("DISPATCH_WORKERS", DefaultDispatchWorkers),
		LogLevel:        getEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		MetricsEnabled:  getEnv("METRICS_ENABLED", "true") != "false",
		MetricsAddr:     getEnv("METRICS_ADDR", DefaultMetricsAddr),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

// getEnvSeconds parses a duration given as a number of seconds. Fractional
// values are accepted (e.g. CALENDAR_RETRY_DELAY=0.5).
func getEnvSeconds(key string, defaultVal time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs * float64(time.Second))
}

func getEnvLogLevel(key string, defaultVal slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return defaultVal
	}
	return level
}
