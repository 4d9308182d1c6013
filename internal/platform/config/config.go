package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server captures console process configuration.
type Server struct {
	Addr            string
	Environment     string
	UpstreamBaseURL string

	// AdminTokenHash is the bcrypt hash of the shared console admin token.
	// The plaintext token is exchanged for a short-lived session JWT.
	AdminTokenHash string
	JWTSigningKey  string
	SessionTTL     time.Duration

	// FilterDebounce is the quiet period applied to organization filter input.
	FilterDebounce time.Duration

	// OrganizationPageSize is the page size requested from the identity API.
	OrganizationPageSize int

	// AvailabilityCacheEntries bounds the memoized availability result cache.
	AvailabilityCacheEntries int64
}

// Defaults kept as variables so tests can restore them after overriding.
var (
	DefaultSessionTTL     = 30 * time.Minute
	DefaultFilterDebounce = 100 * time.Millisecond
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:                     getEnv("CONSOLE_ADDR", ":8080"),
		Environment:              getEnv("CONSOLE_ENV", "development"),
		UpstreamBaseURL:          getEnv("IDENTITY_API_URL", "http://localhost:9443"),
		AdminTokenHash:           os.Getenv("CONSOLE_ADMIN_TOKEN_HASH"),
		JWTSigningKey:            getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		SessionTTL:               getDuration("SESSION_TTL", DefaultSessionTTL),
		FilterDebounce:           getDuration("FILTER_DEBOUNCE", DefaultFilterDebounce),
		OrganizationPageSize:     getInt("ORGANIZATION_PAGE_SIZE", 10),
		AvailabilityCacheEntries: int64(getInt("AVAILABILITY_CACHE_ENTRIES", 1024)),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
