package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/feiralabs/feira/pkg/jwtx"
)

type Config struct {
	Issuer        string // Optional: issuer claim for tokens (default: feira-identity)
	AccessSecret  string // HMAC secret for access tokens (dev fallback outside prod, required in prod)
	RefreshSecret string // HMAC secret for refresh tokens, must differ from AccessSecret

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string // Optional: path to SQLite database file (default: ./identity.db)

	SeedAdminEmail    string // Optional: email for the bootstrap admin account
	SeedAdminPassword string // Optional: password for the bootstrap admin account

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	SessionRetention     time.Duration // How long expired refresh sessions are kept (default: 30 days)
}

// Fallback signing secrets for local development. Validate refuses them
// when ENV is prod, so a production deployment must supply its own.
const (
	DevAccessSecret  = "dev-access-secret-insecure"
	DevRefreshSecret = "dev-refresh-secret-insecure"
)

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	accessSecret := os.Getenv("IDENTITY_ACCESS_SECRET")
	refreshSecret := os.Getenv("IDENTITY_REFRESH_SECRET")
	if env != "prod" {
		if accessSecret == "" {
			accessSecret = DevAccessSecret
		}
		if refreshSecret == "" {
			refreshSecret = DevRefreshSecret
		}
	}

	return Config{
		Issuer:        getEnvOrDefault("IDENTITY_ISSUER", "feira-identity"),
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,

		AccessTTL:  getEnvDurationOrDefault("IDENTITY_ACCESS_TTL", jwtx.DefaultAccessTTL),
		RefreshTTL: getEnvDurationOrDefault("IDENTITY_REFRESH_TTL", jwtx.DefaultRefreshTTL),

		DatabaseFile: getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),

		SeedAdminEmail:    getEnvOrDefault("SEED_ADMIN_EMAIL", "admin@marketplace.com"),
		SeedAdminPassword: getEnvOrDefault("SEED_ADMIN_PASSWORD", "admin123"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SessionRetention:     getEnvDurationOrDefault("SESSION_RETENTION", 30*24*time.Hour),
	}
}

// Validate rejects configurations the service must not start with. The
// built-in development secrets never pass in prod, and sharing one secret
// across both token kinds would let a refresh token pass as an access token.
func (cfg Config) Validate() error {
	if cfg.AccessSecret == "" {
		return errors.New("IDENTITY_ACCESS_SECRET is required")
	}
	if cfg.RefreshSecret == "" {
		return errors.New("IDENTITY_REFRESH_SECRET is required")
	}
	if cfg.Env == "prod" && (cfg.AccessSecret == DevAccessSecret || cfg.RefreshSecret == DevRefreshSecret) {
		return errors.New("built-in development signing secrets cannot be used when ENV=prod")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return errors.New("IDENTITY_ACCESS_SECRET and IDENTITY_REFRESH_SECRET must differ")
	}
	return nil
}

// UsingDevSecrets reports whether either signing secret is a built-in
// development fallback.
func (cfg Config) UsingDevSecrets() bool {
	return cfg.AccessSecret == DevAccessSecret || cfg.RefreshSecret == DevRefreshSecret
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
