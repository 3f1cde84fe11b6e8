package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"complaint_desk_go/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
)

// Database drivers understood by db.Initialize
const (
	DBDriverSQLite   = "sqlite"
	DBDriverLibSQL   = "libsql"
	DBDriverPostgres = "postgres"
)

type Config struct {
	ServerPort  string
	Environment string
	// Database
	DBDriver         string
	DBPath           string
	DatabaseURL      string
	TursoDatabaseURL string
	TursoAuthToken   string
	// Auth
	SessionSecret string
	TokenTTLHours int
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Realtime fan-out
	RedisURL string
	// Logging
	LogLevel  string
	LogFormat string
	// Other
	AllowedOrigins []string
	AppURL         string
}

func Load() (*Config, error) {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		logger.Log.Info("no .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")

	if err := ValidateSessionSecret(sessionSecret, environment); err != nil {
		return nil, err
	}

	// In development, generate a secure secret if none provided
	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		logger.Log.Info("generated temporary session secret for development, set SESSION_SECRET for persistence")
	}

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Environment:      environment,
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", DBDriverSQLite)),
		DBPath:           getEnv("DB_PATH", "db/app.db"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TursoDatabaseURL: getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:   getEnv("TURSO_AUTH_TOKEN", ""),
		SessionSecret:    sessionSecret,
		TokenTTLHours:    getEnvInt("TOKEN_TTL_HOURS", 72),
		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		EmailFrom:        getEnv("EMAIL_FROM", "noreply@complaintdesk.local"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Complaint Desk"),
		EmailTestMode:    getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		RedisURL:         getEnv("REDIS_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		AllowedOrigins:   strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:           getEnv("APP_URL", "http://localhost:8080"),
	}

	switch cfg.DBDriver {
	case DBDriverSQLite, DBDriverLibSQL, DBDriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (expected sqlite, libsql or postgres)", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		logger.Log.Warn("invalid integer env value, using default",
			zap.String("key", key), zap.String("value", value), zap.Int("default", defaultValue))
		return defaultValue
	}
	return n
}

// ValidateSessionSecret validates the session secret meets security requirements.
// In production, it must be at least 32 bytes and not a known insecure default.
func ValidateSessionSecret(secret string, environment string) error {
	// Known insecure defaults that must be rejected
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				return fmt.Errorf("SESSION_SECRET is set to an insecure default value, generate one with: openssl rand -base64 32")
			}
			logger.Log.Warn("SESSION_SECRET is set to an insecure default value, acceptable only in development")
			return nil
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters in production (current: %d)", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret.
// Used only for development when no secret is provided.
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		logger.Log.Warn("failed to generate secure secret", zap.Error(err))
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
