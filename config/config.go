package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported email providers
const (
	EmailProviderResend   = "resend"
	EmailProviderSendGrid = "sendgrid"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	AppURL      string
	// Remote database (Turso / libsql). When set, DBPath is ignored.
	TursoDatabaseURL string
	TursoAuthToken   string
	// Email
	EmailProvider  string
	ResendAPIKey   string
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	EmailTestMode  bool // When true, emails are logged instead of sent
	// Localization
	DefaultLocale string
	// Auto-reply
	AutoReplyEnabled       bool
	AutoReplyRulesPath     string // Optional YAML override of the embedded rule table
	AutoReplyUpcomingLimit int
	AutoReplyDocumentLimit int
	EmergencyContactPhone  string
	// Background jobs
	NotificationRetryEnabled     bool
	NotificationRetryMaxAttempts int
	NotificationRetrySchedule    string
	HearingReminderSchedule      string
	// Rate limiting (messages per participant per minute)
	MessageRateLimit int
	AllowedOrigins   []string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:                   getEnv("SERVER_PORT", "8080"),
		DBPath:                       getEnv("DB_PATH", "db/app.db"),
		Environment:                  getEnv("ENVIRONMENT", "development"),
		AppURL:                       strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		TursoDatabaseURL:             getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:               getEnv("TURSO_AUTH_TOKEN", ""),
		EmailProvider:                strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderResend)),
		ResendAPIKey:                 getEnv("RESEND_API_KEY", ""),
		SendGridAPIKey:               getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:                    getEnv("EMAIL_FROM", "noreply@lexdesk.app"),
		EmailFromName:                getEnv("EMAIL_FROM_NAME", "LexDesk"),
		EmailTestMode:                getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		DefaultLocale:                getEnv("DEFAULT_LOCALE", "en"),
		AutoReplyEnabled:             getEnvBool("AUTO_REPLY_ENABLED", true),
		AutoReplyRulesPath:           getEnv("AUTO_REPLY_RULES_PATH", ""),
		AutoReplyUpcomingLimit:       getEnvInt("AUTO_REPLY_UPCOMING_LIMIT", 3),
		AutoReplyDocumentLimit:       getEnvInt("AUTO_REPLY_DOCUMENT_LIMIT", 5),
		EmergencyContactPhone:        getEnv("EMERGENCY_CONTACT_PHONE", ""),
		NotificationRetryEnabled:     getEnvBool("NOTIFICATION_RETRY_ENABLED", false),
		NotificationRetryMaxAttempts: getEnvInt("NOTIFICATION_RETRY_MAX_ATTEMPTS", 3),
		NotificationRetrySchedule:    getEnv("NOTIFICATION_RETRY_SCHEDULE", "*/10 * * * *"),
		HearingReminderSchedule:      getEnv("HEARING_REMINDER_SCHEDULE", "0 * * * *"),
		MessageRateLimit:             getEnvInt("MESSAGE_RATE_LIMIT", 30),
		AllowedOrigins:               strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
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
	if err != nil || n < 0 {
		log.Printf("[WARNING] Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
