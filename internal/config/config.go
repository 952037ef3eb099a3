package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	MongoURI      string
	MongoDatabase string
	RedisURL      string

	// Hosted auth provider (Casdoor)
	AuthEnabled         bool
	CasdoorEndpoint     string
	CasdoorClientID     string
	CasdoorClientSecret string
	CasdoorCertificate  string
	CasdoorOrganization string
	CasdoorApplication  string

	// Importer knobs
	ImportMaxUploadBytes int64
	ImportSessionTTL     time.Duration

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine; the real environment wins either way.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "campusdesk"),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),

		AuthEnabled:         getEnvBool("AUTH_ENABLED", false),
		CasdoorEndpoint:     getEnv("CASDOOR_ENDPOINT", ""),
		CasdoorClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
		CasdoorClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
		CasdoorCertificate:  getEnv("CASDOOR_CERTIFICATE", ""),
		CasdoorOrganization: getEnv("CASDOOR_ORGANIZATION", ""),
		CasdoorApplication:  getEnv("CASDOOR_APPLICATION", ""),

		ImportMaxUploadBytes: getEnvInt64("IMPORT_MAX_UPLOAD_BYTES", 5<<20),
		ImportSessionTTL:     getEnvDuration("IMPORT_SESSION_TTL", 30*time.Minute),

		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", true),
			Publisher:    getEnv("EVENTS_PUBLISHER", "mock"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			ImportTopic:  getEnv("IMPORT_EVENTS_TOPIC", "import-events"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a
// subsystem at first use.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}
	if c.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE must not be empty")
	}
	if c.ImportMaxUploadBytes <= 0 {
		return fmt.Errorf("IMPORT_MAX_UPLOAD_BYTES must be positive, got %d", c.ImportMaxUploadBytes)
	}
	if c.ImportSessionTTL <= 0 {
		return fmt.Errorf("IMPORT_SESSION_TTL must be positive, got %s", c.ImportSessionTTL)
	}
	if c.AuthEnabled {
		if c.CasdoorEndpoint == "" || c.CasdoorClientID == "" || c.CasdoorClientSecret == "" || c.CasdoorCertificate == "" {
			return fmt.Errorf("AUTH_ENABLED requires CASDOOR_ENDPOINT, CASDOOR_CLIENT_ID, CASDOOR_CLIENT_SECRET and CASDOOR_CERTIFICATE")
		}
	}
	if c.Events.Enabled && c.Events.Publisher == "kafka" && c.Events.KafkaBrokers == "" {
		return fmt.Errorf("kafka publisher requires KAFKA_BROKERS")
	}
	return nil
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
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
