package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("IMPORT_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("IMPORT_SESSION_TTL", "10m")
	t.Setenv("EVENTS_PUBLISHER", "kafka")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.ImportMaxUploadBytes != 1<<20 {
		t.Errorf("Expected upload cap %d, got %d", 1<<20, cfg.ImportMaxUploadBytes)
	}
	if cfg.ImportSessionTTL != 10*time.Minute {
		t.Errorf("Expected session TTL 10m, got %s", cfg.ImportSessionTTL)
	}
	if cfg.Events.Publisher != "kafka" {
		t.Errorf("Expected kafka publisher, got %s", cfg.Events.Publisher)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			MongoURI:             "mongodb://localhost:27017",
			MongoDatabase:        "campusdesk",
			ImportMaxUploadBytes: 1024,
			ImportSessionTTL:     time.Minute,
		}
	}

	t.Run("accepts a minimal config", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects a zero upload cap", func(t *testing.T) {
		cfg := base()
		cfg.ImportMaxUploadBytes = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected an error for a zero upload cap")
		}
	})

	t.Run("rejects a missing database name", func(t *testing.T) {
		cfg := base()
		cfg.MongoDatabase = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Expected an error for a missing database name")
		}
	})

	t.Run("auth requires the casdoor settings", func(t *testing.T) {
		cfg := base()
		cfg.AuthEnabled = true
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Expected an error when auth is enabled without casdoor settings")
		}
		if !strings.Contains(err.Error(), "CASDOOR") {
			t.Errorf("Expected the error to name the casdoor settings, got %v", err)
		}
	})

	t.Run("kafka publisher requires brokers", func(t *testing.T) {
		cfg := base()
		cfg.Events = EventConfig{Enabled: true, Publisher: "kafka"}
		if err := cfg.Validate(); err == nil {
			t.Error("Expected an error for kafka without brokers")
		}
	})
}

func TestGetKafkaBrokers(t *testing.T) {
	c := EventConfig{KafkaBrokers: "kafka-1:9092, kafka-2:9092 ,"}

	brokers := c.GetKafkaBrokers()
	if len(brokers) != 2 {
		t.Fatalf("Expected 2 brokers, got %d: %v", len(brokers), brokers)
	}
	if brokers[0] != "kafka-1:9092" {
		t.Errorf("Expected first broker kafka-1:9092, got %s", brokers[0])
	}
	if brokers[1] != "kafka-2:9092" {
		t.Errorf("Expected second broker kafka-2:9092, got %s", brokers[1])
	}
}
