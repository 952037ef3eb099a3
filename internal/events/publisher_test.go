package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/campusdesk/import-service/internal/models"
)

func TestWireMessage(t *testing.T) {
	summary := &models.ImportSummary{
		SessionID:  "sess-1",
		Entity:     models.EntityQuestions,
		FileName:   "questions.csv",
		TotalRows:  3,
		ValidItems: 2,
		ErrorCount: 1,
	}
	event := NewImportSessionCreatedEvent(summary, "faculty-1")

	msg, err := wireMessage(event)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if msg.UUID != event.ID {
		t.Errorf("Expected message UUID %s, got %s", event.ID, msg.UUID)
	}
	if got := msg.Metadata.Get("event_type"); got != string(EventImportSessionCreated) {
		t.Errorf("Expected event_type %s, got %s", EventImportSessionCreated, got)
	}
	if got := msg.Metadata.Get("session_id"); got != "sess-1" {
		t.Errorf("Expected session_id sess-1, got %s", got)
	}

	var decoded ImportEvent
	if err := json.Unmarshal(msg.Payload, &decoded); err != nil {
		t.Fatalf("Expected a decodable payload, got %v", err)
	}
	if decoded.SessionID != "sess-1" {
		t.Errorf("Expected decoded session sess-1, got %s", decoded.SessionID)
	}
}

func TestSessionPartitionKey(t *testing.T) {
	t.Run("keys by session", func(t *testing.T) {
		msg := message.NewMessage("evt-1", nil)
		msg.Metadata.Set("session_id", "sess-7")

		key, err := sessionPartitionKey("lms.imports", msg)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if key != "sess-7" {
			t.Errorf("Expected partition key sess-7, got %s", key)
		}
	})

	t.Run("falls back to the message UUID", func(t *testing.T) {
		msg := message.NewMessage("evt-2", nil)

		key, err := sessionPartitionKey("lms.imports", msg)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if key != "evt-2" {
			t.Errorf("Expected partition key evt-2, got %s", key)
		}
	})
}

// Integration test (requires a running Kafka broker)
func TestKafkaEventPublisher_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	publisher, err := NewKafkaEventPublisher(PublisherConfig{
		KafkaBrokers: strings.Split(brokers, ","),
		TopicName:    "import-events-integration",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	defer publisher.Close()

	summary := &models.ImportSummary{
		SessionID:  "sess-integration",
		Entity:     models.EntityQuestions,
		FileName:   "questions.csv",
		TotalRows:  1,
		ValidItems: 1,
	}
	event := NewImportSessionCreatedEvent(summary, "faculty-1")
	if err := publisher.PublishImportEvent(context.Background(), event); err != nil {
		t.Fatalf("Failed to publish event: %v", err)
	}
}
