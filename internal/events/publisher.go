package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventPublisher defines the interface for publishing import lifecycle events
type EventPublisher interface {
	PublishImportEvent(ctx context.Context, event *ImportEvent) error
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Watermill with Kafka
type KafkaEventPublisher struct {
	publisher message.Publisher
	logger    *slog.Logger
	topicName string
}

// PublisherConfig holds configuration for the event publisher
type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

// NewKafkaEventPublisher creates a Kafka-based event publisher using
// Watermill. Messages are keyed by session so a session's lifecycle
// lands on one partition and is consumed in publish order.
func NewKafkaEventPublisher(config PublisherConfig) (*KafkaEventPublisher, error) {
	logger := watermill.NewSlogLogger(config.Logger)

	publisherConfig := kafka.PublisherConfig{
		Brokers:   config.KafkaBrokers,
		Marshaler: kafka.NewWithPartitioningMarshaler(sessionPartitionKey),
	}

	publisher, err := kafka.NewPublisher(publisherConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}

	return &KafkaEventPublisher{
		publisher: publisher,
		logger:    config.Logger,
		topicName: config.TopicName,
	}, nil
}

func sessionPartitionKey(topic string, msg *message.Message) (string, error) {
	if key := msg.Metadata.Get("session_id"); key != "" {
		return key, nil
	}
	return msg.UUID, nil
}

// PublishImportEvent publishes an import lifecycle event to Kafka
func (p *KafkaEventPublisher) PublishImportEvent(ctx context.Context, event *ImportEvent) error {
	msg, err := wireMessage(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("Failed to publish import event",
			"event_id", event.ID,
			"event_type", event.Type,
			"session_id", event.SessionID,
			"error", err)
		return fmt.Errorf("failed to publish import event: %w", err)
	}

	p.logger.Info("Published import event",
		"event_id", event.ID,
		"event_type", event.Type,
		"session_id", event.SessionID,
		"topic", p.topicName)

	return nil
}

// wireMessage marshals an event into a Watermill message carrying the
// metadata headers consumers route on.
func wireMessage(event *ImportEvent) (*message.Message, error) {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal import event: %w", err)
	}

	msg := message.NewMessage(event.ID, eventBytes)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("session_id", event.SessionID)
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))

	return msg, nil
}

// Close closes the publisher and releases resources
func (p *KafkaEventPublisher) Close() error {
	return p.publisher.Close()
}

// MockEventPublisher is a mock implementation for testing
type MockEventPublisher struct {
	Events []ImportEvent
	Logger *slog.Logger
}

// NewMockEventPublisher creates a new mock event publisher
func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]ImportEvent, 0),
		Logger: logger,
	}
}

// PublishImportEvent stores the event in memory (for testing)
func (m *MockEventPublisher) PublishImportEvent(ctx context.Context, event *ImportEvent) error {
	m.Events = append(m.Events, *event)
	m.Logger.Info("Mock: Published import event",
		"event_id", event.ID,
		"event_type", event.Type,
		"session_id", event.SessionID)
	return nil
}

// Close is a no-op for the mock publisher
func (m *MockEventPublisher) Close() error {
	return nil
}

// GetPublishedEvents returns all published events (for testing)
func (m *MockEventPublisher) GetPublishedEvents() []ImportEvent {
	return m.Events
}

// ClearEvents clears all published events (for testing)
func (m *MockEventPublisher) ClearEvents() {
	m.Events = make([]ImportEvent, 0)
}
