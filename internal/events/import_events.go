package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/campusdesk/import-service/internal/models"
)

// EventType represents different types of import lifecycle events
type EventType string

const (
	EventImportSessionCreated EventType = "import.session.created"
	EventImportCompleted      EventType = "import.completed"
	EventImportPartiallyFail  EventType = "import.partially_failed"
	EventImportCancelled      EventType = "import.cancelled"
)

// ImportEvent is the base event structure for all import lifecycle events.
// SessionID doubles as the Kafka partition key so one session's events
// stay ordered.
type ImportEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// Import event payloads

type ImportSessionCreatedEvent struct {
	SessionID   string              `json:"session_id"`
	Entity      models.ImportEntity `json:"entity"`
	FileName    string              `json:"file_name"`
	TotalRows   int                 `json:"total_rows"`
	ValidItems  int                 `json:"valid_items"`
	ErrorCount  int                 `json:"error_count"`
	Duplicates  int                 `json:"duplicates"`
	InitiatedBy string              `json:"initiated_by"`
}

type ImportCompletedEvent struct {
	SessionID   string              `json:"session_id"`
	Entity      models.ImportEntity `json:"entity"`
	Tally       models.CommitTally  `json:"tally"`
	InitiatedBy string              `json:"initiated_by"`
	CompletedAt time.Time           `json:"completed_at"`
}

type ImportCancelledEvent struct {
	SessionID   string              `json:"session_id"`
	Entity      models.ImportEntity `json:"entity"`
	InitiatedBy string              `json:"initiated_by"`
	CancelledAt time.Time           `json:"cancelled_at"`
}

// Event factory functions

func NewImportSessionCreatedEvent(summary *models.ImportSummary, initiatedBy string) *ImportEvent {
	return &ImportEvent{
		ID:        generateEventID(),
		Type:      EventImportSessionCreated,
		SessionID: summary.SessionID,
		Timestamp: time.Now(),
		Source:    "import-service",
		Version:   "1.0",
		Data: ImportSessionCreatedEvent{
			SessionID:   summary.SessionID,
			Entity:      summary.Entity,
			FileName:    summary.FileName,
			TotalRows:   summary.TotalRows,
			ValidItems:  summary.ValidItems,
			ErrorCount:  summary.ErrorCount,
			Duplicates:  len(summary.Duplicates),
			InitiatedBy: initiatedBy,
		},
	}
}

func NewImportCompletedEvent(summary *models.ImportSummary, initiatedBy string) *ImportEvent {
	eventType := EventImportCompleted
	if summary.State == models.ImportPartiallyFailed {
		eventType = EventImportPartiallyFail
	}

	completedAt := time.Now()
	if summary.CompletedAt != nil {
		completedAt = *summary.CompletedAt
	}

	var tally models.CommitTally
	if summary.Tally != nil {
		tally = *summary.Tally
	}

	return &ImportEvent{
		ID:        generateEventID(),
		Type:      eventType,
		SessionID: summary.SessionID,
		Timestamp: time.Now(),
		Source:    "import-service",
		Version:   "1.0",
		Data: ImportCompletedEvent{
			SessionID:   summary.SessionID,
			Entity:      summary.Entity,
			Tally:       tally,
			InitiatedBy: initiatedBy,
			CompletedAt: completedAt,
		},
	}
}

func NewImportCancelledEvent(sessionID string, entity models.ImportEntity, initiatedBy string) *ImportEvent {
	return &ImportEvent{
		ID:        generateEventID(),
		Type:      EventImportCancelled,
		SessionID: sessionID,
		Timestamp: time.Now(),
		Source:    "import-service",
		Version:   "1.0",
		Data: ImportCancelledEvent{
			SessionID:   sessionID,
			Entity:      entity,
			InitiatedBy: initiatedBy,
			CancelledAt: time.Now(),
		},
	}
}

func generateEventID() string {
	return uuid.NewString()
}
