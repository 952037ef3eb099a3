package events

import (
	"testing"
	"time"

	"github.com/campusdesk/import-service/internal/models"
)

func TestNewImportCompletedEvent(t *testing.T) {
	completed := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("done session", func(t *testing.T) {
		summary := &models.ImportSummary{
			SessionID:   "sess-2",
			Entity:      models.EntityCourses,
			State:       models.ImportDone,
			Tally:       &models.CommitTally{Succeeded: 5},
			CompletedAt: &completed,
		}

		event := NewImportCompletedEvent(summary, "admin-1")

		if event.Type != EventImportCompleted {
			t.Errorf("Expected type %s, got %s", EventImportCompleted, event.Type)
		}
		if event.SessionID != "sess-2" {
			t.Errorf("Expected session sess-2, got %s", event.SessionID)
		}

		payload, ok := event.Data.(ImportCompletedEvent)
		if !ok {
			t.Fatalf("Expected ImportCompletedEvent payload, got %T", event.Data)
		}
		if payload.Tally.Succeeded != 5 {
			t.Errorf("Expected 5 succeeded in tally, got %d", payload.Tally.Succeeded)
		}
		if !payload.CompletedAt.Equal(completed) {
			t.Errorf("Expected completion time %v, got %v", completed, payload.CompletedAt)
		}
	})

	t.Run("partially failed session", func(t *testing.T) {
		summary := &models.ImportSummary{
			SessionID: "sess-3",
			Entity:    models.EntityQuestions,
			State:     models.ImportPartiallyFailed,
			Tally:     &models.CommitTally{Succeeded: 4, Failed: 1},
		}

		event := NewImportCompletedEvent(summary, "admin-1")

		if event.Type != EventImportPartiallyFail {
			t.Errorf("Expected type %s, got %s", EventImportPartiallyFail, event.Type)
		}

		payload := event.Data.(ImportCompletedEvent)
		if payload.Tally.Failed != 1 {
			t.Errorf("Expected 1 failed in tally, got %d", payload.Tally.Failed)
		}
	})
}

func TestNewImportCancelledEvent(t *testing.T) {
	event := NewImportCancelledEvent("sess-4", models.EntityQuestions, "faculty-2")

	if event.Type != EventImportCancelled {
		t.Errorf("Expected type %s, got %s", EventImportCancelled, event.Type)
	}
	if event.SessionID != "sess-4" {
		t.Errorf("Expected session sess-4, got %s", event.SessionID)
	}
	if event.ID == "" {
		t.Error("Expected a generated event id")
	}

	payload, ok := event.Data.(ImportCancelledEvent)
	if !ok {
		t.Fatalf("Expected ImportCancelledEvent payload, got %T", event.Data)
	}
	if payload.InitiatedBy != "faculty-2" {
		t.Errorf("Expected initiator faculty-2, got %s", payload.InitiatedBy)
	}
	if payload.CancelledAt.IsZero() {
		t.Error("Expected a cancellation timestamp")
	}
}
