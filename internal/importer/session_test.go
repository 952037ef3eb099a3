package importer

import (
	"errors"
	"testing"
	"time"

	"github.com/campusdesk/import-service/internal/models"
)

func validatedSession(t *testing.T, itemCount int, duplicates []models.Duplicate) *ImportSession {
	t.Helper()

	s := NewSession(models.EntityQuestions, "upload.csv", "faculty-1")
	if err := s.BeginValidation(); err != nil {
		t.Fatalf("BeginValidation failed: %v", err)
	}

	items := make([]*models.ImportItem, itemCount)
	for i := range items {
		items[i] = questionItem(i+1, "question")
	}
	if err := s.FinishValidation(itemCount, items, nil, duplicates); err != nil {
		t.Fatalf("FinishValidation failed: %v", err)
	}
	return s
}

func TestSessionLifecycleDone(t *testing.T) {
	s := validatedSession(t, 2, nil)
	if s.State() != models.ImportAwaitingConfirmation {
		t.Fatalf("Expected awaiting_confirmation, got %s", s.State())
	}

	items, duplicateRows, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("BeginCommit failed: %v", err)
	}
	if len(items) != 2 || len(duplicateRows) != 0 {
		t.Fatalf("Expected 2 items and no duplicate rows, got %d/%d", len(items), len(duplicateRows))
	}

	s.RecordSuccess()
	s.RecordSuccess()

	state, err := s.FinishCommit()
	if err != nil {
		t.Fatalf("FinishCommit failed: %v", err)
	}
	if state != models.ImportDone {
		t.Errorf("Expected done, got %s", state)
	}

	summary := s.Snapshot()
	if summary.Tally == nil || summary.Tally.Succeeded != 2 {
		t.Errorf("Expected tally of 2 successes, got %+v", summary.Tally)
	}
	if summary.CompletedAt == nil {
		t.Error("Expected a completion timestamp")
	}
	if summary.Progress != 1 {
		t.Errorf("Expected progress 1, got %f", summary.Progress)
	}
}

func TestSessionPartiallyFailed(t *testing.T) {
	s := validatedSession(t, 3, nil)
	if _, _, err := s.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit failed: %v", err)
	}

	s.RecordSuccess()
	s.RecordFailure(2, errors.New("write timed out"))
	s.RecordSuccess()

	state, err := s.FinishCommit()
	if err != nil {
		t.Fatalf("FinishCommit failed: %v", err)
	}
	if state != models.ImportPartiallyFailed {
		t.Errorf("Expected partially_failed, got %s", state)
	}

	summary := s.Snapshot()
	if len(summary.CommitErrors) != 1 || summary.CommitErrors[0].Row != 2 {
		t.Errorf("Expected one commit error on row 2, got %v", summary.CommitErrors)
	}
}

func TestSessionTallyInvariant(t *testing.T) {
	duplicates := []models.Duplicate{{Row: 2, Key: "question", ExistingID: "q-1"}}
	s := validatedSession(t, 5, duplicates)

	items, duplicateRows, err := s.BeginCommit()
	if err != nil {
		t.Fatalf("BeginCommit failed: %v", err)
	}
	if !duplicateRows[2] {
		t.Fatal("Expected row 2 flagged as duplicate")
	}

	for _, item := range items {
		switch {
		case duplicateRows[item.Row]:
			s.RecordSkip()
		case item.Row == 4:
			s.RecordFailure(item.Row, errors.New("boom"))
		default:
			s.RecordSuccess()
		}
	}
	if _, err := s.FinishCommit(); err != nil {
		t.Fatalf("FinishCommit failed: %v", err)
	}

	tally := s.Tally()
	if tally.Total() != len(items) {
		t.Errorf("Tally %+v does not cover all %d items", tally, len(items))
	}
	if tally.Succeeded != 3 || tally.Failed != 1 || tally.SkippedDuplicates != 1 {
		t.Errorf("Expected 3/1/1, got %+v", tally)
	}
}

func TestSessionCancel(t *testing.T) {
	s := validatedSession(t, 2, nil)

	if err := s.Cancel(); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if s.State() != models.ImportIdle {
		t.Errorf("Expected idle after cancel, got %s", s.State())
	}

	summary := s.Snapshot()
	if summary.ValidItems != 0 {
		t.Errorf("Expected the batch discarded, got %d items", summary.ValidItems)
	}

	// The machine is single-use; a cancelled session cannot restart.
	if _, _, err := s.BeginCommit(); !IsStateError(err) {
		t.Errorf("Expected StateError committing a cancelled session, got %v", err)
	}
	if err := s.Cancel(); !IsStateError(err) {
		t.Errorf("Expected StateError cancelling twice, got %v", err)
	}
}

func TestSessionCancelDuringCommitRejected(t *testing.T) {
	s := validatedSession(t, 1, nil)
	if _, _, err := s.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit failed: %v", err)
	}

	if err := s.Cancel(); !IsStateError(err) {
		t.Errorf("Expected StateError cancelling mid-commit, got %v", err)
	}
}

func TestSessionSingleUse(t *testing.T) {
	s := validatedSession(t, 1, nil)

	if _, _, err := s.BeginCommit(); err != nil {
		t.Fatalf("First BeginCommit failed: %v", err)
	}
	if _, _, err := s.BeginCommit(); !IsStateError(err) {
		t.Errorf("Expected StateError on second BeginCommit, got %v", err)
	}

	s.RecordSuccess()
	if _, err := s.FinishCommit(); err != nil {
		t.Fatalf("FinishCommit failed: %v", err)
	}
	if _, _, err := s.BeginCommit(); !IsStateError(err) {
		t.Errorf("Expected StateError committing a finished session, got %v", err)
	}
}

func TestSessionRejectsOutOfOrderTransitions(t *testing.T) {
	s := NewSession(models.EntityCourses, "courses.csv", "admin-1")

	if err := s.FinishValidation(0, nil, nil, nil); !IsStateError(err) {
		t.Errorf("Expected StateError finishing validation from idle, got %v", err)
	}
	if _, _, err := s.BeginCommit(); !IsStateError(err) {
		t.Errorf("Expected StateError committing from idle, got %v", err)
	}

	if err := s.BeginValidation(); err != nil {
		t.Fatalf("BeginValidation failed: %v", err)
	}
	if err := s.BeginValidation(); !IsStateError(err) {
		t.Errorf("Expected StateError on repeated BeginValidation, got %v", err)
	}
}

func TestSessionIgnoresRecordsOutsideCommit(t *testing.T) {
	s := validatedSession(t, 1, nil)

	s.RecordSuccess()
	s.RecordFailure(1, errors.New("early"))
	s.RecordSkip()

	if tally := s.Tally(); tally.Total() != 0 {
		t.Errorf("Expected records before BeginCommit ignored, got %+v", tally)
	}
}

func TestSessionCommitProgress(t *testing.T) {
	s := validatedSession(t, 4, nil)
	if _, _, err := s.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit failed: %v", err)
	}

	s.RecordSuccess()
	s.RecordSuccess()
	if got := s.Snapshot().Progress; got != 0.5 {
		t.Errorf("Expected progress 0.5 mid-commit, got %f", got)
	}
}

func TestSessionWarnings(t *testing.T) {
	s := validatedSession(t, 1, nil)
	s.AddWarning("duplicate check unavailable")

	summary := s.Snapshot()
	if len(summary.Warnings) != 1 || summary.Warnings[0] != "duplicate check unavailable" {
		t.Errorf("Expected the warning carried on the snapshot, got %v", summary.Warnings)
	}
	if summary.State != models.ImportAwaitingConfirmation {
		t.Errorf("Expected warnings to leave state untouched, got %s", summary.State)
	}
}

func TestRegistryPutGetRemove(t *testing.T) {
	registry := NewSessionRegistry(time.Hour)

	s := NewSession(models.EntityQuestions, "upload.csv", "faculty-1")
	registry.Put(s)

	got, ok := registry.Get(s.ID())
	if !ok || got.ID() != s.ID() {
		t.Fatalf("Expected to retrieve the stored session, got ok=%v", ok)
	}

	registry.Remove(s.ID())
	if _, ok := registry.Get(s.ID()); ok {
		t.Error("Expected the session gone after Remove")
	}
}

func TestRegistrySweepsExpiredSessions(t *testing.T) {
	registry := NewSessionRegistry(time.Nanosecond)

	old := NewSession(models.EntityQuestions, "old.csv", "faculty-1")
	registry.Put(old)

	time.Sleep(2 * time.Millisecond)

	fresh := NewSession(models.EntityQuestions, "fresh.csv", "faculty-1")
	registry.Put(fresh)

	if _, ok := registry.Get(old.ID()); ok {
		t.Error("Expected the expired session swept on Put")
	}
	if registry.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", registry.Len())
	}
}
