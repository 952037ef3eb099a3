package importer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusdesk/import-service/internal/models"
)

// ImportSession carries everything one upload produced plus the commit
// lifecycle. The machine is single-use: Idle, Validating,
// AwaitingConfirmation, Committing, then Done or PartiallyFailed, with
// cancel stepping AwaitingConfirmation back to Idle. No state is ever
// re-entered. The session is owned by the flow that created it and is
// always passed explicitly.
type ImportSession struct {
	mu sync.Mutex

	id          string
	entity      models.ImportEntity
	fileName    string
	createdBy   string
	state       models.ImportState
	createdAt   time.Time
	completedAt *time.Time

	totalRows  int
	items      []*models.ImportItem
	errors     []models.ImportValidationError
	duplicates []models.Duplicate
	warnings   []string

	tally        models.CommitTally
	commitErrors []models.CommitItemError
	resolved     int
}

func NewSession(entity models.ImportEntity, fileName, createdBy string) *ImportSession {
	return &ImportSession{
		id:        uuid.NewString(),
		entity:    entity,
		fileName:  fileName,
		createdBy: createdBy,
		state:     models.ImportIdle,
		createdAt: time.Now(),
	}
}

func (s *ImportSession) ID() string {
	return s.id
}

func (s *ImportSession) Entity() models.ImportEntity {
	return s.entity
}

func (s *ImportSession) CreatedBy() string {
	return s.createdBy
}

func (s *ImportSession) State() models.ImportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginValidation moves Idle to Validating.
func (s *ImportSession) BeginValidation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportIdle {
		return &StateError{Op: "validate", State: s.state}
	}
	s.state = models.ImportValidating
	return nil
}

// FinishValidation records the parse/validation outcome and moves
// Validating to AwaitingConfirmation.
func (s *ImportSession) FinishValidation(totalRows int, items []*models.ImportItem, errs []models.ImportValidationError, duplicates []models.Duplicate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportValidating {
		return &StateError{Op: "finish validation of", State: s.state}
	}
	s.totalRows = totalRows
	s.items = items
	s.errors = errs
	s.duplicates = duplicates
	s.state = models.ImportAwaitingConfirmation
	return nil
}

// AddWarning attaches an advisory message (degraded duplicate check,
// failed count refresh). Warnings never change state.
func (s *ImportSession) AddWarning(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

// BeginCommit moves AwaitingConfirmation to Committing and hands the
// orchestrator the items in row order plus the duplicate-flagged rows.
func (s *ImportSession) BeginCommit() ([]*models.ImportItem, map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportAwaitingConfirmation {
		return nil, nil, &StateError{Op: "commit", State: s.state}
	}
	s.state = models.ImportCommitting

	duplicateRows := make(map[int]bool, len(s.duplicates))
	for _, d := range s.duplicates {
		duplicateRows[d.Row] = true
	}
	return s.items, duplicateRows, nil
}

// RecordSuccess counts one persisted item.
func (s *ImportSession) RecordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportCommitting {
		return
	}
	s.tally.Succeeded++
	s.resolved++
}

// RecordFailure counts one failed write without aborting the pass.
func (s *ImportSession) RecordFailure(row int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportCommitting {
		return
	}
	s.tally.Failed++
	s.resolved++
	s.commitErrors = append(s.commitErrors, models.CommitItemError{Row: row, Message: err.Error()})
}

// RecordSkip counts one duplicate left unwritten on the caller's
// explicit confirmation.
func (s *ImportSession) RecordSkip() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportCommitting {
		return
	}
	s.tally.SkippedDuplicates++
	s.resolved++
}

// FinishCommit moves Committing to Done, or PartiallyFailed when any
// item write failed.
func (s *ImportSession) FinishCommit() (models.ImportState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportCommitting {
		return s.state, &StateError{Op: "finish commit of", State: s.state}
	}
	if s.tally.Failed > 0 {
		s.state = models.ImportPartiallyFailed
	} else {
		s.state = models.ImportDone
	}
	now := time.Now()
	s.completedAt = &now
	return s.state, nil
}

// Cancel steps AwaitingConfirmation back to Idle, discarding the
// batch. Once Committing has begun a cancel is not honored.
func (s *ImportSession) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != models.ImportAwaitingConfirmation {
		return &StateError{Op: "cancel", State: s.state}
	}
	s.state = models.ImportIdle
	s.items = nil
	s.errors = nil
	s.duplicates = nil
	return nil
}

// Tally returns the running commit tally.
func (s *ImportSession) Tally() models.CommitTally {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tally
}

// Snapshot copies the session into its API-facing summary.
func (s *ImportSession) Snapshot() *models.ImportSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &models.ImportSummary{
		SessionID:  s.id,
		Entity:     s.entity,
		State:      s.state,
		FileName:   s.fileName,
		TotalRows:  s.totalRows,
		ValidItems: len(s.items),
		ErrorCount: len(s.errors),
		Errors:     append([]models.ImportValidationError(nil), s.errors...),
		Duplicates: append([]models.Duplicate(nil), s.duplicates...),
		Warnings:   append([]string(nil), s.warnings...),
		Progress:   s.progressLocked(),
		CreatedAt:  s.createdAt,
	}

	if s.completedAt != nil {
		completed := *s.completedAt
		summary.CompletedAt = &completed
	}
	switch s.state {
	case models.ImportCommitting, models.ImportDone, models.ImportPartiallyFailed:
		tally := s.tally
		summary.Tally = &tally
		summary.CommitErrors = append([]models.CommitItemError(nil), s.commitErrors...)
	}
	return summary
}

func (s *ImportSession) progressLocked() float64 {
	switch s.state {
	case models.ImportDone, models.ImportPartiallyFailed:
		return 1
	case models.ImportCommitting:
		if len(s.items) == 0 {
			return 1
		}
		return float64(s.resolved) / float64(len(s.items))
	default:
		return 0
	}
}

func (s *ImportSession) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := s.createdAt
	if s.completedAt != nil {
		ref = *s.completedAt
	}
	return now.Sub(ref) > ttl
}

// SessionRegistry tracks live sessions by id. Entries past the TTL are
// swept opportunistically on Put.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*ImportSession
	ttl      time.Duration
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*ImportSession),
		ttl:      ttl,
	}
}

func (r *SessionRegistry) Put(s *ImportSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, session := range r.sessions {
		if session.expired(now, r.ttl) {
			delete(r.sessions, id)
		}
	}
	r.sessions[s.ID()] = s
}

func (r *SessionRegistry) Get(id string) (*ImportSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
