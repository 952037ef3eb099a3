package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusdesk/import-service/internal/cache"
	"github.com/campusdesk/import-service/internal/events"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/models"
	"github.com/campusdesk/import-service/internal/store"
	"github.com/campusdesk/import-service/internal/validator"
)

// File formats accepted for upload.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ImportService drives the two-phase import lifecycle: an upload is
// parsed and validated into a held session, then a single explicit
// commit writes the valid rows, or a cancel discards them.
type ImportService interface {
	BeginImport(ctx context.Context, req BeginImportRequest) (*models.ImportSummary, error)
	GetSession(ctx context.Context, sessionID string) (*models.ImportSummary, error)
	Commit(ctx context.Context, sessionID string, opts CommitOptions) (*models.ImportSummary, error)
	Cancel(ctx context.Context, sessionID string) error
}

type BeginImportRequest struct {
	Entity      string `validate:"required,import_entity"`
	FileName    string `validate:"required"`
	Format      string `validate:"omitempty,oneof=csv xlsx"`
	Data        []byte `validate:"required"`
	InitiatedBy string
}

type CommitOptions struct {
	// SkipDuplicates leaves duplicate-flagged rows unwritten. Callers
	// that want duplicates imported anyway pass false explicitly.
	SkipDuplicates bool
}

type importService struct {
	docs      store.DocumentStore
	registry  *importer.SessionRegistry
	stats     *cache.StatsCache
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewImportService(docs store.DocumentStore, registry *importer.SessionRegistry, stats *cache.StatsCache, publisher events.EventPublisher, v *validator.Validator, logger *slog.Logger) ImportService {
	return &importService{
		docs:      docs,
		registry:  registry,
		stats:     stats,
		publisher: publisher,
		validator: v,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "import-service", Component: "import"}),
	}
}

// ===== LIFECYCLE OPERATIONS =====

func (s *importService) BeginImport(ctx context.Context, req BeginImportRequest) (summary *models.ImportSummary, err error) {
	op := s.ops.WithOperation(ctx, "begin_import", req.InitiatedBy)
	entity := models.ImportEntity(strings.ToLower(strings.TrimSpace(req.Entity)))
	defer func() {
		sessionID := ""
		if summary != nil {
			sessionID = summary.SessionID
		}
		op.LogResult(sessionID, entity, err)
	}()

	if verr := s.validator.ValidateStruct(req); verr != nil {
		return nil, validator.ToValidationErrors(verr)
	}

	entity, err = models.ParseImportEntity(req.Entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, req.Entity)
	}

	format, err := resolveFormat(req.Format, req.FileName)
	if err != nil {
		return nil, err
	}

	records, err := s.readRecords(entity, format, req.Data)
	if err != nil {
		return nil, err
	}

	session := importer.NewSession(entity, req.FileName, req.InitiatedBy)
	if err := session.BeginValidation(); err != nil {
		return nil, err
	}

	rowValidator, err := importer.NewRowValidator(entity)
	if err != nil {
		return nil, err
	}
	items, rowErrors := rowValidator.ValidateAll(records)

	duplicates := s.detectDuplicates(ctx, session, entity, items)

	if err := session.FinishValidation(len(records), items, rowErrors, duplicates); err != nil {
		return nil, err
	}
	s.ops.LogRowErrors(ctx, session.ID(), entity, rowErrors)

	s.registry.Put(session)
	summary = session.Snapshot()

	if perr := s.publisher.PublishImportEvent(ctx, events.NewImportSessionCreatedEvent(summary, req.InitiatedBy)); perr != nil {
		s.logger.Warn("Failed to publish import session created event",
			"session_id", summary.SessionID, "error", perr)
	}
	return summary, nil
}

func (s *importService) GetSession(ctx context.Context, sessionID string) (*models.ImportSummary, error) {
	session, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

func (s *importService) Commit(ctx context.Context, sessionID string, opts CommitOptions) (summary *models.ImportSummary, err error) {
	session, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	op := s.ops.WithOperation(ctx, "commit_import", session.CreatedBy())
	defer func() { op.LogResult(sessionID, session.Entity(), err) }()

	items, duplicateRows, err := session.BeginCommit()
	if err != nil {
		return nil, err
	}

	start := time.Now()

	// The context is checked at every item boundary: a cancelled request
	// stops further writes but rows already written stay written, and the
	// unwritten remainder is counted so the tally still covers the batch.
	for _, item := range items {
		if cerr := ctx.Err(); cerr != nil {
			session.RecordFailure(item.Row, cerr)
			continue
		}
		if opts.SkipDuplicates && duplicateRows[item.Row] {
			session.RecordSkip()
			continue
		}
		if werr := s.commitItem(ctx, session, item); werr != nil {
			session.RecordFailure(item.Row, werr)
			continue
		}
		session.RecordSuccess()
	}

	// Bookkeeping after the pass still runs when the client has gone.
	commitCtx := context.WithoutCancel(ctx)

	state, err := session.FinishCommit()
	if err != nil {
		return nil, err
	}
	s.ops.LogCommitOutcome(commitCtx, sessionID, session.Entity(), state, session.Tally(), time.Since(start))

	s.refreshStats(commitCtx, session.Entity())

	summary = session.Snapshot()
	if perr := s.publisher.PublishImportEvent(commitCtx, events.NewImportCompletedEvent(summary, session.CreatedBy())); perr != nil {
		s.logger.Warn("Failed to publish import completed event",
			"session_id", sessionID, "error", perr)
	}
	return summary, nil
}

func (s *importService) Cancel(ctx context.Context, sessionID string) (err error) {
	session, ok := s.registry.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}

	op := s.ops.WithOperation(ctx, "cancel_import", session.CreatedBy())
	defer func() { op.LogResult(sessionID, session.Entity(), err) }()

	if err = session.Cancel(); err != nil {
		return err
	}
	s.registry.Remove(sessionID)

	if perr := s.publisher.PublishImportEvent(ctx, events.NewImportCancelledEvent(sessionID, session.Entity(), session.CreatedBy())); perr != nil {
		s.logger.Warn("Failed to publish import cancelled event",
			"session_id", sessionID, "error", perr)
	}
	return nil
}

// ===== PARSING =====

func resolveFormat(format, fileName string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		switch strings.ToLower(filepath.Ext(fileName)) {
		case ".csv":
			f = FormatCSV
		case ".xlsx", ".xls":
			f = FormatXLSX
		default:
			return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(fileName))
		}
	}

	switch f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (s *importService) readRecords(entity models.ImportEntity, format string, data []byte) ([]importer.RawRecord, error) {
	schema, err := importer.SchemaFor(entity)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entity)
	}

	var reader *importer.Reader
	switch format {
	case FormatCSV:
		reader, err = importer.NewReader(bytes.NewReader(data), schema.Required)
	case FormatXLSX:
		reader, err = importer.NewXLSXReader(data, schema.Required)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	records, err := importer.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	// A file whose every data row is blank has nothing to validate.
	if len(records) == 0 {
		return nil, importer.ErrEmptyInput
	}
	return records, nil
}

// ===== DUPLICATE DETECTION =====

// detectDuplicates snapshots existing keys and flags colliding rows.
// The check is advisory: when the store cannot serve the snapshot the
// import proceeds without it and the session carries a warning.
func (s *importService) detectDuplicates(ctx context.Context, session *importer.ImportSession, entity models.ImportEntity, items []*models.ImportItem) []models.Duplicate {
	if len(items) == 0 {
		return nil
	}

	detector, err := importer.DetectorFor(entity)
	if err != nil {
		return nil
	}

	existing, err := s.existingKeys(ctx, entity)
	if err != nil {
		session.AddWarning("duplicate check unavailable: committed rows may duplicate existing records")
		s.ops.LogDegradedDuplicateCheck(ctx, session.ID(), entity, err)
		return nil
	}
	return detector.Detect(items, existing)
}

func (s *importService) existingKeys(ctx context.Context, entity models.ImportEntity) ([]importer.ExistingKey, error) {
	switch entity {
	case models.EntityQuestions:
		var questions []models.Question
		filter := store.Filter{Fields: []string{"question_text"}}
		if err := s.docs.List(ctx, models.Question{}.Collection(), filter, &questions); err != nil {
			return nil, &importer.StoreUnavailableError{Op: "list question keys", Err: err}
		}
		keys := make([]importer.ExistingKey, 0, len(questions))
		for _, q := range questions {
			keys = append(keys, importer.ExistingKey{ID: q.ID, Key: q.Text})
		}
		return keys, nil

	case models.EntityCourses:
		var courses []models.Course
		filter := store.Filter{Fields: []string{"course_code"}}
		if err := s.docs.List(ctx, models.Course{}.Collection(), filter, &courses); err != nil {
			return nil, &importer.StoreUnavailableError{Op: "list course keys", Err: err}
		}
		keys := make([]importer.ExistingKey, 0, len(courses))
		for _, c := range courses {
			keys = append(keys, importer.ExistingKey{ID: c.ID, Key: c.Code})
		}
		return keys, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entity)
	}
}

// ===== COMMIT =====

// commitItem stamps identity and provenance on a copy of the item's
// document, guards it once more at the persistence boundary, and writes
// it. Each write stands alone; a failure never rolls back earlier rows.
func (s *importService) commitItem(ctx context.Context, session *importer.ImportSession, item *models.ImportItem) error {
	now := time.Now()

	switch {
	case item.Question != nil:
		question := *item.Question
		question.ID = uuid.NewString()
		question.CreatedBy = session.CreatedBy()
		question.CreatedAt = now
		if err := s.validator.Document().ValidateQuestion(&question); err != nil {
			return err
		}
		_, err := s.docs.Create(ctx, question.Collection(), &question)
		return err

	case item.Course != nil:
		course := *item.Course
		course.ID = uuid.NewString()
		course.CreatedBy = session.CreatedBy()
		course.CreatedAt = now
		if err := s.validator.Document().ValidateCourse(&course); err != nil {
			return err
		}
		_, err := s.docs.Create(ctx, course.Collection(), &course)
		return err

	default:
		return fmt.Errorf("row %d carries no document", item.Row)
	}
}

// ===== STATS =====

// refreshStats recounts the target collection and refreshes the cached
// figure. Both steps are best effort; a miss only logs.
func (s *importService) refreshStats(ctx context.Context, entity models.ImportEntity) {
	collection := models.Question{}.Collection()
	if entity == models.EntityCourses {
		collection = models.Course{}.Collection()
	}

	count, err := s.docs.Count(ctx, collection, store.Filter{})
	if err != nil {
		s.logger.Warn("Skipping stats refresh, count unavailable",
			"entity", string(entity), "error", err)
		return
	}
	if err := s.stats.RefreshCount(ctx, entity, count); err != nil {
		s.logger.Warn("Failed to refresh cached collection count",
			"entity", string(entity), "count", count, "error", err)
	}
}
