package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jszwec/csvutil"

	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/models"
)

// Content types for download responses.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportService produces downloadable files: entity templates, catalog
// exports in the canonical column order, and per-session outcome
// reports.
type ExportService interface {
	Template(ctx context.Context, entity, mode, format string) (*ExportFile, error)
	ExportCollection(ctx context.Context, entity, format string, filter CatalogFilter) (*ExportFile, error)
	SessionReport(ctx context.Context, sessionID string) (*ExportFile, error)
}

type ExportFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}

type exportService struct {
	catalog  CatalogService
	registry *importer.SessionRegistry
	logger   *slog.Logger
	ops      *ServiceLogger
}

func NewExportService(catalog CatalogService, registry *importer.SessionRegistry, logger *slog.Logger) ExportService {
	return &exportService{
		catalog:  catalog,
		registry: registry,
		logger:   logger,
		ops:      NewServiceLogger(logger, LogConfig{Service: "import-service", Component: "export"}),
	}
}

// ===== TEMPLATES =====

// Template renders the canonical header for an entity, optionally
// populated with example rows. The blank form doubles as schema
// documentation for upload authors.
func (s *exportService) Template(ctx context.Context, entityStr, modeStr, formatStr string) (*ExportFile, error) {
	entity, err := models.ParseImportEntity(entityStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entityStr)
	}

	mode, err := importer.ParseTemplateMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTemplateMode, modeStr)
	}

	format, err := resolveExportFormat(formatStr)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case FormatCSV:
		data, err = importer.TemplateCSV(entity, mode)
	case FormatXLSX:
		data, err = importer.TemplateXLSX(entity, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s template: %w", entity, err)
	}

	return &ExportFile{
		Name:        fmt.Sprintf("%s_template.%s", entity, format),
		ContentType: contentTypeFor(format),
		Data:        data,
	}, nil
}

// ===== CATALOG EXPORTS =====

// ExportCollection lists the stored documents matching the filter and
// encodes them under the canonical header, so an export re-imports
// without edits.
func (s *exportService) ExportCollection(ctx context.Context, entityStr, formatStr string, filter CatalogFilter) (file *ExportFile, err error) {
	op := s.ops.WithOperation(ctx, "export_collection", "")
	entity, err := models.ParseImportEntity(entityStr)
	defer func() { op.LogResult("", entity, err) }()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entityStr)
	}

	format, err := resolveExportFormat(formatStr)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch entity {
	case models.EntityQuestions:
		questions, lerr := s.catalog.ListQuestions(ctx, filter)
		if lerr != nil {
			return nil, lerr
		}
		refs := make([]*models.Question, len(questions))
		for i := range questions {
			refs[i] = &questions[i]
		}
		if format == FormatCSV {
			data, err = importer.EncodeQuestionsCSV(refs)
		} else {
			data, err = importer.EncodeQuestionsXLSX(refs)
		}

	case models.EntityCourses:
		courses, lerr := s.catalog.ListCourses(ctx, filter)
		if lerr != nil {
			return nil, lerr
		}
		refs := make([]*models.Course, len(courses))
		for i := range courses {
			refs[i] = &courses[i]
		}
		if format == FormatCSV {
			data, err = importer.EncodeCoursesCSV(refs)
		} else {
			data, err = importer.EncodeCoursesXLSX(refs)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s export: %w", entity, err)
	}

	return &ExportFile{
		Name:        fmt.Sprintf("%s_export.%s", entity, format),
		ContentType: contentTypeFor(format),
		Data:        data,
	}, nil
}

// ===== SESSION REPORTS =====

type reportRow struct {
	Row     int    `csv:"row"`
	Status  string `csv:"status"`
	Column  string `csv:"column"`
	Message string `csv:"message"`
}

// SessionReport renders the per-row outcomes of a finished session,
// covering rejected rows, duplicate decisions and failed writes. Rows
// that imported cleanly are left out.
func (s *exportService) SessionReport(ctx context.Context, sessionID string) (*ExportFile, error) {
	session, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	summary := session.Snapshot()
	switch summary.State {
	case models.ImportDone, models.ImportPartiallyFailed:
	default:
		return nil, &importer.StateError{Op: "report on", State: summary.State}
	}

	data, err := encodeReportCSV(buildReportRows(summary))
	if err != nil {
		return nil, fmt.Errorf("encode session report: %w", err)
	}
	return &ExportFile{
		Name:        fmt.Sprintf("import_report_%s.csv", summary.SessionID),
		ContentType: ContentTypeCSV,
		Data:        data,
	}, nil
}

func buildReportRows(summary *models.ImportSummary) []reportRow {
	keyColumn := importer.ColQuestionText
	if summary.Entity == models.EntityCourses {
		keyColumn = importer.ColCourseCode
	}

	duplicateStatus := "duplicate"
	if summary.Tally != nil && summary.Tally.SkippedDuplicates > 0 {
		duplicateStatus = "skipped_duplicate"
	}

	rows := make([]reportRow, 0, len(summary.Errors)+len(summary.Duplicates)+len(summary.CommitErrors))
	for _, e := range summary.Errors {
		rows = append(rows, reportRow{Row: e.Row, Status: "invalid", Column: e.Column, Message: e.Message})
	}
	for _, d := range summary.Duplicates {
		rows = append(rows, reportRow{
			Row:     d.Row,
			Status:  duplicateStatus,
			Column:  keyColumn,
			Message: fmt.Sprintf("matches existing record %s", d.ExistingID),
		})
	}
	for _, c := range summary.CommitErrors {
		rows = append(rows, reportRow{Row: c.Row, Status: "failed", Message: c.Message})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Row < rows[j].Row })
	return rows
}

func encodeReportCSV(rows []reportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if err := enc.EncodeHeader(reportRow{}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func resolveExportFormat(format string) (string, error) {
	switch format {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func contentTypeFor(format string) string {
	if format == FormatXLSX {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}
