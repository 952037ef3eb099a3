package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusdesk/import-service/internal/cache"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/models"
	"github.com/campusdesk/import-service/internal/store"
	"github.com/campusdesk/import-service/internal/validator"
)

// CatalogService reads the imported collections back out: filtered
// listings, counts, and the cached stats figure the importer refreshes
// after each commit.
type CatalogService interface {
	ListQuestions(ctx context.Context, filter CatalogFilter) ([]models.Question, error)
	ListCourses(ctx context.Context, filter CatalogFilter) ([]models.Course, error)
	Stats(ctx context.Context, entity string) (*cache.CollectionStats, error)
}

// CatalogFilter narrows a listing or export. Empty fields match
// everything; question and course fields are simply ignored for the
// other entity. A misspelled enum value would otherwise match nothing
// silently, so the set values are checked against the schema enums.
type CatalogFilter struct {
	// Question filters
	Type       string `json:"type" validate:"omitempty,question_type"`
	Difficulty string `json:"difficulty" validate:"omitempty,difficulty_level"`
	Category   string `json:"category" validate:"omitempty,question_category"`

	// Course filters
	Department string `json:"department"`
	Semester   string `json:"semester" validate:"omitempty,semester_term"`

	Limit  int64 `json:"limit" validate:"min=0"`
	Offset int64 `json:"offset" validate:"min=0"`
}

func (f CatalogFilter) questionFilter() store.Filter {
	equals := make(map[string]interface{})
	if f.Type != "" {
		equals["question_type"] = f.Type
	}
	if f.Difficulty != "" {
		equals["difficulty"] = f.Difficulty
	}
	if f.Category != "" {
		equals["category"] = f.Category
	}
	return store.Filter{Equals: equals, Limit: f.Limit, Offset: f.Offset}
}

func (f CatalogFilter) courseFilter() store.Filter {
	equals := make(map[string]interface{})
	if f.Department != "" {
		equals["department"] = f.Department
	}
	if f.Semester != "" {
		equals["semester"] = f.Semester
	}
	return store.Filter{Equals: equals, Limit: f.Limit, Offset: f.Offset}
}

type catalogService struct {
	docs      store.DocumentStore
	stats     *cache.StatsCache
	validator *validator.Validator
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewCatalogService(docs store.DocumentStore, stats *cache.StatsCache, v *validator.Validator, logger *slog.Logger) CatalogService {
	return &catalogService{
		docs:      docs,
		stats:     stats,
		validator: v,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "import-service", Component: "catalog"}),
	}
}

func (s *catalogService) ListQuestions(ctx context.Context, filter CatalogFilter) ([]models.Question, error) {
	if err := s.validator.ValidateStructPartial(filter, "Type", "Difficulty", "Category", "Limit", "Offset"); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	var questions []models.Question
	if err := s.docs.List(ctx, models.Question{}.Collection(), filter.questionFilter(), &questions); err != nil {
		return nil, &importer.StoreUnavailableError{Op: "list questions", Err: err}
	}
	return questions, nil
}

func (s *catalogService) ListCourses(ctx context.Context, filter CatalogFilter) ([]models.Course, error) {
	if err := s.validator.ValidateStructPartial(filter, "Semester", "Limit", "Offset"); err != nil {
		return nil, validator.ToValidationErrors(err)
	}

	var courses []models.Course
	if err := s.docs.List(ctx, models.Course{}.Collection(), filter.courseFilter(), &courses); err != nil {
		return nil, &importer.StoreUnavailableError{Op: "list courses", Err: err}
	}
	return courses, nil
}

// Stats reads the cached collection count, falling back to a live
// count on a miss. The fallback refreshes the cache so the next read
// is cheap again.
func (s *catalogService) Stats(ctx context.Context, entityStr string) (stats *cache.CollectionStats, err error) {
	op := s.ops.WithOperation(ctx, "collection_stats", "")
	entity, err := models.ParseImportEntity(entityStr)
	defer func() { op.LogResult("", entity, err) }()
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEntity, entityStr)
	}

	if cached, cerr := s.stats.GetCount(ctx, entity); cerr == nil {
		return cached, nil
	}

	collection := models.Question{}.Collection()
	if entity == models.EntityCourses {
		collection = models.Course{}.Collection()
	}
	count, err := s.docs.Count(ctx, collection, store.Filter{})
	if err != nil {
		return nil, &importer.StoreUnavailableError{Op: "count " + collection, Err: err}
	}

	if rerr := s.stats.RefreshCount(ctx, entity, count); rerr != nil {
		s.logger.Warn("Failed to refresh cached collection count",
			"entity", string(entity), "error", rerr)
	}
	return &cache.CollectionStats{
		Entity:      entity,
		Count:       count,
		RefreshedAt: time.Now(),
	}, nil
}
