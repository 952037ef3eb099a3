package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/services"
	"github.com/campusdesk/import-service/internal/utils"
)

type CatalogHandler struct {
	BaseHandler
	catalogService services.CatalogService
	exportService  services.ExportService
}

func NewCatalogHandler(
	catalogService services.CatalogService,
	exportService services.ExportService,
	logger utils.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
		exportService:  exportService,
	}
}

// GetTemplate downloads the canonical upload template for an entity
// @Summary Get import template
// @Description Returns the canonical header as a blank or example-populated template
// @Tags templates
// @Produce text/csv
// @Param entity path string true "questions or courses"
// @Param mode query string false "blank (default) or example"
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /templates/{entity} [get]
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	entity := ParseStringIDParam(c, "entity")
	if entity == "" {
		return
	}

	h.LogRequest(c, "Exporting template", "entity", entity,
		"mode", c.Query("mode"), "format", c.Query("format"))

	file, err := h.exportService.Template(requestContext(c), entity, c.Query("mode"), c.Query("format"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ExportCollection downloads the stored documents of an entity
// @Summary Export collection
// @Description Exports stored documents under the canonical header so the file re-imports cleanly
// @Tags exports
// @Produce text/csv
// @Param entity path string true "questions or courses"
// @Param format query string false "csv (default) or xlsx"
// @Param type query string false "Question type filter"
// @Param difficulty query string false "Question difficulty filter"
// @Param category query string false "Question category filter"
// @Param department query string false "Course department filter"
// @Param semester query string false "Course semester filter"
// @Param limit query int false "Max documents"
// @Param offset query int false "Skip documents"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /exports/{entity} [get]
func (h *CatalogHandler) ExportCollection(c *gin.Context) {
	entity := ParseStringIDParam(c, "entity")
	if entity == "" {
		return
	}

	limit, ok := h.parseInt64Query(c, "limit")
	if !ok {
		return
	}
	offset, ok := h.parseInt64Query(c, "offset")
	if !ok {
		return
	}

	filter := services.CatalogFilter{
		Type:       c.Query("type"),
		Difficulty: c.Query("difficulty"),
		Category:   c.Query("category"),
		Department: c.Query("department"),
		Semester:   c.Query("semester"),
		Limit:      limit,
		Offset:     offset,
	}

	h.LogRequest(c, "Exporting collection", "entity", entity, "format", c.Query("format"))

	file, err := h.exportService.ExportCollection(requestContext(c), entity, c.Query("format"), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// GetStats returns the cached document count for an entity
// @Summary Get collection stats
// @Description Returns the cached post-commit document count, falling back to a live count
// @Tags collections
// @Produce json
// @Param entity path string true "questions or courses"
// @Success 200 {object} cache.CollectionStats
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /collections/{entity}/stats [get]
func (h *CatalogHandler) GetStats(c *gin.Context) {
	entity := ParseStringIDParam(c, "entity")
	if entity == "" {
		return
	}

	h.LogRequest(c, "Getting collection stats", "entity", entity)

	stats, err := h.catalogService.Stats(requestContext(c), entity)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *CatalogHandler) parseInt64Query(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: raw,
		})
		return 0, false
	}
	return v, true
}

func (h *CatalogHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case services.IsBadInput(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Not found",
			Details: err.Error(),
		})
	case importer.IsStoreUnavailable(err):
		h.LogError(c, err, "Document store unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Document store unavailable",
			Code:    "store_unavailable",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
