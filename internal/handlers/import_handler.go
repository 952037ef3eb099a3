package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/services"
	"github.com/campusdesk/import-service/internal/utils"
)

type ImportHandler struct {
	BaseHandler
	importService  services.ImportService
	exportService  services.ExportService
	maxUploadBytes int64
}

func NewImportHandler(
	importService services.ImportService,
	exportService services.ExportService,
	maxUploadBytes int64,
	logger utils.Logger,
) *ImportHandler {
	return &ImportHandler{
		BaseHandler:    NewBaseHandler(logger),
		importService:  importService,
		exportService:  exportService,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateImport uploads a file and opens a validated import session
// @Summary Create import session
// @Description Parses and validates an uploaded CSV/XLSX file and holds the outcome for an explicit commit
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX upload"
// @Param entity formData string true "Target entity: questions or courses"
// @Param format formData string false "Override format detection: csv or xlsx"
// @Success 201 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /imports [post]
func (h *ImportHandler) CreateImport(c *gin.Context) {
	h.LogRequest(c, "Creating import session")

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing upload",
			Details: `multipart field "file" is required`,
		})
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, "File too large", services.ErrFileTooLarge,
			fmt.Sprintf("upload is %d bytes, limit is %d", fileHeader.Size, h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable upload", err)
		return
	}
	defer file.Close()

	// The size header is client-supplied; the limit holds either way.
	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable upload", err)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, "File too large", services.ErrFileTooLarge)
		return
	}

	h.LogDebug(c, "Upload buffered",
		"file_name", fileHeader.Filename,
		"bytes", len(data),
		"entity", c.PostForm("entity"))

	summary, err := h.importService.BeginImport(requestContext(c), services.BeginImportRequest{
		Entity:      c.PostForm("entity"),
		FileName:    fileHeader.Filename,
		Format:      c.PostForm("format"),
		Data:        data,
		InitiatedBy: userID.(string),
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, summary)
}

// GetImport retrieves an import session snapshot
// @Summary Get import session
// @Description Retrieves the current state, totals, errors and tally of an import session
// @Tags imports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.ImportSummary
// @Failure 404 {object} ErrorResponse
// @Router /imports/{id} [get]
func (h *ImportHandler) GetImport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Getting import session", "session_id", id)

	summary, err := h.importService.GetSession(requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CommitImport confirms a validated session and persists its rows
// @Summary Commit import session
// @Description Writes the session's valid rows in file order and returns the final tally
// @Tags imports
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body CommitImportRequest false "Commit options"
// @Success 200 {object} models.ImportSummary
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /imports/{id}/commit [post]
func (h *ImportHandler) CommitImport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Committing import session", "session_id", id)

	// An empty body means defaults.
	var req CommitImportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	opts := services.CommitOptions{SkipDuplicates: true}
	if req.SkipDuplicates != nil {
		opts.SkipDuplicates = *req.SkipDuplicates
	}

	summary, err := h.importService.Commit(requestContext(c), id, opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// CancelImport discards a session awaiting confirmation
// @Summary Cancel import session
// @Description Discards the held batch; not honored once the commit pass has begun
// @Tags imports
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /imports/{id} [delete]
func (h *ImportHandler) CancelImport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Cancelling import session", "session_id", id)

	if err := h.importService.Cancel(requestContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Import session cancelled", gin.H{"session_id": id})
}

// GetImportReport downloads the per-row outcome report of a finished session
// @Summary Get import report
// @Description Returns a CSV of rejected rows, duplicate decisions and failed writes
// @Tags imports
// @Produce text/csv
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /imports/{id}/report [get]
func (h *ImportHandler) GetImportReport(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Exporting import report", "session_id", id)

	file, err := h.exportService.SessionReport(requestContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// handleServiceError maps service errors onto the response taxonomy.
func (h *ImportHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var missingColumns *importer.MissingColumnsError
	if errors.As(err, &missingColumns) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing required columns",
			Details: map[string]interface{}{"missing": missingColumns.Missing},
			Code:    "missing_columns",
		})
		return
	}

	var stateError *importer.StateError
	if errors.As(err, &stateError) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Operation not allowed in current session state",
			Details: stateError.Error(),
			Code:    "invalid_state",
		})
		return
	}

	switch {
	case importer.IsEmptyInput(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Empty input",
			Details: err.Error(),
			Code:    "empty_input",
		})
	case services.IsTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "File too large",
			Details: err.Error(),
		})
	case services.IsBadInput(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Import session not found",
			Details: err.Error(),
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
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
