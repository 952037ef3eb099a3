package services

import (
	"errors"

	apperrors "github.com/campusdesk/import-service/internal/errors"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/store"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Import session specific errors
	ErrSessionNotFound   = errors.New("import session not found")
	ErrUnsupportedEntity = errors.New("unsupported import entity")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("uploaded file exceeds the size limit")

	// Template/export specific errors
	ErrUnsupportedTemplateMode = errors.New("unsupported template mode")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, store.ErrNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBadInput checks if error means the upload itself is unusable:
// wrong entity, wrong format, no data, or a broken header.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrUnsupportedEntity) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnsupportedTemplateMode) ||
		importer.IsEmptyInput(err) ||
		importer.IsMissingColumns(err)
}

// IsConflict checks if error represents a resource conflict, including
// a lifecycle call the session state does not allow.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		importer.IsStateError(err)
}

// IsTooLarge checks if error means the upload was rejected on size.
func IsTooLarge(err error) bool {
	return errors.Is(err, ErrFileTooLarge)
}
