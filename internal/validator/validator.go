package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campusdesk/import-service/internal/models"
)

// Validator is the central validator instance shared by services and
// handlers: struct-tag validation for request DTOs plus document-level
// rules for the entities the importer persists.
type Validator struct {
	structValidator   *validator.Validate
	documentValidator *DocumentValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		documentValidator: NewDocumentValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateStructPartial validates the tags of the named fields only,
// for structs shared by callers that consume different subsets.
func (v *Validator) ValidateStructPartial(s interface{}, fields ...string) error {
	return v.structValidator.StructPartial(s, fields...)
}

// Document returns the document validator
func (v *Validator) Document() *DocumentValidator {
	return v.documentValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("question_category", validateQuestionCategory)
	validate.RegisterValidation("semester_term", validateSemesterTerm)
	validate.RegisterValidation("import_entity", validateImportEntity)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validType := range models.ValidQuestionTypes() {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validLevel := range models.ValidDifficulties() {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func validateQuestionCategory(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validCategory := range models.ValidCategories() {
		if string(validCategory) == value {
			return true
		}
	}
	return false
}

func validateSemesterTerm(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, validSemester := range models.ValidSemesters() {
		if string(validSemester) == value {
			return true
		}
	}
	return false
}

func validateImportEntity(fl validator.FieldLevel) bool {
	_, err := models.ParseImportEntity(fl.Field().String())
	return err == nil
}
