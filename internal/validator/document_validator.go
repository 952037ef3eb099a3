package validator

import (
	"fmt"

	"github.com/campusdesk/import-service/internal/models"
)

// DocumentValidator guards the persistence boundary: every document
// handed to the store must pass these rules regardless of which path
// produced it.
type DocumentValidator struct{}

// NewDocumentValidator creates a new document validator
func NewDocumentValidator() *DocumentValidator {
	return &DocumentValidator{}
}

// ValidateQuestion validates a complete question document
func (v *DocumentValidator) ValidateQuestion(question *models.Question) error {
	if question == nil {
		return fmt.Errorf("question cannot be nil")
	}
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}
	if question.Marks < 1 || question.Marks > 10 {
		return fmt.Errorf("question marks must be between 1 and 10")
	}
	if !validateDifficultyValue(question.Difficulty) {
		return fmt.Errorf("unknown difficulty level: %s", question.Difficulty)
	}
	if !validateCategoryValue(question.Category) {
		return fmt.Errorf("unknown category: %s", question.Category)
	}

	switch question.Type {
	case models.QuestionMCQ, models.QuestionTrueFalse:
		if len(question.Options) == 0 {
			return fmt.Errorf("%s question requires options", question.Type)
		}
		if question.AnswerIndex < 0 || question.AnswerIndex >= len(question.Options) {
			return fmt.Errorf("answer index %d is outside the %d options", question.AnswerIndex, len(question.Options))
		}
	case models.QuestionShortAnswer:
		if question.AnswerText == "" {
			return fmt.Errorf("short answer question requires answer text")
		}
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}

	return nil
}

// ValidateCourse validates a complete course document
func (v *DocumentValidator) ValidateCourse(course *models.Course) error {
	if course == nil {
		return fmt.Errorf("course cannot be nil")
	}
	if course.Code == "" {
		return fmt.Errorf("course code is required")
	}
	if course.Name == "" {
		return fmt.Errorf("course name is required")
	}
	if course.Credits < 1 || course.Credits > 6 {
		return fmt.Errorf("course credits must be between 1 and 6")
	}
	if course.Department == "" {
		return fmt.Errorf("course department is required")
	}
	if !validateSemesterValue(course.Semester) {
		return fmt.Errorf("unknown semester: %s", course.Semester)
	}
	return nil
}

func validateDifficultyValue(level models.DifficultyLevel) bool {
	for _, valid := range models.ValidDifficulties() {
		if level == valid {
			return true
		}
	}
	return false
}

func validateCategoryValue(category models.QuestionCategory) bool {
	for _, valid := range models.ValidCategories() {
		if category == valid {
			return true
		}
	}
	return false
}

func validateSemesterValue(semester models.Semester) bool {
	for _, valid := range models.ValidSemesters() {
		if semester == valid {
			return true
		}
	}
	return false
}
