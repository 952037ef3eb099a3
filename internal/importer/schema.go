package importer

import (
	"fmt"

	"github.com/campusdesk/import-service/internal/models"
)

// Canonical column names. Header matching is exact and case-sensitive.
const (
	ColQuestionText  = "questionText"
	ColOptionA       = "optionA"
	ColOptionB       = "optionB"
	ColOptionC       = "optionC"
	ColOptionD       = "optionD"
	ColCorrectAnswer = "correctAnswer"
	ColQuestionType  = "questionType"
	ColMarks         = "marks"
	ColDifficulty    = "difficulty"
	ColExplanation   = "explanation"
	ColCategory      = "category"

	ColCourseCode  = "courseCode"
	ColCourseName  = "courseName"
	ColCredits     = "credits"
	ColDepartment  = "department"
	ColSemester    = "semester"
	ColDescription = "description"
)

// Numeric bounds, closed intervals.
const (
	MinMarks = 1
	MaxMarks = 10

	MinCredits = 1
	MaxCredits = 6
)

// Schema fixes the column contract of one import entity: the full
// canonical header in order, and the subset that must be present for
// the upload to parse at all.
type Schema struct {
	Entity   models.ImportEntity
	Columns  []string
	Required []string
}

var questionSchema = Schema{
	Entity: models.EntityQuestions,
	Columns: []string{
		ColQuestionText, ColOptionA, ColOptionB, ColOptionC, ColOptionD,
		ColCorrectAnswer, ColQuestionType, ColMarks, ColDifficulty,
		ColExplanation, ColCategory,
	},
	Required: []string{
		ColQuestionText, ColCorrectAnswer, ColQuestionType, ColMarks,
		ColDifficulty, ColCategory,
	},
}

var courseSchema = Schema{
	Entity: models.EntityCourses,
	Columns: []string{
		ColCourseCode, ColCourseName, ColCredits, ColDepartment,
		ColSemester, ColDescription,
	},
	Required: []string{
		ColCourseCode, ColCourseName, ColCredits, ColDepartment,
		ColSemester,
	},
}

// SchemaFor returns the column contract for an entity.
func SchemaFor(entity models.ImportEntity) (Schema, error) {
	switch entity {
	case models.EntityQuestions:
		return questionSchema, nil
	case models.EntityCourses:
		return courseSchema, nil
	default:
		return Schema{}, fmt.Errorf("no schema for entity %q", entity)
	}
}
