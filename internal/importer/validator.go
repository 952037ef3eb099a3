package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/campusdesk/import-service/internal/models"
)

// RowValidator classifies RawRecords for one entity. It is pure and
// never touches the store or the clock.
type RowValidator struct {
	entity models.ImportEntity
}

func NewRowValidator(entity models.ImportEntity) (*RowValidator, error) {
	if _, err := SchemaFor(entity); err != nil {
		return nil, err
	}
	return &RowValidator{entity: entity}, nil
}

// Validate classifies one record. A row with at least one error never
// materializes an item, and all declared rules run so every problem in
// the row surfaces at once.
func (v *RowValidator) Validate(rec RawRecord) (*models.ImportItem, []models.ImportValidationError) {
	switch v.entity {
	case models.EntityQuestions:
		return validateQuestion(rec)
	case models.EntityCourses:
		return validateCourse(rec)
	default:
		return nil, []models.ImportValidationError{{
			Row: rec.Row, Column: "", Message: fmt.Sprintf("unsupported entity %q", v.entity),
		}}
	}
}

// ValidateAll runs the full pass over a record sequence. Rows are
// evaluated independently; a failing row never stops later rows.
// Items come back in input row order.
func (v *RowValidator) ValidateAll(records []RawRecord) ([]*models.ImportItem, []models.ImportValidationError) {
	var items []*models.ImportItem
	var errs []models.ImportValidationError

	for _, rec := range records {
		item, rowErrs := v.Validate(rec)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		items = append(items, item)
	}
	return items, errs
}

func validateQuestion(rec RawRecord) (*models.ImportItem, []models.ImportValidationError) {
	var errs []models.ImportValidationError
	fail := func(col, msg, code string) {
		errs = append(errs, models.ImportValidationError{
			Row: rec.Row, Column: col, Message: msg,
			Value: strings.TrimSpace(rec.Get(col)), Code: code,
		})
	}

	text := requiredValue(rec, ColQuestionText, fail)

	qtypeRaw := enumValue(rec, ColQuestionType, questionTypeNames(), fail)
	qtype := models.QuestionType(qtypeRaw)

	marks := intValue(rec, ColMarks, MinMarks, MaxMarks, fail)
	difficulty := enumValue(rec, ColDifficulty, difficultyNames(), fail)
	category := enumValue(rec, ColCategory, categoryNames(), fail)
	answerRaw := requiredValue(rec, ColCorrectAnswer, fail)
	explanation := strings.TrimSpace(rec.Get(ColExplanation))

	options := collectOptions(rec)

	// Answer-key resolution needs a known type and a present answer;
	// both already failed above otherwise.
	var answerIndex int
	var answerText string
	if qtype != "" && answerRaw != "" {
		switch qtype {
		case models.QuestionMCQ:
			idx, ok := letterIndex(strings.ToUpper(answerRaw))
			if !ok || idx >= len(options) {
				fail(ColCorrectAnswer, "must be a letter matching a non-empty option", models.RuleAnswerKey)
			} else {
				answerIndex = idx
			}
		case models.QuestionTrueFalse:
			switch strings.ToLower(answerRaw) {
			case "true":
				answerIndex = 0
			case "false":
				answerIndex = 1
			default:
				fail(ColCorrectAnswer, "must be True or False", models.RuleAnswerKey)
			}
			options = []string{"True", "False"}
		case models.QuestionShortAnswer:
			answerText = answerRaw
			options = nil
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{
		Text:        text,
		Type:        qtype,
		Options:     options,
		AnswerIndex: answerIndex,
		AnswerText:  answerText,
		Marks:       marks,
		Difficulty:  models.DifficultyLevel(difficulty),
		Explanation: explanation,
		Category:    models.QuestionCategory(category),
	}
	return &models.ImportItem{Row: rec.Row, Entity: models.EntityQuestions, Question: question}, nil
}

func validateCourse(rec RawRecord) (*models.ImportItem, []models.ImportValidationError) {
	var errs []models.ImportValidationError
	fail := func(col, msg, code string) {
		errs = append(errs, models.ImportValidationError{
			Row: rec.Row, Column: col, Message: msg,
			Value: strings.TrimSpace(rec.Get(col)), Code: code,
		})
	}

	code := requiredValue(rec, ColCourseCode, fail)
	name := requiredValue(rec, ColCourseName, fail)
	credits := intValue(rec, ColCredits, MinCredits, MaxCredits, fail)
	department := requiredValue(rec, ColDepartment, fail)
	semester := enumValue(rec, ColSemester, semesterNames(), fail)
	description := strings.TrimSpace(rec.Get(ColDescription))

	if len(errs) > 0 {
		return nil, errs
	}

	course := &models.Course{
		Code:        code,
		Name:        name,
		Credits:     credits,
		Department:  department,
		Semester:    models.Semester(semester),
		Description: description,
	}
	return &models.ImportItem{Row: rec.Row, Entity: models.EntityCourses, Course: course}, nil
}

// requiredValue trims the field and records a required-rule error when
// the result is empty.
func requiredValue(rec RawRecord, col string, fail func(col, msg, code string)) string {
	value := strings.TrimSpace(rec.Get(col))
	if value == "" {
		fail(col, "required field", models.RuleRequired)
	}
	return value
}

// enumValue enforces required plus a case-sensitive exact match
// against the allowed set.
func enumValue(rec RawRecord, col string, allowed []string, fail func(col, msg, code string)) string {
	value := strings.TrimSpace(rec.Get(col))
	if value == "" {
		fail(col, "required field", models.RuleRequired)
		return ""
	}
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	fail(col, "must be one of: "+strings.Join(allowed, ", "), models.RuleEnum)
	return ""
}

// intValue enforces required plus an integer in the closed interval
// [min, max].
func intValue(rec RawRecord, col string, min, max int, fail func(col, msg, code string)) int {
	raw := strings.TrimSpace(rec.Get(col))
	if raw == "" {
		fail(col, "required field", models.RuleRequired)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		fail(col, fmt.Sprintf("must be an integer between %d and %d", min, max), models.RuleRange)
		return 0
	}
	return n
}

// collectOptions gathers the non-empty option values in column order.
// The answer letter indexes into this collapsed list.
func collectOptions(rec RawRecord) []string {
	var options []string
	for _, col := range []string{ColOptionA, ColOptionB, ColOptionC, ColOptionD} {
		if v := strings.TrimSpace(rec.Get(col)); v != "" {
			options = append(options, v)
		}
	}
	return options
}

// letterIndex maps an uppercased answer letter to its ordinal position,
// 'A' being 0.
func letterIndex(letter string) (int, bool) {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, false
	}
	return int(letter[0] - 'A'), true
}

func questionTypeNames() []string {
	types := models.ValidQuestionTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

func difficultyNames() []string {
	levels := models.ValidDifficulties()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = string(l)
	}
	return names
}

func categoryNames() []string {
	categories := models.ValidCategories()
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

func semesterNames() []string {
	semesters := models.ValidSemesters()
	names := make([]string, len(semesters))
	for i, s := range semesters {
		names[i] = string(s)
	}
	return names
}
