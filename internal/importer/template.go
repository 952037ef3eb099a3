package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/jszwec/csvutil"
	"github.com/xuri/excelize/v2"

	"github.com/campusdesk/import-service/internal/models"
)

// TemplateMode selects between a header-only file and one populated
// with example rows.
type TemplateMode string

const (
	TemplateBlank   TemplateMode = "blank"
	TemplateExample TemplateMode = "example"
)

func ParseTemplateMode(s string) (TemplateMode, error) {
	switch TemplateMode(s) {
	case "", TemplateBlank:
		return TemplateBlank, nil
	case TemplateExample:
		return TemplateExample, nil
	default:
		return "", fmt.Errorf("unknown template mode %q", s)
	}
}

// questionCSVRow mirrors the canonical question header, in order.
type questionCSVRow struct {
	QuestionText  string `csv:"questionText"`
	OptionA       string `csv:"optionA"`
	OptionB       string `csv:"optionB"`
	OptionC       string `csv:"optionC"`
	OptionD       string `csv:"optionD"`
	CorrectAnswer string `csv:"correctAnswer"`
	QuestionType  string `csv:"questionType"`
	Marks         int    `csv:"marks"`
	Difficulty    string `csv:"difficulty"`
	Explanation   string `csv:"explanation"`
	Category      string `csv:"category"`
}

func (r questionCSVRow) values() []interface{} {
	return []interface{}{
		r.QuestionText, r.OptionA, r.OptionB, r.OptionC, r.OptionD,
		r.CorrectAnswer, r.QuestionType, r.Marks, r.Difficulty,
		r.Explanation, r.Category,
	}
}

// courseCSVRow mirrors the canonical course header, in order.
type courseCSVRow struct {
	CourseCode  string `csv:"courseCode"`
	CourseName  string `csv:"courseName"`
	Credits     int    `csv:"credits"`
	Department  string `csv:"department"`
	Semester    string `csv:"semester"`
	Description string `csv:"description"`
}

func (r courseCSVRow) values() []interface{} {
	return []interface{}{
		r.CourseCode, r.CourseName, r.Credits, r.Department,
		r.Semester, r.Description,
	}
}

// AnswerLetter renders an option index back to its answer letter, 'A'
// for index 0.
func AnswerLetter(index int) string {
	return string(rune('A' + index))
}

func questionToRow(q *models.Question) questionCSVRow {
	row := questionCSVRow{
		QuestionText: q.Text,
		QuestionType: string(q.Type),
		Marks:        q.Marks,
		Difficulty:   string(q.Difficulty),
		Explanation:  q.Explanation,
		Category:     string(q.Category),
	}

	optionCols := []*string{&row.OptionA, &row.OptionB, &row.OptionC, &row.OptionD}
	for i, opt := range q.Options {
		if i >= len(optionCols) {
			break
		}
		*optionCols[i] = opt
	}

	switch q.Type {
	case models.QuestionMCQ:
		row.CorrectAnswer = AnswerLetter(q.AnswerIndex)
	case models.QuestionTrueFalse:
		row.CorrectAnswer = q.CorrectOption()
	default:
		row.CorrectAnswer = q.AnswerText
	}
	return row
}

func courseToRow(c *models.Course) courseCSVRow {
	return courseCSVRow{
		CourseCode:  c.Code,
		CourseName:  c.Name,
		Credits:     c.Credits,
		Department:  c.Department,
		Semester:    string(c.Semester),
		Description: c.Description,
	}
}

// EncodeQuestionsCSV writes questions in canonical column order. The
// output re-imports cleanly through the question schema.
func EncodeQuestionsCSV(questions []*models.Question) ([]byte, error) {
	rows := make([]questionCSVRow, len(questions))
	for i, q := range questions {
		rows[i] = questionToRow(q)
	}
	return encodeCSV(questionCSVRow{}, func(enc *csvutil.Encoder) error {
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// EncodeCoursesCSV writes courses in canonical column order.
func EncodeCoursesCSV(courses []*models.Course) ([]byte, error) {
	rows := make([]courseCSVRow, len(courses))
	for i, c := range courses {
		rows[i] = courseToRow(c)
	}
	return encodeCSV(courseCSVRow{}, func(enc *csvutil.Encoder) error {
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeCSV(header interface{}, encodeRows func(enc *csvutil.Encoder) error) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if err := enc.EncodeHeader(header); err != nil {
		return nil, fmt.Errorf("encode header: %w", err)
	}
	if err := encodeRows(enc); err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TemplateCSV emits the canonical upload template for an entity:
// header only, or header plus example rows covering each question
// type.
func TemplateCSV(entity models.ImportEntity, mode TemplateMode) ([]byte, error) {
	switch entity {
	case models.EntityQuestions:
		if mode == TemplateExample {
			return EncodeQuestionsCSV(ExampleQuestions())
		}
		return EncodeQuestionsCSV(nil)
	case models.EntityCourses:
		if mode == TemplateExample {
			return EncodeCoursesCSV(ExampleCourses())
		}
		return EncodeCoursesCSV(nil)
	default:
		return nil, fmt.Errorf("no template for entity %q", entity)
	}
}

// TemplateXLSX is TemplateCSV in workbook form, one sheet.
func TemplateXLSX(entity models.ImportEntity, mode TemplateMode) ([]byte, error) {
	switch entity {
	case models.EntityQuestions:
		var questions []*models.Question
		if mode == TemplateExample {
			questions = ExampleQuestions()
		}
		return EncodeQuestionsXLSX(questions)
	case models.EntityCourses:
		var courses []*models.Course
		if mode == TemplateExample {
			courses = ExampleCourses()
		}
		return EncodeCoursesXLSX(courses)
	default:
		return nil, fmt.Errorf("no template for entity %q", entity)
	}
}

// EncodeQuestionsXLSX writes questions to a single-sheet workbook with
// the canonical header.
func EncodeQuestionsXLSX(questions []*models.Question) ([]byte, error) {
	rows := make([][]interface{}, len(questions))
	for i, q := range questions {
		rows[i] = questionToRow(q).values()
	}
	return encodeXLSX("Questions", questionSchema.Columns, rows)
}

// EncodeCoursesXLSX writes courses to a single-sheet workbook with the
// canonical header.
func EncodeCoursesXLSX(courses []*models.Course) ([]byte, error) {
	rows := make([][]interface{}, len(courses))
	for i, c := range courses {
		rows[i] = courseToRow(c).values()
	}
	return encodeXLSX("Courses", courseSchema.Columns, rows)
}

func encodeXLSX(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExampleQuestions returns one valid row per question type, used by
// example templates and tests.
func ExampleQuestions() []*models.Question {
	return []*models.Question{
		{
			Text:        "2+2=?",
			Type:        models.QuestionMCQ,
			Options:     []string{"3", "4", "5", "6"},
			AnswerIndex: 1,
			Marks:       1,
			Difficulty:  models.DifficultyEasy,
			Category:    models.CategoryMath,
		},
		{
			Text:        "Water boils at 100 degrees Celsius at sea level.",
			Type:        models.QuestionTrueFalse,
			Options:     []string{"True", "False"},
			AnswerIndex: 0,
			Marks:       2,
			Difficulty:  models.DifficultyEasy,
			Explanation: "Standard atmospheric pressure.",
			Category:    models.CategoryScience,
		},
		{
			Text:       "Name the capital city of France.",
			Type:       models.QuestionShortAnswer,
			AnswerText: "Paris",
			Marks:      3,
			Difficulty: models.DifficultyMedium,
			Category:   models.CategoryGeography,
		},
	}
}

// ExampleCourses returns sample course rows for example templates and
// tests.
func ExampleCourses() []*models.Course {
	return []*models.Course{
		{
			Code:        "CS101",
			Name:        "Introduction to Programming",
			Credits:     4,
			Department:  "Computer Science",
			Semester:    models.SemesterFall,
			Description: "Fundamentals of programming in Python.",
		},
		{
			Code:       "MATH201",
			Name:       "Linear Algebra",
			Credits:    3,
			Department: "Mathematics",
			Semester:   models.SemesterSpring,
		},
	}
}
