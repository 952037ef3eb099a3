package importer

import (
	"errors"
	"strings"
	"testing"
)

func TestReaderReadsRecordsInOrder(t *testing.T) {
	input := "courseCode,courseName\nCS101,Intro to Programming\nMATH201,Linear Algebra\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	if records[0].Row != 1 || records[0].Get(ColCourseCode) != "CS101" {
		t.Errorf("Expected row 1 CS101, got row %d %q", records[0].Row, records[0].Get(ColCourseCode))
	}
	if records[1].Row != 2 || records[1].Get(ColCourseName) != "Linear Algebra" {
		t.Errorf("Expected row 2 Linear Algebra, got row %d %q", records[1].Row, records[1].Get(ColCourseName))
	}
}

func TestReaderSkipsBlankRowsButKeepsNumbering(t *testing.T) {
	// Row 2 is blank (empty fields only); numbering must still match
	// the source file, so the last record is row 3.
	input := "courseCode,courseName\nCS101,Intro\n,\nMATH201,Linear Algebra\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Row != 1 {
		t.Errorf("Expected first record on row 1, got %d", records[0].Row)
	}
	if records[1].Row != 3 {
		t.Errorf("Expected second record on row 3, got %d", records[1].Row)
	}
}

func TestReaderPadsShortRows(t *testing.T) {
	input := "courseCode,courseName,department\nCS101,Intro\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if got := records[0].Get(ColDepartment); got != "" {
		t.Errorf("Expected missing trailing column to read as empty, got %q", got)
	}
}

func TestReaderDropsExtraFields(t *testing.T) {
	rows := [][]string{
		{"courseCode", "courseName"},
		{"CS101", "Intro", "stray", "values"},
	}

	r, err := NewRowsReader(rows, []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewRowsReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0].Fields) != 2 {
		t.Errorf("Expected 2 fields, got %d", len(records[0].Fields))
	}
	if records[0].Get(ColCourseName) != "Intro" {
		t.Errorf("Expected courseName Intro, got %q", records[0].Get(ColCourseName))
	}
}

func TestReaderQuotedFields(t *testing.T) {
	input := "courseCode,courseName\n" +
		`CS101,"Programming, with ""style"""` + "\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	want := `Programming, with "style"`
	if got := records[0].Get(ColCourseName); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestReaderMissingColumns(t *testing.T) {
	// questionType and the other required columns are absent; the header
	// must be rejected before any row is produced.
	input := "questionText,optionA\n2+2=?,3\n"

	_, err := NewReader(strings.NewReader(input), questionSchema.Required)
	if err == nil {
		t.Fatal("Expected an error for a header missing required columns")
	}
	if !IsMissingColumns(err) {
		t.Fatalf("Expected MissingColumnsError, got %T: %v", err, err)
	}

	var missingErr *MissingColumnsError
	if !errors.As(err, &missingErr) {
		t.Fatalf("errors.As failed for %v", err)
	}
	want := []string{ColCorrectAnswer, ColQuestionType, ColMarks, ColDifficulty, ColCategory}
	if len(missingErr.Missing) != len(want) {
		t.Fatalf("Expected %d missing columns, got %v", len(want), missingErr.Missing)
	}
	for i, col := range want {
		if missingErr.Missing[i] != col {
			t.Errorf("Expected missing[%d] = %s, got %s", i, col, missingErr.Missing[i])
		}
	}
}

func TestReaderEmptyInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no content at all", ""},
		{"header only", "courseCode,courseName\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input), []string{ColCourseCode})
			if !IsEmptyInput(err) {
				t.Errorf("Expected ErrEmptyInput, got %v", err)
			}
		})
	}
}

func TestReaderAllRowsBlank(t *testing.T) {
	// Blank data rows parse but produce no records; the caller decides
	// what an effectively-empty upload means.
	input := "courseCode,courseName\n,\n , \n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestReaderStripsHeaderBOM(t *testing.T) {
	input := "\uFEFFcourseCode,courseName\nCS101,Intro\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if got := r.Headers()[0]; got != ColCourseCode {
		t.Errorf("Expected BOM stripped from first header, got %q", got)
	}
}

func TestReaderTrimsHeaderWhitespace(t *testing.T) {
	input := " courseCode , courseName \nCS101,Intro\n"

	r, err := NewReader(strings.NewReader(input), []string{ColCourseCode, ColCourseName})
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if records[0].Get(ColCourseCode) != "CS101" {
		t.Errorf("Expected trimmed header to map values, got %q", records[0].Get(ColCourseCode))
	}
}
