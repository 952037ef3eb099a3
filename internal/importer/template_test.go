package importer

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/campusdesk/import-service/internal/models"
)

func TestTemplateCSVBlankIsHeaderOnly(t *testing.T) {
	data, err := TemplateCSV(models.EntityQuestions, TemplateBlank)
	if err != nil {
		t.Fatalf("TemplateCSV failed: %v", err)
	}

	want := strings.Join(questionSchema.Columns, ",") + "\n"
	if string(data) != want {
		t.Errorf("Expected canonical header line %q, got %q", want, string(data))
	}

	// A header-only file is an empty upload by definition.
	_, err = NewReader(bytes.NewReader(data), questionSchema.Required)
	if !IsEmptyInput(err) {
		t.Errorf("Expected ErrEmptyInput parsing a blank template, got %v", err)
	}
}

func TestQuestionTemplateRoundTrip(t *testing.T) {
	data, err := TemplateCSV(models.EntityQuestions, TemplateExample)
	if err != nil {
		t.Fatalf("TemplateCSV failed: %v", err)
	}

	r, err := NewReader(bytes.NewReader(data), questionSchema.Required)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	v, _ := NewRowValidator(models.EntityQuestions)
	items, errs := v.ValidateAll(records)
	if len(errs) != 0 {
		t.Fatalf("Expected the example template to validate cleanly, got %v", errs)
	}

	want := ExampleQuestions()
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if !reflect.DeepEqual(item.Question, want[i]) {
			t.Errorf("Question %d did not survive the round trip:\n got %+v\nwant %+v", i, item.Question, want[i])
		}
	}
}

func TestCourseTemplateRoundTrip(t *testing.T) {
	data, err := TemplateCSV(models.EntityCourses, TemplateExample)
	if err != nil {
		t.Fatalf("TemplateCSV failed: %v", err)
	}

	r, err := NewReader(bytes.NewReader(data), courseSchema.Required)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	v, _ := NewRowValidator(models.EntityCourses)
	items, errs := v.ValidateAll(records)
	if len(errs) != 0 {
		t.Fatalf("Expected the example template to validate cleanly, got %v", errs)
	}

	want := ExampleCourses()
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if !reflect.DeepEqual(item.Course, want[i]) {
			t.Errorf("Course %d did not survive the round trip:\n got %+v\nwant %+v", i, item.Course, want[i])
		}
	}
}

func TestQuestionTemplateXLSXRoundTrip(t *testing.T) {
	data, err := TemplateXLSX(models.EntityQuestions, TemplateExample)
	if err != nil {
		t.Fatalf("TemplateXLSX failed: %v", err)
	}

	r, err := NewXLSXReader(data, questionSchema.Required)
	if err != nil {
		t.Fatalf("NewXLSXReader failed: %v", err)
	}
	records, err := ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	v, _ := NewRowValidator(models.EntityQuestions)
	items, errs := v.ValidateAll(records)
	if len(errs) != 0 {
		t.Fatalf("Expected the workbook template to validate cleanly, got %v", errs)
	}

	want := ExampleQuestions()
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i, item := range items {
		if !reflect.DeepEqual(item.Question, want[i]) {
			t.Errorf("Question %d did not survive the workbook round trip:\n got %+v\nwant %+v", i, item.Question, want[i])
		}
	}
}

func TestTemplateXLSXBlankIsHeaderOnly(t *testing.T) {
	data, err := TemplateXLSX(models.EntityCourses, TemplateBlank)
	if err != nil {
		t.Fatalf("TemplateXLSX failed: %v", err)
	}

	_, err = NewXLSXReader(data, courseSchema.Required)
	if !IsEmptyInput(err) {
		t.Errorf("Expected ErrEmptyInput parsing a blank workbook, got %v", err)
	}
}

func TestEncodeQuestionsCSVHeaderOrder(t *testing.T) {
	data, err := EncodeQuestionsCSV(ExampleQuestions()[:1])
	if err != nil {
		t.Fatalf("EncodeQuestionsCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if lines[0] != strings.Join(questionSchema.Columns, ",") {
		t.Errorf("Expected canonical header, got %q", lines[0])
	}
	if len(lines) != 2 {
		t.Errorf("Expected header plus one row, got %d lines", len(lines))
	}
}

func TestParseTemplateMode(t *testing.T) {
	tests := []struct {
		input   string
		want    TemplateMode
		wantErr bool
	}{
		{"", TemplateBlank, false},
		{"blank", TemplateBlank, false},
		{"example", TemplateExample, false},
		{"filled", "", true},
	}

	for _, tt := range tests {
		mode, err := ParseTemplateMode(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Expected an error for %q", tt.input)
			}
			continue
		}
		if err != nil || mode != tt.want {
			t.Errorf("ParseTemplateMode(%q) = %v, %v; want %v", tt.input, mode, err, tt.want)
		}
	}
}

func TestAnswerLetter(t *testing.T) {
	if AnswerLetter(0) != "A" || AnswerLetter(1) != "B" || AnswerLetter(3) != "D" {
		t.Errorf("Unexpected letters: %s %s %s", AnswerLetter(0), AnswerLetter(1), AnswerLetter(3))
	}
}
