package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("marks", "must be between 1 and 10", "15")

	if err.Field != "marks" {
		t.Errorf("Expected field to be 'marks', got '%s'", err.Field)
	}

	if err.Message != "must be between 1 and 10" {
		t.Errorf("Expected message to be 'must be between 1 and 10', got '%s'", err.Message)
	}

	if err.Value != "15" {
		t.Errorf("Expected value to be '15', got '%v'", err.Value)
	}

	expected := "validation error on field 'marks': must be between 1 and 10"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("courseCode", "is required", nil))
	expected := "validation failed: courseCode is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("credits", "must be between 1 and 6", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("difficulty", "must be Easy, Medium, or Hard", "difficulty_level", "Impossible")

	if err.Rule != "difficulty_level" {
		t.Errorf("Expected rule to be 'difficulty_level', got '%s'", err.Rule)
	}

	if err.Field != "difficulty" {
		t.Errorf("Expected field to be 'difficulty', got '%s'", err.Field)
	}
}
