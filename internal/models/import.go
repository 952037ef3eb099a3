package models

import (
	"fmt"
	"strings"
	"time"
)

// ImportEntity selects the target schema and collection of an upload.
type ImportEntity string

const (
	EntityQuestions ImportEntity = "questions"
	EntityCourses   ImportEntity = "courses"
)

func ParseImportEntity(s string) (ImportEntity, error) {
	switch ImportEntity(strings.ToLower(strings.TrimSpace(s))) {
	case EntityQuestions:
		return EntityQuestions, nil
	case EntityCourses:
		return EntityCourses, nil
	default:
		return "", fmt.Errorf("unknown import entity %q", s)
	}
}

// ImportState is the lifecycle of one upload's session. The machine is
// single-use: no state is ever re-entered.
type ImportState string

const (
	ImportIdle                 ImportState = "idle"
	ImportValidating           ImportState = "validating"
	ImportAwaitingConfirmation ImportState = "awaiting_confirmation"
	ImportCommitting           ImportState = "committing"
	ImportDone                 ImportState = "done"
	ImportPartiallyFailed      ImportState = "partially_failed"
)

// ImportValidationError is one per-row validation failure. Row is
// 1-based and header-relative (the first data line is row 1).
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code,omitempty"`
}

func (e ImportValidationError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// Rule codes carried on ImportValidationError.Code.
const (
	RuleRequired  = "required"
	RuleEnum      = "enum"
	RuleRange     = "range"
	RuleAnswerKey = "answer_key"
)

// ImportItem is the typed projection of one valid row: exactly one of
// Question or Course is set, matching Entity.
type ImportItem struct {
	Row      int          `json:"row"`
	Entity   ImportEntity `json:"entity"`
	Question *Question    `json:"question,omitempty"`
	Course   *Course      `json:"course,omitempty"`
}

// Duplicate flags a valid row whose key matches an existing document.
type Duplicate struct {
	Row        int    `json:"row"`
	Key        string `json:"key"`
	ExistingID string `json:"existing_id"`
}

// CommitItemError records one failed write during the commit pass.
type CommitItemError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CommitTally is the final outcome of a commit pass. Invariant:
// Succeeded + Failed + SkippedDuplicates equals the session's valid
// item count.
type CommitTally struct {
	Succeeded         int `json:"succeeded"`
	Failed            int `json:"failed"`
	SkippedDuplicates int `json:"skipped_duplicates"`
}

func (t CommitTally) Total() int {
	return t.Succeeded + t.Failed + t.SkippedDuplicates
}

// ImportSummary is the API-facing snapshot of a session.
type ImportSummary struct {
	SessionID string       `json:"session_id"`
	Entity    ImportEntity `json:"entity"`
	State     ImportState  `json:"state"`
	FileName  string       `json:"file_name"`

	TotalRows  int `json:"total_rows"`
	ValidItems int `json:"valid_items"`
	ErrorCount int `json:"error_count"`

	Errors     []ImportValidationError `json:"errors,omitempty"`
	Duplicates []Duplicate             `json:"duplicates,omitempty"`
	Warnings   []string                `json:"warnings,omitempty"`

	Tally        *CommitTally      `json:"tally,omitempty"`
	CommitErrors []CommitItemError `json:"commit_errors,omitempty"`
	Progress     float64           `json:"progress"`

	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
