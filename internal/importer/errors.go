package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campusdesk/import-service/internal/models"
)

// ErrEmptyInput is returned when an upload has no header line or no
// data lines at all. Fatal: nothing is parsed.
var ErrEmptyInput = errors.New("input is empty or contains no data rows")

// MissingColumnsError is returned when the header line lacks required
// columns. Fatal: no row is produced.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// StoreUnavailableError marks a failed store round-trip in a phase
// that degrades to a warning (duplicate snapshot, count refresh).
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// StateError reports an operation attempted from the wrong session
// state. The machine is single-use, so these are permanent.
type StateError struct {
	Op    string
	State models.ImportState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a session in state %q", e.Op, e.State)
}

func IsEmptyInput(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

func IsMissingColumns(err error) bool {
	var target *MissingColumnsError
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}

func IsStateError(err error) bool {
	var target *StateError
	return errors.As(err, &target)
}
