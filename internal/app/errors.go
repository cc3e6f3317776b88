package app

import (
	"errors"
	"fmt"
)

var (
	// ErrNotEditing indicates a mutation outside edit mode.
	ErrNotEditing = errors.New("weekplan is not in edit mode")
	// ErrInvalidTransition indicates a mode change the editor does not allow.
	ErrInvalidTransition = errors.New("invalid editor transition")
	// ErrSaveInProgress indicates that a save of the same plan is still running.
	ErrSaveInProgress = errors.New("save already in progress")
	// ErrSaveFailed is the generic signal for any store failure during save.
	ErrSaveFailed = errors.New("save failed")
)

// SaveError records which save step failed. It matches both ErrSaveFailed and
// the underlying cause with errors.Is.
type SaveError struct {
	PlanID string
	Step   string
	Err    error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save failed (%s): %v", e.Step, e.Err)
}

func (e *SaveError) Unwrap() []error {
	return []error{ErrSaveFailed, e.Err}
}
