package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that the requested record does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSlot indicates a day index outside [0,6] or an unknown meal type.
	ErrInvalidSlot = errors.New("invalid slot")
)

// ValidationError rejects input before any I/O takes place.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// MissingRecipesError lists recipe ids referenced by a plan that the catalog
// could not resolve.
type MissingRecipesError struct {
	WeekplanID string
	RecipeIDs  []string
}

func (e *MissingRecipesError) Error() string {
	return fmt.Sprintf("weekplan %s references %d missing recipe(s): %s",
		e.WeekplanID, len(e.RecipeIDs), strings.Join(e.RecipeIDs, ", "))
}
