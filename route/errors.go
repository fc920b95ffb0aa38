package route

import (
	"errors"
	"fmt"
)

// Sentinel errors for route definitions.
var (
	ErrEmptyMethod = errors.New("route: method is required")
	ErrEmptyPath   = errors.New("route: path is required")
)

// MissingParamError reports a path placeholder with no supplied value.
// It is detected before any network call is made.
type MissingParamError struct {
	// Name is the placeholder name without the leading colon.
	Name string

	// Template is the path template containing the placeholder.
	Template string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("route: no value for path parameter %q in %q", e.Name, e.Template)
}
