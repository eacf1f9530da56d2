package manifest

import "fmt"

// ParseError represents a malformed or structurally incomplete manifest.
// Field names the offending manifest path when it is known.
type ParseError struct {
	File  string
	Field string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("manifest %s: field '%s': %v", e.File, e.Field, e.Cause)
	}
	return fmt.Sprintf("manifest %s: %v", e.File, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
