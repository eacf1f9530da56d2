// Package validate applies platform rules to a service configuration and
// reports every violation it finds. Validation is pure: the same config and
// limits always produce the same issue sequence.
package validate

import (
	"fmt"
	"strings"
)

// Severity classifies an issue. Errors block planning, warnings do not.
type Severity int

const (
	// SeverityWarning marks an issue that does not block deployment.
	SeverityWarning Severity = iota
	// SeverityError marks an issue that must be fixed before planning.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue is a single validation finding tied to a manifest field path.
type Issue struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Error aggregates the error-severity issues of a failed validation.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			msgs = append(msgs, issue.String())
		}
	}
	return fmt.Sprintf("validation failed:\n%s", strings.Join(msgs, "\n"))
}
