package plan

import "fmt"

// ConnectionError represents a failure to reach the platform.
type ConnectionError struct {
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("platform connection failed: %v", e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// PlanningError represents a desired/current state conflict that cannot be
// reconciled automatically, such as a change to an immutable field.
type PlanningError struct {
	Service string
	Field   string
	Message string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("cannot plan service '%s': %s: %s", e.Service, e.Field, e.Message)
}

// ApplyError represents a failed reconciliation action.
type ApplyError struct {
	Service string
	Action  string
	Cause   error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("action '%s' on service '%s' failed: %v", e.Action, e.Service, e.Cause)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}

// SecretError represents a secret reference that could not be resolved.
type SecretError struct {
	EnvVar string
	Ref    string
	Cause  error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("env var '%s': secret '%s' could not be resolved: %v", e.EnvVar, e.Ref, e.Cause)
}

func (e *SecretError) Unwrap() error {
	return e.Cause
}
