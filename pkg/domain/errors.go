package domain

import (
	"errors"
	"fmt"
)

// ErrTicketNotFound is returned when a ticket ID cannot be found in the store.
var ErrTicketNotFound = errors.New("ticket not found")

// FieldError represents a single input field validation failure.
type FieldError struct {
	Field  string // field name
	Reason string // human-readable reason for failure
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// ValidationError aggregates every field failure found in an input
// payload. It is the only fatal error a run can produce: when it is
// returned, no stage has executed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return "invalid input: " + e.Fields[0].Error()
	}
	msg := fmt.Sprintf("invalid input: %d field errors:", len(e.Fields))
	for _, f := range e.Fields {
		msg += "\n  - " + f.Error()
	}
	return msg
}

// UnimplementedAbilityError reports an ability name that could not be
// resolved under its namespace. Caught at invocation granularity and
// recorded into the state; never aborts the run.
type UnimplementedAbilityError struct {
	Namespace Namespace
	Name      string
}

func (e *UnimplementedAbilityError) Error() string {
	return fmt.Sprintf("ability %q is not implemented in namespace %q", e.Name, e.Namespace)
}

// AbilityExecutionError wraps a failure raised by an ability's own
// logic. Same containment as UnimplementedAbilityError.
type AbilityExecutionError struct {
	Stage   string
	Ability string
	Err     error
}

func (e *AbilityExecutionError) Error() string {
	return fmt.Sprintf("ability %q failed in stage %q: %v", e.Ability, e.Stage, e.Err)
}

func (e *AbilityExecutionError) Unwrap() error { return e.Err }

// ConnectorError wraps a knowledge connector failure. Recorded
// distinctly from a successful search with zero results: failure and
// no-match are different outcomes.
type ConnectorError struct {
	Query string
	Err   error
}

func (e *ConnectorError) Error() string {
	return fmt.Sprintf("knowledge connector failed for query %q: %v", e.Query, e.Err)
}

func (e *ConnectorError) Unwrap() error { return e.Err }
