package types

import "fmt"

// ErrorKind enumerates the fatal error taxonomy the engine can raise.
type ErrorKind string

const (
	ErrWorkflowInvalid        ErrorKind = "WorkflowInvalid"
	ErrDisabledBlockExecuted  ErrorKind = "DisabledBlockExecuted"
	ErrDisabledDependency     ErrorKind = "DisabledDependency"
	ErrReferenceNotFound      ErrorKind = "ReferenceNotFound"
	ErrInvalidReferencePath   ErrorKind = "InvalidReferencePath"
	ErrUnresolvedReference    ErrorKind = "UnresolvedReference"
	ErrEnvVarNotFound         ErrorKind = "EnvVarNotFound"
	ErrNoHandlerForBlock      ErrorKind = "NoHandlerForBlock"
	ErrToolNotFound           ErrorKind = "ToolNotFound"
	ErrToolExecutionFailed    ErrorKind = "ToolExecutionFailed"
	ErrInvalidResponseFormat  ErrorKind = "InvalidResponseFormat"
	ErrInvalidRoutingDecision ErrorKind = "InvalidRoutingDecision"
	ErrNoConditionPath        ErrorKind = "NoConditionPath"
	ErrConditionEvaluation    ErrorKind = "ConditionEvaluationError"
	ErrMissingConditionSource ErrorKind = "MissingConditionSource"
	ErrTimeout                ErrorKind = "Timeout"
)

// CoreError is the fatal error shape surfaced by every engine subsystem. It
// carries an enumerable kind (see the spec's error taxonomy) plus a
// human-readable message and, optionally, the underlying cause.
type CoreError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, &CoreError{Kind: X}) style matching on kind alone.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a CoreError of the given kind with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *CoreError {
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a CoreError of the given kind wrapping an underlying cause.
func WrapError(kind ErrorKind, cause error, format string, args ...interface{}) *CoreError {
	return &CoreError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}
