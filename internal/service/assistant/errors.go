package assistant

import "errors"

// Failure kinds of an assistant turn. Every failure aborts the turn; none is
// retried.
var (
	ErrConfiguration   = errors.New("configuration error")
	ErrMissingField    = errors.New("missing required field")
	ErrStoreRead       = errors.New("memory read error")
	ErrStoreWrite      = errors.New("memory write error")
	ErrModelInvocation = errors.New("model invocation failed")
	ErrEmptyReply      = errors.New("empty assistant reply")
)

// FieldError reports a missing required request field. It matches
// ErrMissingField with errors.Is.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "missing " + e.Field
}

func (e *FieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TurnError is a failed turn. Stage is the last stage the turn completed,
// Kind one of the sentinel errors above and Err the collaborator error, if
// any.
type TurnError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *TurnError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *TurnError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail returns the underlying collaborator message, or "" when there is none.
func (e *TurnError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
