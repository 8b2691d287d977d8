package apierror

import "errors"

// Causes carried by PreconditionError.
var (
	ErrRequired      = errors.New("is required")
	ErrInvalidFormat = errors.New("has invalid format")
	ErrUnsupported   = errors.New("is not supported")
)

// PreconditionError reports a call made with invalid arguments. It is raised
// before any network activity and is never an *Error.
type PreconditionError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Field + " is invalid"
	}
	return e.Field + " " + e.Err.Error()
}

// Unwrap exposes the cause for errors.Is.
func (e *PreconditionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Required reports a missing argument.
func Required(field string) error {
	return &PreconditionError{Field: field, Err: ErrRequired}
}

// InvalidFormat reports a malformed argument.
func InvalidFormat(field string) error {
	return &PreconditionError{Field: field, Err: ErrInvalidFormat}
}

// Unsupported reports an argument outside the accepted set.
func Unsupported(field string) error {
	return &PreconditionError{Field: field, Err: ErrUnsupported}
}

// IsPrecondition reports whether err is a PreconditionError.
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}
