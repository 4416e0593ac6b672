package core

import "github.com/pkg/errors"

// ValidationFailedMsg is the message of a ValidationError without cause.
const ValidationFailedMsg = "validation failed"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a client error (HTTP 400) carrying an optional cause and per-field messages.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (ve ValidationError) Error() string {
	if ve.Err == nil {
		return ValidationFailedMsg
	}
	return ve.Err.Error()
}

func (ve ValidationError) Unwrap() error { return ve.Err }

// FieldMap indexes the field messages by field name; nil when there are none.
// The first message reported for a field wins.
func (ve ValidationError) FieldMap() map[string]string {
	if len(ve.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(ve.Fields))
	for _, fe := range ve.Fields {
		if _, dup := m[fe.Field]; !dup {
			m[fe.Field] = fe.Error
		}
	}
	return m
}

// ShutdownError asks the API server to stop gracefully once the current response is sent.
type ShutdownError struct {
	Reason string
}

func NewShutdownError(reason string) error {
	return &ShutdownError{Reason: reason}
}

func (se *ShutdownError) Error() string {
	return "shutdown requested: " + se.Reason
}

// IsShutdown reports whether a ShutdownError is anywhere in err's chain.
func IsShutdown(err error) bool {
	var se *ShutdownError
	return errors.As(err, &se)
}
