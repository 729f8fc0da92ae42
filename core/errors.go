package core

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("permission denied")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// NewFieldError is a shorthand for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(field + ": " + msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

// IsValidation reports both our ValidationError and the validator's field errors.
func IsValidation(err error) bool {
	switch errors.Cause(err).(type) {
	case *ValidationError, validator.ValidationErrors:
		return true
	}
	return false
}

func IsNotFound(err error) bool {
	return err != nil && errors.Cause(err) == ErrNotFound
}

func IsForbidden(err error) bool {
	return err != nil && errors.Cause(err) == ErrForbidden
}

// DerivedStateFailure wraps an error raised while refreshing state derived from the activity log
// (streak, progress, achievements) after the activity itself was written.
type DerivedStateFailure struct {
	Stage string
	Err   error
}

func NewDerivedStateFailure(stage string, err error) error {
	return &DerivedStateFailure{Stage: stage, Err: err}
}

func (f DerivedStateFailure) Error() string {
	return "derived state (" + f.Stage + "): " + f.Err.Error()
}

func (f DerivedStateFailure) Cause() error { return f.Err }

func IsDerivedStateFailure(err error) bool {
	_, ok := err.(*DerivedStateFailure)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
