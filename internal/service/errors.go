package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrStudentNotFound indicates the referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrClassEmpty indicates an assessment targets a class without students.
	ErrClassEmpty = errors.New("no students found in class")
	// ErrMarkOutOfRange indicates a mark below zero or above the assessment total.
	ErrMarkOutOfRange = errors.New("mark out of range")
	// ErrInvalidCredentials indicates no account matches the login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials or role")
	// ErrMissingCollections indicates a store without users or students.
	ErrMissingCollections = errors.New("store must contain users and students")
)

// FieldError describes a problem with one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports rejected input. Nothing is changed when it is returned.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field+" "+field.Message)
	}
	return e.Err.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatError reports a malformed or structurally invalid store snapshot.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	if e.Err == nil {
		return "invalid store format"
	}
	return "invalid store format: " + e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var errInvalidInput = errors.New("invalid input")

func newValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

// validationFailure converts validator output into a ValidationError.
func validationFailure(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return newValidationError(err)
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{Field: fieldName(fe), Message: describeTag(fe)})
	}
	return newValidationError(errInvalidInput, fields...)
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "datetime":
		return "must be a date formatted as " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsFormatError reports whether err is a FormatError.
func IsFormatError(err error) bool {
	var target *FormatError
	return errors.As(err, &target)
}
