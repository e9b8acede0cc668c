package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrDuplicateAccount     = errors.New("account already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrNotFound             = errors.New("record not found")
	ErrReferentialIntegrity = errors.New("referenced record does not exist")
	ErrInvalidRequest       = errors.New("malformed request body")
	ErrCSRFFailed           = errors.New("csrf token missing or incorrect")
	ErrDatabaseError        = errors.New("database error")
)

// FieldError describes one invalid field. Field is a path such as
// "title" or "items[2].day_key".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type FieldValidationError struct {
	Fields []FieldError
}

func (e *FieldValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field errors were collected.
func (e *FieldValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *FieldValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
