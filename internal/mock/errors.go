package mock

import (
	"fmt"
	"strings"
)

// FieldError is a single field-level validation diagnostic.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports one or more invalid request fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "mock: invalid request: " + strings.Join(parts, "; ")
}

// MalformedContentError reports content that is not well-formed JSON.
type MalformedContentError struct {
	Err error
}

func (e *MalformedContentError) Error() string {
	return fmt.Sprintf("mock: content is not valid JSON: %v", e.Err)
}

func (e *MalformedContentError) Unwrap() error { return e.Err }

// PersistenceError reports a failed store operation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("mock: persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
