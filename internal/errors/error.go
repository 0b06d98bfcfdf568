// Package errors provides the error kinds surfaced by catalog operations.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrProductNotFound is returned when the referenced id has no live record.
var ErrProductNotFound = errors.New("product not found")

// ValidationError reports fields that violate the product data model.
// It is always detected before any store write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
