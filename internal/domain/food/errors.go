package food

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrNotFound = errors.New("food not found")

// ValidationError is returned when input breaks a field or uniqueness rule.
// Fields maps the json field name to the rule that failed.
type ValidationError struct {
	Message string
	Fields  map[string]string
	Input   any
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
}

func newValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// duplicateError maps a unique index violation onto the field it guards.
func duplicateError(driverMsg string) *ValidationError {
	field := "name"
	if strings.Contains(driverMsg, "foods_slug") || strings.Contains(driverMsg, "foods.slug") {
		field = "slug"
	}
	return newValidationError(fmt.Sprintf("a food with this %s already exists", field), map[string]string{field: "unique"})
}
