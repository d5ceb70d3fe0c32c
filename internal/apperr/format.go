package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// InvalidInput folds a multi-field validation failure set into a single
// BAD_USER_INPUT error. The message names the failing fields (sorted);
// the extensions carry a recursively stringified copy of the raw error
// values, so nested validator output survives intact.
func InvalidInput(fieldErrors map[string]any) *Error {
	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	e := New(CodeBadUserInput,
		fmt.Sprintf("Invalid input in the following field(s): %s.", strings.Join(fields, ", ")))
	e.Extensions["errors"] = Stringify(fieldErrors)
	return e
}

// Stringify walks an arbitrarily nested validation-error structure:
// lists map element-wise, maps map key-wise, everything else becomes
// its string form.
func Stringify(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Stringify(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Stringify(item)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = item
		}
		return out
	default:
		return fmt.Sprint(t)
	}
}

// UniqueConflict builds the CONFLICT error for a uniqueness violation on
// the given field/value pair.
func UniqueConflict(field, value string) *Error {
	msg := fmt.Sprintf("A user with %s '%s' already exists.", field, value)
	e := New(CodeConflict, msg)
	e.Extensions["field"] = field
	e.Extensions["errors"] = map[string]any{field: msg}
	return e
}

// IsUniqueViolation reports whether err is a uniqueness-constraint
// signal from the storage layer, covering GORM's translated error plus
// the raw SQLite and Postgres driver forms.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "UNIQUE constraint failed") ||
		strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "SQLSTATE 23505")
}

// ConflictFromError translates a raw uniqueness-conflict signal into a
// CONFLICT error. The violated column is extracted from the driver
// message and the submitted value looked up in values; when extraction
// fails, field and value both fall back to "unknown".
func ConflictFromError(err error, values map[string]string) *Error {
	field := "unknown"
	value := "unknown"
	if err != nil {
		msg := err.Error()
		for col := range values {
			if strings.Contains(msg, col) {
				field = col
				break
			}
		}
	}
	if v, ok := values[field]; ok {
		value = v
	}
	return UniqueConflict(field, value)
}
