package schemas

import "fmt"

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError means the response text is not valid JSON
type MalformedResponseError struct {
	Schema  string
	Snippet string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed %s response: %v (got %q)", e.Schema, e.Cause, e.Snippet)
	}
	return fmt.Sprintf("malformed %s response: not valid JSON (got %q)", e.Schema, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// SchemaViolationError means the response is JSON but does not match the expected shape.
// FieldError holds the first violation; Total counts all of them.
type SchemaViolationError struct {
	Schema string
	FieldError
	Total int
}

func (e *SchemaViolationError) Error() string {
	if e.Total > 1 {
		return fmt.Sprintf("%s response violates schema at %s: %s (and %d more)", e.Schema, e.Field, e.Message, e.Total-1)
	}
	return fmt.Sprintf("%s response violates schema at %s: %s", e.Schema, e.Field, e.Message)
}
