// Package schemas provides JSON Schema validation for language-model responses.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed definitions/*.schema.json
var schemaFiles embed.FS

// rootField names the document root in field paths
const rootField = "(root)"

// Names of the embedded response schemas
const (
	TaskBreakdown     = "task_breakdown"
	EvaluationResult  = "evaluation_result"
	TagSet            = "tag_set"
	SynthesizedAnswer = "synthesized_answer"
)

// Schema is a compiled JSON Schema for one response shape
type Schema struct {
	name     string
	compiled *gojsonschema.Schema
}

// Name returns the schema name (e.g. "task_breakdown")
func (s *Schema) Name() string {
	return s.name
}

// compiled schemas are immutable once loaded, so one instance is shared process-wide
var (
	cache   = make(map[string]*Schema)
	cacheMu sync.RWMutex
)

// Load returns the compiled embedded schema with the given name.
func Load(name string) (*Schema, error) {
	cacheMu.RLock()
	if s, ok := cache[name]; ok {
		cacheMu.RUnlock()
		return s, nil
	}
	cacheMu.RUnlock()

	path := "definitions/" + name + ".schema.json"
	data, err := schemaFiles.ReadFile(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Message: "schema not embedded", Cause: err}
	}

	s, err := Compile(name, string(data))
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[name] = s
	cacheMu.Unlock()
	return s, nil
}

// MustLoad is Load for schemas that are required at initialization time.
func MustLoad(name string) *Schema {
	s, err := Load(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load schema: %v", err))
	}
	return s
}

// Compile compiles schema source text into a Schema.
func Compile(name, schemaContent string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema", Cause: err}
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Validate checks raw text against the schema.
// Returns *MalformedResponseError when raw is not JSON and *SchemaViolationError
// (first violation by field path) when the shape does not match.
func (s *Schema) Validate(raw string) error {
	if !json.Valid([]byte(raw)) {
		return &MalformedResponseError{Schema: s.name, Snippet: snippet(raw)}
	}

	result, err := s.compiled.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return &MalformedResponseError{Schema: s.name, Snippet: snippet(raw), Cause: err}
	}
	if result.Valid() {
		return nil
	}

	fieldErrs := collectFieldErrors(result.Errors())
	return &SchemaViolationError{
		Schema:     s.name,
		FieldError: fieldErrs[0],
		Total:      len(fieldErrs),
	}
}

// Decode validates raw against schema and unmarshals it into a T.
// Nothing is returned unless the whole document passed validation.
func Decode[T any](s *Schema, raw string) (*T, error) {
	if err := s.Validate(raw); err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, &MalformedResponseError{Schema: s.name, Snippet: snippet(raw), Cause: err}
	}
	return &out, nil
}

// collectFieldErrors converts gojsonschema results into FieldErrors ordered by field path.
// gojsonschema walks object properties in map order, so the raw order is not stable.
func collectFieldErrors(results []gojsonschema.ResultError) []FieldError {
	fieldErrs := make([]FieldError, 0, len(results))
	for _, desc := range results {
		field := desc.Field()
		if desc.Type() == "required" {
			if property, ok := desc.Details()["property"].(string); ok && property != "" {
				if field == "" || field == rootField {
					field = property
				} else {
					field = field + "." + property
				}
			}
		}
		if field == "" {
			field = rootField
		}
		fieldErrs = append(fieldErrs, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	sort.SliceStable(fieldErrs, func(i, j int) bool {
		if fieldErrs[i].Field != fieldErrs[j].Field {
			return fieldErrs[i].Field < fieldErrs[j].Field
		}
		return fieldErrs[i].Message < fieldErrs[j].Message
	})
	return fieldErrs
}

func snippet(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) > 120 {
		return raw[:120] + "..."
	}
	return raw
}
