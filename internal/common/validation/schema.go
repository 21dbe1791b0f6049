// Package validation checks queued request bodies before the worker acts on
// them.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// RecommendationRequestSchema describes the queue message body. Only
// Cuisine and Email are required; everything else may be the "Unknown"
// placeholder or absent.
const RecommendationRequestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["Cuisine", "Email"],
	"properties": {
		"Cuisine":        {"type": "string", "minLength": 1},
		"Email":          {"type": "string", "minLength": 1},
		"Location":       {"type": ["string", "null"]},
		"DiningDate":     {"type": ["string", "null"]},
		"DiningTime":     {"type": ["string", "null"]},
		"NumberOfPeople": {"type": ["integer", "string", "null"]}
	}
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the individual violations into one line.
func (r *ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator(schema string) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// NewRequestValidator compiles RecommendationRequestSchema.
func NewRequestValidator() (*Validator, error) {
	return NewValidator(RecommendationRequestSchema)
}

// Validate checks a raw JSON document. Input that is not JSON at all is
// reported as a single violation on the root.
func (v *Validator) Validate(body []byte) *ValidationResult {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationResult{
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out
}
