package anthropic

import (
	"fmt"
	"strings"
)

// FieldError is a per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateRequest checks the decoded JSON body for the structural rules of
// the Messages API. Validation is ordered and exhaustive, so a client gets
// every failing field in one pass.
func ValidateRequest(body any) []FieldError {
	obj, ok := body.(map[string]any)
	if !ok {
		return []FieldError{{Field: "body", Message: "Request body must be an object"}}
	}

	var errs []FieldError

	if _, ok := obj["model"].(string); !ok {
		errs = append(errs, FieldError{Field: "model", Message: "model is required and must be a string"})
	}

	if mt, ok := numberValue(obj["max_tokens"]); !ok {
		errs = append(errs, FieldError{Field: "max_tokens", Message: "max_tokens is required and must be a number"})
	} else if mt <= 0 {
		errs = append(errs, FieldError{Field: "max_tokens", Message: "max_tokens must be a positive number"})
	}

	if msgs, ok := obj["messages"].([]any); !ok {
		errs = append(errs, FieldError{Field: "messages", Message: "messages is required and must be an array"})
	} else if len(msgs) == 0 {
		errs = append(errs, FieldError{Field: "messages", Message: "messages array cannot be empty"})
	}

	if v, present := obj["temperature"]; present {
		if t, ok := numberValue(v); !ok || t < 0 || t > 1 {
			errs = append(errs, FieldError{Field: "temperature", Message: "temperature must be a number between 0 and 1"})
		}
	}

	if v, present := obj["top_p"]; present {
		if t, ok := numberValue(v); !ok || t < 0 || t > 1 {
			errs = append(errs, FieldError{Field: "top_p", Message: "top_p must be a number between 0 and 1"})
		}
	}

	if v, present := obj["stream"]; present {
		if _, ok := v.(bool); !ok {
			errs = append(errs, FieldError{Field: "stream", Message: "stream must be a boolean"})
		}
	}

	return errs
}

func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// FormatFieldErrors joins validation failures into one readable message.
func FormatFieldErrors(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}
