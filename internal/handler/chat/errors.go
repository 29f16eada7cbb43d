package chat

import (
	"strings"
)

// FieldError describes one rejected field of a request body.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports a malformed or incomplete request body.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ValidationErrorResponse is the 422 body.
type ValidationErrorResponse struct {
	Error  string       `json:"error"`
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Response() ValidationErrorResponse {
	return ValidationErrorResponse{Error: "validation failed", Detail: e.Fields}
}
