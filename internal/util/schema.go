// Package util holds small internal helpers shared across packages. Nothing
// here is part of the public API.
package util

import (
	"fmt"
	"strings"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateCandidate validates a decoded JSON object against a minimal
// JSON-Schema-like map (type/properties/required). It is used to reject
// malformed candidate actions coming back from the language model before
// they can reach execution.
func ValidateCandidate(candidate map[string]any, schema map[string]any) error {
	required, _ := schema["required"].([]string)
	for _, fieldName := range required {
		value, exists := candidate[fieldName]
		if !exists || isEmpty(value) {
			return &ValidationError{
				Field:   fieldName,
				Message: "required field is missing or empty",
			}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for fieldName, value := range candidate {
		propSchema, exists := properties[fieldName]
		if !exists {
			continue // Allow extra fields; the model may over-produce
		}

		propMap, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}

		expectedType, _ := propMap["type"].(string)
		if !isValidType(value, expectedType) {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expectedType, value),
			}
		}
	}

	return nil
}

// isEmpty treats blank strings and empty arrays as missing; the interpreter
// must never emit a request populated with placeholder values.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case nil:
		return true
	}
	return false
}

// isValidType checks if a value is valid according to the expected JSON schema type.
func isValidType(value any, expectedType string) bool {
	if value == nil {
		return true // nil is valid for any type; required-ness is checked separately
	}

	switch expectedType {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float64: // JSON unmarshaling produces float64 for numbers
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
			float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
