package errors

import (
	"math"
	"unicode"
)

// maxNodeIDLength bounds node ids accepted from untrusted input.
const maxNodeIDLength = 512

// ValidateNodeID validates a node id read from an input collection.
//
// The rules are intentionally minimal since ids are opaque, case-sensitive
// keys:
//   - No empty ids
//   - No control characters (including null bytes)
//   - Maximum length of 512 bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return NewNodes(ErrCodeSchema, []string{id}, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return NewNodes(ErrCodeSchema, []string{id}, "node id too long (max %d bytes)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return NewNodes(ErrCodeSchema, []string{id}, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidatePositive checks that a numeric parameter is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a numeric parameter is finite and >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %v", name, v)
	}
	if v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %v", name, v)
	}
	return nil
}
