package models

import (
	"fmt"
	"regexp"
	"strings"
)

// TIN validation regex (9 or 12 digits with optional hyphens between groups)
var tinRegex = regexp.MustCompile(`^\d{3}[\s-]?\d{3}[\s-]?\d{3}([\s-]?\d{3})?$`)

// IsValidTIN validates taxpayer identification number format
func IsValidTIN(tin string) bool {
	if tin == "" {
		return false
	}
	return tinRegex.MatchString(tin)
}

// SanitizeString removes extra whitespace and trims the string
func SanitizeString(s string) string {
	// Replace multiple whitespace with single space
	re := regexp.MustCompile(`\s+`)
	cleaned := re.ReplaceAllString(strings.TrimSpace(s), " ")
	return cleaned
}

// ValidateRequired checks if a required string field is not empty
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " is required",
			Value:   value,
		}
	}
	return nil
}

// ValidatePositiveNumber validates that a number is not negative
func ValidatePositiveNumber(value float64, fieldName string) error {
	if value < 0 {
		return &ValidationError{
			Field:   fieldName,
			Message: fieldName + " cannot be negative",
			Value:   value,
		}
	}
	return nil
}

// ValidateEnum validates that a value is in the allowed enum values
func ValidateEnum(value string, allowedValues []string, fieldName string) error {
	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return &ValidationError{
		Field:   fieldName,
		Message: fmt.Sprintf("%s must be one of: %s", fieldName, strings.Join(allowedValues, ", ")),
		Value:   value,
	}
}
