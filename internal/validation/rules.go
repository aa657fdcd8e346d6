// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"
	"unicode"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/envelope/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoControlChars validates that a string contains no control characters.
// Identifiers feed key derivation and structured logs, where non-printing
// bytes cause silent mismatches.
var NoControlChars = validation.NewStringRuleWithError(
	func(s string) bool {
		return !strings.ContainsFunc(s, unicode.IsControl)
	},
	validation.NewError("validation_no_control_chars", "must not contain control characters"),
)
