// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/checktick/surveyvault/internal/errors"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// MinPasswordLength is the minimum accepted length for an encryption password.
// Matches the account password policy so users cannot set a weaker survey
// password than their login password.
const MinPasswordLength = 8

// PasswordLength validates that a password meets the minimum length after
// trimming. Passwords are normalized (whitespace collapsed) before key
// derivation, so the rule trims first to measure the effective secret.
var PasswordLength = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(strings.TrimSpace(s)) >= MinPasswordLength
	},
	validation.NewError(
		"validation_password_min_length",
		fmt.Sprintf("must be at least %d characters", MinPasswordLength),
	),
)

// RecoveryPhraseWordCount validates that a recovery phrase has one of the
// supported word counts after collapsing whitespace.
var RecoveryPhraseWordCount = validation.NewStringRuleWithError(
	func(s string) bool {
		switch len(strings.Fields(s)) {
		case 12, 15, 18, 21, 24:
			return true
		default:
			return false
		}
	},
	validation.NewError(
		"validation_recovery_phrase_word_count",
		"must contain 12, 15, 18, 21 or 24 words",
	),
)
