// Package validator provides user-correctable input validation.
//
// A ValidationError names the offending field and carries a message that
// can be shown inline next to it. Validation failures never abort unrelated
// work: callers collect them, report them and move on.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/finpal-backend/internal/domain/money"
)

// ValidationError is a user-correctable input problem.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// New creates a ValidationError for field.
func New(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Newf creates a ValidationError with a formatted message.
func Newf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidatePositiveAmount checks that amount is greater than zero.
func ValidatePositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Newf(field, "must be greater than zero (got %s)", amount.String())
	}
	return nil
}

// ParsePositiveAmount parses raw input and checks it is a positive amount.
func ParsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := money.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, New(field, err.Error())
	}
	if err := ValidatePositiveAmount(field, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateOneOf checks that value is one of allowed. Empty values are
// rejected unless optional is set.
func ValidateOneOf(field, value string, optional bool, allowed ...string) error {
	if value == "" {
		if optional {
			return nil
		}
		return New(field, "is required")
	}
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return Newf(field, "must be one of %s (got %q)", strings.Join(allowed, ", "), value)
}

// Required checks that a string field is not blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return New(field, "is required")
	}
	return nil
}

// TransactionTypes are the accepted transaction types.
var TransactionTypes = []string{"expense", "income", "transfer"}

// ValidateTransactionInput checks the fields every transaction write needs.
func ValidateTransactionInput(amount decimal.Decimal, transactionType string) error {
	if err := ValidatePositiveAmount("amount", amount); err != nil {
		return err
	}
	return ValidateOneOf("transactionType", transactionType, false, TransactionTypes...)
}
