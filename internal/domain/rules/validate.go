package rules

import (
	"github.com/eshaffer321/finpal-backend/internal/domain/matcher"
	"github.com/eshaffer321/finpal-backend/internal/domain/validator"
)

// ValidateRule checks a rule before it is saved.
func ValidateRule(r Rule) error {
	if err := validator.Required("name", r.Name); err != nil {
		return err
	}
	if err := validator.Required("pattern", r.Pattern); err != nil {
		return err
	}
	if err := validator.ValidateOneOf("patternField", string(r.PatternField), true,
		string(matcher.FieldDescription), string(matcher.FieldAmount)); err != nil {
		return err
	}
	if err := validator.ValidateOneOf("transactionTypeFilter", string(r.TransactionTypeFilter), true, TransactionTypes...); err != nil {
		return err
	}
	if r.AutoTransactionType != nil {
		if err := validator.ValidateOneOf("autoTransactionType", string(*r.AutoTransactionType), false, TransactionTypes...); err != nil {
			return err
		}
	}
	if r.IsRegex {
		if _, err := matcher.Compile(r.MatcherPattern()); err != nil {
			return validator.New("pattern", err.Error())
		}
	}
	if r.AmountMin != nil && r.AmountMin.IsNegative() {
		return validator.New("amountMin", "cannot be negative")
	}
	if !r.AmountRange().Valid() {
		return validator.New("amountMax", "must be greater than or equal to amountMin")
	}
	return nil
}
