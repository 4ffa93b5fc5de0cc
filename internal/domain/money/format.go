package money

import (
	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when no formatting context is configured.
const DefaultCurrencySymbol = "$"

// FormattingContext carries display preferences into the engines at call
// time.
type FormattingContext struct {
	CurrencySymbol string
}

// DefaultFormatting returns a context using DefaultCurrencySymbol.
func DefaultFormatting() FormattingContext {
	return FormattingContext{CurrencySymbol: DefaultCurrencySymbol}
}

// Format renders an amount with the currency symbol, e.g. "$30.00" or "-$5.10".
func (f FormattingContext) Format(amount decimal.Decimal) string {
	symbol := f.CurrencySymbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// FormatPercent renders a percentage with one decimal place, e.g. "33.3%".
func (f FormattingContext) FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(1) + "%"
}
