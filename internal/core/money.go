// Package core provides amount parsing and formatting utilities.
//
// Amounts are signed decimals. Parsing is tolerant of surrounding whitespace and
// of a decimal comma, which is how amounts arrive from both the form and the
// speech recognizer.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// maxAmountInput bounds the raw text accepted as an amount.
	maxAmountInput = 64
	// maxAmountDigits bounds the integer digits of an amount, so every
	// amount and any realistic sum of them stays a finite float64.
	maxAmountDigits = 15
	// maxAmountScale bounds the fractional digits of an amount.
	maxAmountScale = 10
)

func init() {
	// Amounts and totals travel as JSON numbers. The bounds below keep their
	// text exact.
	decimal.MarshalJSONWithoutQuotes = true
}

// ParseAmount converts user input to a decimal. Amounts of more than
// maxAmountDigits integer digits or maxAmountScale fractional digits are
// rejected, whether written out or in exponent form.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-5")     -> -5, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
//	ParseAmount("1e400")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountInput {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if d.Exponent() < -maxAmountScale || int(d.Exponent())+d.NumDigits() > maxAmountDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// IsNumeric reports whether s parses as an amount.
func IsNumeric(s string) bool {
	_, err := ParseAmount(s)
	return err == nil
}

// CurrencySymbol is prefixed to formatted amounts.
const CurrencySymbol = "₱"

// FormatAmount renders an amount for display, e.g. "₱1250.50" or "-₱3".
func FormatAmount(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + CurrencySymbol + d.Neg().String()
	}
	return CurrencySymbol + d.String()
}
