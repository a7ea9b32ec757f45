package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateGuard decides whether a draft may become a transaction.
type CreateGuard string

const (
	// GuardStrict rejects a draft whose amount is not numeric or whose date
	// is not a canonical calendar date.
	GuardStrict CreateGuard = "strict"
	// GuardLenient rejects only when the amount is not numeric and the date
	// has no separator at all.
	GuardLenient CreateGuard = "lenient"
)

func ParseCreateGuard(s string) (CreateGuard, error) {
	switch CreateGuard(strings.ToLower(strings.TrimSpace(s))) {
	case GuardStrict, "":
		return GuardStrict, nil
	case GuardLenient:
		return GuardLenient, nil
	default:
		return "", fmt.Errorf("unknown create guard %q", s)
	}
}

// Check returns nil when the draft passes the guard, or the reason it does not.
func (g CreateGuard) Check(f FormState) error {
	numeric := IsNumeric(f.Amount)
	if g == GuardLenient {
		if !numeric && !strings.Contains(f.Date, "-") {
			return fmt.Errorf("%w and %w", ErrInvalidAmount, ErrInvalidDate)
		}
		return nil
	}
	if !numeric {
		return ErrInvalidAmount
	}
	if !ValidDate(f.Date) {
		return ErrInvalidDate
	}
	return nil
}

// Build turns a draft into a transaction with the given id. The amount is
// coerced to a decimal; input that does not parse becomes zero.
func (f FormState) Build(id string) Transaction {
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return Transaction{
		ID:       id,
		Amount:   amount,
		Category: f.Category,
		Type:     f.Type,
		Date:     f.Date,
	}
}
