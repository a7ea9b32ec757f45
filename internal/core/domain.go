package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
)

type (
	TransactionType string

	Transaction struct {
		ID       string          `json:"id"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
		Date     string          `json:"date"` // YYYY-MM-DD
	}

	// FormState is the draft of a transaction that has not been created yet.
	// All fields are raw user (or voice) input.
	FormState struct {
		Amount   string          `json:"amount"`
		Category string          `json:"category"`
		Type     TransactionType `json:"type"`
		Date     string          `json:"date"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrUnknownType   = errors.New("unknown transaction type")
	ErrEmptyID       = errors.New("empty transaction id")
)

// ParseTransactionType accepts the type name case-insensitively.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return Income, nil
	case "expense":
		return Expense, nil
	default:
		return "", ErrUnknownType
	}
}

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// NewFormState returns the default draft: Income, empty amount and category, today's date.
func NewFormState(now time.Time) FormState {
	return FormState{
		Type: Income,
		Date: FormatDate(now),
	}
}

// Complete reports whether every field of the draft is filled in.
func (f FormState) Complete() bool {
	return f.Amount != "" && f.Category != "" && f.Type != "" && f.Date != ""
}

// NewID returns a fresh opaque transaction identifier.
func NewID() string {
	return uuid.NewString()
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if !t.Type.IsValid() {
		return ErrUnknownType
	}
	return nil
}
