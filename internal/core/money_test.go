package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "-1", true},
		{"0", "0", true},
		{"1e3", "1000", true},
		{"999999999999999", "999999999999999", true},
		{"1.0000000001", "1.0000000001", true},
		{"0e1000", "0", true},
		{"1000000000000000", "", false},
		{"1e400", "", false},
		{"1e300000", "", false},
		{"-1e400", "", false},
		{"1e-11", "", false},
		{"1." + strings.Repeat("0", 70), "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("1250.5")); got != "₱1250.5" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmount(decimal.RequireFromString("-3")); got != "-₱3" {
		t.Fatalf("got %q", got)
	}
}

func TestGuardRejectsOversizedAmounts(t *testing.T) {
	for _, amount := range []string{"1e400", "1e308", "99999999999999999999"} {
		f := FormState{Amount: amount, Category: "Food", Type: Expense, Date: "2024-01-01"}
		if err := GuardStrict.Check(f); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("strict guard on %q = %v, want ErrInvalidAmount", amount, err)
		}
		if err := GuardLenient.Check(f); err != nil {
			t.Errorf("lenient guard on %q = %v, want nil", amount, err)
		}
		if got := f.Build("id").Amount; !got.IsZero() {
			t.Errorf("built amount for %q = %s, want 0", amount, got)
		}
	}
}

func TestAmountsMarshalAsNumbers(t *testing.T) {
	tx := Transaction{ID: "t1", Amount: decimal.RequireFromString("12.50"), Category: "Food", Type: Expense, Date: "2024-03-01"}
	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"amount":12.5`) {
		t.Fatalf("amount is not a JSON number: %s", data)
	}

	var back Transaction
	if err := json.Unmarshal(data, &back); err != nil || !back.Amount.Equal(tx.Amount) {
		t.Fatalf("round trip = %s, %v", back.Amount, err)
	}

	data, err = json.Marshal(Summarize([]Transaction{tx}, Expense, DefaultRegistry()))
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	if !strings.Contains(string(data), `"total":12.5`) {
		t.Fatalf("total is not a JSON number: %s", data)
	}
}
