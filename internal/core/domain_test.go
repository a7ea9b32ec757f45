package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseTransactionType(t *testing.T) {
	cases := []struct {
		in  string
		out TransactionType
		ok  bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" EXPENSE ", Expense, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTransactionType(tc.in)
		if tc.ok && (err != nil || got != tc.out) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrUnknownType) {
			t.Fatalf("%q expected ErrUnknownType, got %v", tc.in, err)
		}
	}
}

func TestNewFormStateDefaults(t *testing.T) {
	f := NewFormState(time.Date(2024, 3, 7, 18, 30, 0, 0, time.UTC))
	if f.Type != Income || f.Amount != "" || f.Category != "" || f.Date != "2024-03-07" {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if f.Complete() {
		t.Fatalf("default form must not be complete")
	}
	f.Amount, f.Category = "10", "Salary"
	if !f.Complete() {
		t.Fatalf("filled form should be complete: %+v", f)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if id == "" || seen[id] {
			t.Fatalf("duplicate or empty id %q", id)
		}
		seen[id] = true
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-05":           "2024-01-05",
		"01/05/2024":           "2024-01-05",
		"2024-01-05T10:00:00Z": "2024-01-05",
		"January 5, 2024":      "2024-01-05",
		"not-a-date":           "not-a-date",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Fatalf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
	if ValidDate("2024-02-30") {
		t.Fatalf("2024-02-30 is not a calendar date")
	}
}

func TestRegistryClassifyAndLookup(t *testing.T) {
	reg := DefaultRegistry()
	if typ, ok := reg.Classify("Food"); !ok || typ != Expense {
		t.Fatalf("Food should be an expense category, got %s %v", typ, ok)
	}
	if typ, ok := reg.Classify("Salary"); !ok || typ != Income {
		t.Fatalf("Salary should be an income category, got %s %v", typ, ok)
	}
	if _, ok := reg.Classify("food"); ok {
		t.Fatalf("lookup must be exact")
	}
	if _, ok := reg.Lookup(Income, "Food"); ok {
		t.Fatalf("Food must not be found among income categories")
	}
	cats := reg.Categories(Expense)
	cats[0].Name = "mutated"
	if reg.Categories(Expense)[0].Name != "Bills" {
		t.Fatalf("Categories must return a copy")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Category{{Name: "Gifts"}}, []Category{{Name: "Gifts"}})
	if err == nil {
		t.Fatalf("expected error for a name shared by both sets")
	}
	if _, err := NewRegistry([]Category{{Name: " "}}, nil); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil || len(reg.Categories(Income)) != 9 {
		t.Fatalf("empty path should give defaults, err=%v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	content := `{"income":[{"name":"Wage","color":"#00ff00"}],"expense":[{"name":"Rent","color":"#ff0000"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg, err = LoadRegistry(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c, ok := reg.Lookup(Expense, "Rent"); !ok || c.Color != "#ff0000" {
		t.Fatalf("unexpected lookup: %+v %v", c, ok)
	}

	if _, err := LoadRegistry(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if err := os.WriteFile(path, []byte(`{"income":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected error when a set is missing")
	}
}

func TestCreateGuard(t *testing.T) {
	cases := []struct {
		name   string
		guard  CreateGuard
		form   FormState
		wantOK bool
	}{
		{"strict valid", GuardStrict, FormState{Amount: "100", Date: "2024-01-01"}, true},
		{"strict bad amount", GuardStrict, FormState{Amount: "abc", Date: "2024-01-01"}, false},
		{"strict bad date", GuardStrict, FormState{Amount: "100", Date: "yesterday"}, false},
		{"strict empty amount", GuardStrict, FormState{Amount: "", Date: "2024-01-01"}, false},
		{"lenient both bad", GuardLenient, FormState{Amount: "abc", Date: "not a date"}, false},
		{"lenient bad amount only", GuardLenient, FormState{Amount: "abc", Date: "2024-01-01"}, true},
		{"lenient bad date only", GuardLenient, FormState{Amount: "5", Date: "yesterday"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.guard.Check(tc.form)
			if tc.wantOK && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tc.wantOK && err == nil {
				t.Fatalf("expected rejection")
			}
		})
	}

	if _, err := ParseCreateGuard("paranoid"); err == nil {
		t.Fatalf("expected error for unknown guard")
	}
	if g, _ := ParseCreateGuard(""); g != GuardStrict {
		t.Fatalf("empty guard should default to strict, got %s", g)
	}
}

func TestFormStateBuild(t *testing.T) {
	f := FormState{Amount: "100", Category: "Food", Type: Expense, Date: "2024-01-01"}
	tx := f.Build("id-1")
	if tx.ID != "id-1" || tx.Amount.String() != "100" || tx.Category != "Food" || tx.Type != Expense || tx.Date != "2024-01-01" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("expected valid transaction: %v", err)
	}

	f.Amount = "abc"
	if !f.Build("id-2").Amount.IsZero() {
		t.Fatalf("non-numeric amount should coerce to zero")
	}
	if err := (Transaction{Type: Income}).Validate(); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}
