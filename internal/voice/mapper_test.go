package voice

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

func newMapper() *Mapper {
	return NewMapper(core.DefaultRegistry(), fixedNow)
}

func TestApplyAddExpenseWithEntities(t *testing.T) {
	m := newMapper()
	form := core.NewFormState(fixedNow())
	seg := Segment{
		Intent: IntentInfo{Intent: IntentAddExpense},
		Entities: []Entity{
			{Type: EntityAmount, Value: "50"},
			{Type: EntityCategory, Value: "FOOD"},
		},
	}

	got, action, report := m.Apply(form, seg)
	if action != ActionNone {
		t.Fatalf("non-final segment should not act, got %s", action)
	}
	if got.Type != core.Expense || got.Amount != "50" || got.Category != "Food" {
		t.Fatalf("unexpected form: %+v", got)
	}
	if !report.Empty() {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestApplyCategoryDecidesType(t *testing.T) {
	m := newMapper()
	form := core.FormState{Type: core.Expense, Date: "2024-05-01"}
	got, _, _ := m.Apply(form, Segment{Entities: []Entity{{Type: EntityCategory, Value: "salary"}}})
	if got.Type != core.Income || got.Category != "Salary" {
		t.Fatalf("income category should switch the type: %+v", got)
	}

	got, _, _ = m.Apply(got, Segment{
		Intent:   IntentInfo{Intent: IntentAddIncome},
		Entities: []Entity{{Type: EntityCategory, Value: "bills"}},
	})
	if got.Type != core.Expense || got.Category != "Bills" {
		t.Fatalf("entity should win over intent: %+v", got)
	}
}

func TestApplyUnmatchedCategoryLeavesForm(t *testing.T) {
	m := newMapper()
	form := core.FormState{Amount: "5", Category: "Food", Type: core.Expense, Date: "2024-05-01"}
	got, action, report := m.Apply(form, Segment{Entities: []Entity{
		{Type: EntityCategory, Value: "spaceships"},
		{Type: "merchant", Value: "acme"},
	}})
	if got != form || action != ActionNone {
		t.Fatalf("form changed on unmatched category: %+v (%s)", got, action)
	}
	if len(report.UnmatchedCategories) != 1 || report.UnmatchedCategories[0] != "Spaceships" {
		t.Fatalf("unexpected unmatched: %+v", report.UnmatchedCategories)
	}
	if len(report.IgnoredEntities) != 1 || report.IgnoredEntities[0].Type != "merchant" {
		t.Fatalf("unexpected ignored: %+v", report.IgnoredEntities)
	}
}

func TestApplyDateVerbatim(t *testing.T) {
	m := newMapper()
	got, _, _ := m.Apply(core.NewFormState(fixedNow()), Segment{Entities: []Entity{{Type: EntityDate, Value: "next tuesday"}}})
	if got.Date != "next tuesday" {
		t.Fatalf("date should be kept verbatim, got %q", got.Date)
	}
}

func TestApplyFinalCompleteFormCreates(t *testing.T) {
	m := newMapper()
	form := core.FormState{Type: core.Income, Date: "2024-01-01"}
	seg := Segment{
		IsFinal: true,
		Intent:  IntentInfo{Intent: IntentAddExpense, IsFinal: true},
		Entities: []Entity{
			{Type: EntityAmount, Value: "100"},
			{Type: EntityCategory, Value: "food"},
		},
	}
	got, action, _ := m.Apply(form, seg)
	if action != ActionCreate {
		t.Fatalf("expected create, got %s", action)
	}
	want := core.FormState{Amount: "100", Category: "Food", Type: core.Expense, Date: "2024-01-01"}
	if got != want {
		t.Fatalf("form = %+v, want %+v", got, want)
	}
}

func TestApplyFinalIncompleteFormDoesNothing(t *testing.T) {
	m := newMapper()
	got, action, _ := m.Apply(core.NewFormState(fixedNow()), Segment{
		IsFinal:  true,
		Entities: []Entity{{Type: EntityAmount, Value: "100"}},
	})
	if action != ActionNone || got.Amount != "100" {
		t.Fatalf("unexpected result: %+v %s", got, action)
	}
}

func TestApplyCreateIntent(t *testing.T) {
	m := newMapper()
	form := core.FormState{Amount: "1", Type: core.Expense, Date: "2024-01-01"}

	got, action, _ := m.Apply(form, Segment{
		Intent:   IntentInfo{Intent: IntentCreateTransaction},
		Entities: []Entity{{Type: EntityAmount, Value: "9"}},
	})
	if action != ActionNone || got.Amount != "9" {
		t.Fatalf("non-final create should only process entities: %+v %s", got, action)
	}

	got, action, _ = m.Apply(form, Segment{
		IsFinal:  true,
		Intent:   IntentInfo{Intent: IntentCreateTransaction, IsFinal: true},
		Entities: []Entity{{Type: EntityAmount, Value: "9"}},
	})
	if action != ActionCreate || got != form {
		t.Fatalf("final create should return the form untouched: %+v %s", got, action)
	}
}

func TestApplyCancelIntent(t *testing.T) {
	m := newMapper()
	form := core.FormState{Amount: "1", Category: "Food", Type: core.Expense, Date: "2023-01-01"}
	got, action, _ := m.Apply(form, Segment{
		IsFinal: true,
		Intent:  IntentInfo{Intent: IntentCancelTransaction, IsFinal: true},
	})
	if action != ActionReset || got != core.NewFormState(fixedNow()) {
		t.Fatalf("cancel should reset: %+v %s", got, action)
	}
}

func TestNormalizeCategory(t *testing.T) {
	m := newMapper()
	cases := map[string]string{
		"FOOD":          "Food",
		"food":          "Food",
		" extra INCOME": "Extra income",
		"":              "",
		"élan":          "Élan",
	}
	for in, want := range cases {
		if got := m.NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
