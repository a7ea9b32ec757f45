package voice

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"expensetracker/internal/core"
)

// Action is the side effect a segment asks for after the draft is updated.
type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionReset
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionReset:
		return "reset"
	default:
		return "none"
	}
}

// Report lists the parts of a segment that had no effect on the draft.
type Report struct {
	IgnoredEntities     []Entity
	UnmatchedCategories []string
}

func (r Report) Empty() bool {
	return len(r.IgnoredEntities) == 0 && len(r.UnmatchedCategories) == 0
}

// Mapper is a pure reducer from (draft, segment) to (draft, action).
type Mapper struct {
	registry *core.Registry
	now      func() time.Time
}

func NewMapper(registry *core.Registry, now func() time.Time) *Mapper {
	if now == nil {
		now = time.Now
	}
	return &Mapper{
		registry: registry,
		now:      now,
	}
}

// Apply folds one segment into the draft. Entities are applied in order, each
// one reading the draft left by the previous.
func (m *Mapper) Apply(form core.FormState, seg Segment) (core.FormState, Action, Report) {
	var report Report

	switch seg.Intent.Intent {
	case IntentAddExpense:
		form.Type = core.Expense
	case IntentAddIncome:
		form.Type = core.Income
	case IntentCreateTransaction:
		if seg.IsFinal {
			return form, ActionCreate, report
		}
	case IntentCancelTransaction:
		if seg.IsFinal {
			return core.NewFormState(m.now()), ActionReset, report
		}
	}

	for _, e := range seg.Entities {
		switch e.Type {
		case EntityAmount:
			form.Amount = e.Value
		case EntityCategory:
			name := m.NormalizeCategory(e.Value)
			typ, ok := m.registry.Classify(name)
			if !ok {
				report.UnmatchedCategories = append(report.UnmatchedCategories, name)
				continue
			}
			form.Type = typ
			form.Category = name
		case EntityDate:
			form.Date = e.Value
		default:
			report.IgnoredEntities = append(report.IgnoredEntities, e)
		}
	}

	if seg.IsFinal && form.Complete() {
		return form, ActionCreate, report
	}
	return form, ActionNone, report
}

// NormalizeCategory upper-cases the first letter and lower-cases the rest,
// so "FOOD" and "food" both become "Food". Casers are stateful, so each call
// builds its own.
func (m *Mapper) NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}
