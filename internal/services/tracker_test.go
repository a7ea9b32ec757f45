package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger/memory"
	"expensetracker/internal/log"
	"expensetracker/internal/voice"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC) }

func newTestTracker(guard core.CreateGuard) (*Tracker, *memory.Store) {
	store := memory.New()
	n := 0
	var mu sync.Mutex
	tr := NewTracker(store, TrackerOptions{
		Guard: guard,
		Now:   fixedNow,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("tx-%d", n)
		},
		Logger: log.Discard(),
	})
	return tr, store
}

func ptr(s string) *string { return &s }

func TestTrackerDefaultForm(t *testing.T) {
	tr, _ := newTestTracker("")
	want := core.FormState{Type: core.Income, Date: "2024-06-15"}
	if got := tr.Form(); got != want {
		t.Fatalf("form = %+v, want %+v", got, want)
	}
}

func TestUpdateFormPassThrough(t *testing.T) {
	tr, _ := newTestTracker(core.GuardStrict)
	ctx := context.Background()

	got := tr.UpdateForm(ctx, FormUpdate{Amount: ptr(" 42 "), Type: ptr("expense"), Date: ptr("06/01/2024")})
	if got.Amount != "42" || got.Type != core.Expense || got.Date != "2024-06-01" {
		t.Fatalf("unexpected form: %+v", got)
	}

	got = tr.UpdateForm(ctx, FormUpdate{Type: ptr("transfer"), Category: ptr("Food")})
	if got.Type != core.Expense || got.Category != "Food" {
		t.Fatalf("unknown type should be ignored: %+v", got)
	}
}

func TestCreateTransactionFiresOnceAndResets(t *testing.T) {
	tr, store := newTestTracker(core.GuardStrict)
	ctx := context.Background()

	tr.UpdateForm(ctx, FormUpdate{Amount: ptr("100"), Category: ptr("Food"), Type: ptr("Expense"), Date: ptr("2024-01-01")})
	v0 := tr.Version()

	tx, created, err := tr.CreateTransaction(ctx)
	if err != nil || !created {
		t.Fatalf("expected creation, created=%v err=%v", created, err)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(100)) || tx.Type != core.Expense || tx.ID != "tx-1" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tr.Form() != core.NewFormState(fixedNow()) {
		t.Fatalf("form not reset: %+v", tr.Form())
	}
	if tr.Version() != v0+1 {
		t.Fatalf("version not bumped")
	}

	// A second create with the reset draft is rejected by the guard.
	_, created, err = tr.CreateTransaction(ctx)
	if err != nil || created {
		t.Fatalf("reset draft must not create, created=%v err=%v", created, err)
	}
	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(list))
	}
}

func TestCreateGuardRejections(t *testing.T) {
	tests := []struct {
		name    string
		guard   core.CreateGuard
		amount  string
		date    string
		created bool
		amt     string
	}{
		{"strict rejects non-numeric amount and bad date", core.GuardStrict, "abc", "not-a-date", false, ""},
		{"lenient rejects non-numeric amount without separator", core.GuardLenient, "abc", "today", false, ""},
		{"strict rejects non-numeric amount", core.GuardStrict, "abc", "2024-01-01", false, ""},
		{"lenient admits non-numeric amount with date", core.GuardLenient, "abc", "2024-01-01", true, "0"},
		{"strict admits valid draft", core.GuardStrict, "12.5", "2024-01-01", true, "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, store := newTestTracker(tt.guard)
			ctx := context.Background()
			tx, created, err := tr.Submit(ctx, FormUpdate{
				Amount:   ptr(tt.amount),
				Category: ptr("Food"),
				Type:     ptr("Expense"),
				Date:     ptr(tt.date),
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created != tt.created {
				t.Fatalf("created = %v, want %v", created, tt.created)
			}
			list, _ := store.List(ctx)
			if !tt.created {
				if len(list) != 0 {
					t.Fatalf("store changed on rejection: %+v", list)
				}
				if tr.Form().Amount != tt.amount {
					t.Fatalf("rejected draft should be kept, got %+v", tr.Form())
				}
				return
			}
			if tx.Amount.String() != tt.amt {
				t.Fatalf("amount = %s, want %s", tx.Amount, tt.amt)
			}
		})
	}
}

func TestHandleSegmentAddExpense(t *testing.T) {
	tr, _ := newTestTracker(core.GuardStrict)
	res, err := tr.HandleSegment(context.Background(), voice.Segment{
		ID:     1,
		Intent: voice.IntentInfo{Intent: voice.IntentAddExpense},
		Entities: []voice.Entity{
			{Type: voice.EntityAmount, Value: "50"},
			{Type: voice.EntityCategory, Value: "FOOD"},
		},
		Words: []voice.Word{{Value: "fifty", Index: 1}, {Value: "spent", Index: 0}},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Action != voice.ActionNone || res.Created != nil {
		t.Fatalf("unexpected action: %+v", res)
	}
	if res.Form.Type != core.Expense || res.Form.Amount != "50" || res.Form.Category != "Food" {
		t.Fatalf("unexpected form: %+v", res.Form)
	}
	if tr.LastTranscript() != "spent fifty" {
		t.Fatalf("transcript = %q", tr.LastTranscript())
	}
}

func TestHandleSegmentFinalCreates(t *testing.T) {
	tr, store := newTestTracker(core.GuardStrict)
	ctx := context.Background()
	tr.UpdateForm(ctx, FormUpdate{Date: ptr("2024-01-01")})

	res, err := tr.HandleSegment(ctx, voice.Segment{
		IsFinal: true,
		Intent:  voice.IntentInfo{Intent: voice.IntentAddExpense, IsFinal: true},
		Entities: []voice.Entity{
			{Type: voice.EntityAmount, Value: "100"},
			{Type: voice.EntityCategory, Value: "food"},
		},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Action != voice.ActionCreate || res.Created == nil {
		t.Fatalf("expected creation: %+v", res)
	}
	if !res.Created.Amount.Equal(decimal.NewFromInt(100)) || res.Created.Category != "Food" || res.Created.Date != "2024-01-01" {
		t.Fatalf("unexpected transaction: %+v", res.Created)
	}
	if res.Form != core.NewFormState(fixedNow()) {
		t.Fatalf("form not reset: %+v", res.Form)
	}

	// Replaying the final create intent on the fresh draft creates nothing.
	res, _ = tr.HandleSegment(ctx, voice.Segment{
		IsFinal: true,
		Intent:  voice.IntentInfo{Intent: voice.IntentCreateTransaction, IsFinal: true},
	})
	if res.Created != nil {
		t.Fatalf("empty draft must not create")
	}
	list, _ := store.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one transaction, got %d", len(list))
	}
}

func TestHandleSegmentCancel(t *testing.T) {
	tr, _ := newTestTracker(core.GuardStrict)
	ctx := context.Background()
	tr.UpdateForm(ctx, FormUpdate{Amount: ptr("7"), Category: ptr("Car"), Type: ptr("Expense")})

	res, err := tr.HandleSegment(ctx, voice.Segment{
		IsFinal: true,
		Intent:  voice.IntentInfo{Intent: voice.IntentCancelTransaction, IsFinal: true},
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.Action != voice.ActionReset || tr.Form() != core.NewFormState(fixedNow()) {
		t.Fatalf("cancel should reset: %+v", res)
	}
}

func TestAddThenDeleteRoundTrip(t *testing.T) {
	tr, store := newTestTracker(core.GuardStrict)
	ctx := context.Background()

	tr.Submit(ctx, FormUpdate{Amount: ptr("5"), Category: ptr("Gifts"), Type: ptr("Income"), Date: ptr("2024-01-01")})
	before, _ := store.List(ctx)

	tx, created, err := tr.Submit(ctx, FormUpdate{Amount: ptr("9"), Category: ptr("Food"), Type: ptr("Expense"), Date: ptr("2024-01-02")})
	if err != nil || !created {
		t.Fatalf("create: %v %v", created, err)
	}
	if err := tr.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	after, _ := store.List(ctx)
	if len(after) != len(before) || after[0].ID != before[0].ID {
		t.Fatalf("round trip changed the store: before=%+v after=%+v", before, after)
	}

	if err := tr.DeleteTransaction(ctx, "nope"); err != nil {
		t.Fatalf("unknown id: %v", err)
	}
	again, _ := store.List(ctx)
	if len(again) != len(after) {
		t.Fatalf("deleting unknown id changed the store")
	}
}

func TestSummaryAndBalance(t *testing.T) {
	tr, _ := newTestTracker(core.GuardStrict)
	ctx := context.Background()

	inputs := []FormUpdate{
		{Amount: ptr("1000"), Category: ptr("Salary"), Type: ptr("Income"), Date: ptr("2024-01-01")},
		{Amount: ptr("200"), Category: ptr("Food"), Type: ptr("Expense"), Date: ptr("2024-01-02")},
		{Amount: ptr("50"), Category: ptr("Food"), Type: ptr("Expense"), Date: ptr("2024-01-03")},
		{Amount: ptr("25"), Category: ptr("Mystery"), Type: ptr("Expense"), Date: ptr("2024-01-04")},
	}
	for _, in := range inputs {
		if _, ok, err := tr.Submit(ctx, in); !ok || err != nil {
			t.Fatalf("submit %+v: %v %v", in, ok, err)
		}
	}

	s, err := tr.Summary(ctx, core.Expense)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !s.Total.Equal(decimal.NewFromInt(275)) {
		t.Fatalf("total = %s, want 275", s.Total)
	}
	if len(s.Chart.Labels) != 1 || s.Chart.Labels[0] != "Food" || s.Chart.Datasets[0].Data[0] != 250 {
		t.Fatalf("unexpected chart: %+v", s.Chart)
	}

	bal, err := tr.Balance(ctx)
	if err != nil || !bal.Equal(decimal.NewFromInt(725)) {
		t.Fatalf("balance = %s, err = %v", bal, err)
	}

	if _, err := tr.Summary(ctx, "Transfer"); !errors.Is(err, core.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestConcurrentSegments(t *testing.T) {
	tr, store := newTestTracker(core.GuardStrict)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = tr.HandleSegment(ctx, voice.Segment{
				ID:      i,
				IsFinal: true,
				Entities: []voice.Entity{
					{Type: voice.EntityAmount, Value: "10"},
					{Type: voice.EntityCategory, Value: "food"},
				},
			})
		}(i)
	}
	wg.Wait()

	list, _ := store.List(ctx)
	if len(list) != 20 {
		t.Fatalf("expected 20 transactions, got %d", len(list))
	}
	if tr.Version() != 20 {
		t.Fatalf("version = %d, want 20", tr.Version())
	}
}
