package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func TestChartServiceCachesByVersion(t *testing.T) {
	tr, _ := newTestTracker(core.GuardStrict)
	ctx := context.Background()
	pngs := cache.NewLRUCache[[]byte](8, time.Minute)
	svc := NewChartService(tr, charts.NewRenderer(), pngs, log.Discard())

	if _, err := svc.SummaryPNG(ctx, core.Expense); !errors.Is(err, charts.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	tr.Submit(ctx, FormUpdate{Amount: ptr("20"), Category: ptr("Food"), Type: ptr("Expense"), Date: ptr("2024-01-01")})
	first, err := svc.SummaryPNG(ctx, core.Expense)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := svc.SummaryPNG(ctx, core.Expense)
	if err != nil || &first[0] != &second[0] {
		t.Fatalf("second call should hit the cache")
	}
	if st := svc.CacheStats(); st.Hits != 1 {
		t.Fatalf("hits = %d, want 1", st.Hits)
	}

	tr.Submit(ctx, FormUpdate{Amount: ptr("5"), Category: ptr("Car"), Type: ptr("Expense"), Date: ptr("2024-01-01")})
	if _, err := svc.SummaryPNG(ctx, core.Expense); err != nil {
		t.Fatalf("render after change: %v", err)
	}
	if st := svc.CacheStats(); st.Size != 2 {
		t.Fatalf("a new version should add a new entry, size = %d", st.Size)
	}

	if _, err := svc.BalancePNG(ctx); err != nil {
		t.Fatalf("balance: %v", err)
	}
}
