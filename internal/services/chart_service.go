package services

import (
	"context"
	"fmt"

	"expensetracker/internal/cache"
	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// ChartService renders summary charts and caches the PNG bytes by store version.
type ChartService struct {
	tracker  *Tracker
	renderer *charts.Renderer
	cache    *cache.LRUCache[[]byte]
	logger   *log.Logger
}

func NewChartService(tracker *Tracker, renderer *charts.Renderer, pngCache *cache.LRUCache[[]byte], logger *log.Logger) *ChartService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ChartService{
		tracker:  tracker,
		renderer: renderer,
		cache:    pngCache,
		logger:   logger.WithComponent(log.ComponentCharts),
	}
}

func chartKey(name string, version uint64) string {
	return fmt.Sprintf("%s:v%d", name, version)
}

// SummaryPNG returns the pie chart for one transaction type. It returns
// charts.ErrNoData when there is nothing to draw.
func (s *ChartService) SummaryPNG(ctx context.Context, typ core.TransactionType) ([]byte, error) {
	return s.cached(ctx, chartKey(typ.String(), s.tracker.Version()), func() ([]byte, error) {
		summary, err := s.tracker.Summary(ctx, typ)
		if err != nil {
			return nil, err
		}
		return s.renderer.RenderSummary(summary)
	})
}

// BalancePNG returns the income against expense bar chart.
func (s *ChartService) BalancePNG(ctx context.Context) ([]byte, error) {
	return s.cached(ctx, chartKey("balance", s.tracker.Version()), func() ([]byte, error) {
		income, err := s.tracker.Summary(ctx, core.Income)
		if err != nil {
			return nil, err
		}
		expense, err := s.tracker.Summary(ctx, core.Expense)
		if err != nil {
			return nil, err
		}
		return s.renderer.RenderBalance(income, expense)
	})
}

func (s *ChartService) cached(ctx context.Context, key string, render func() ([]byte, error)) ([]byte, error) {
	png, hit, err := s.cache.GetOrLoad(key, render)
	if err != nil {
		return nil, err
	}
	if !hit {
		s.logger.DebugContext(ctx, "Chart rendered", "key", key, "bytes", len(png))
	}
	return png, nil
}

// CacheStats exposes the chart cache counters.
func (s *ChartService) CacheStats() cache.Stats {
	return s.cache.Stats()
}
