package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Color  string          `json:"color"`
	Amount decimal.Decimal `json:"amount"`
}

// ChartDataset is one series of chart values with matching slice colors.
type ChartDataset struct {
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

// ChartData is the shape consumed by the chart widget.
type ChartData struct {
	Datasets []ChartDataset `json:"datasets"`
	Labels   []string       `json:"labels"`
}

// Summary is the aggregate of all transactions of one type.
type Summary struct {
	Type       TransactionType  `json:"type"`
	Total      decimal.Decimal  `json:"total"`
	ByCategory []CategoryAmount `json:"-"`
	Chart      ChartData        `json:"chartData"`
}

// Summarize totals the transactions of type t and groups them by category.
//
// Total covers every matching transaction. ByCategory only lists registry
// categories whose sum is strictly positive and finite as a float64, in
// registry order; transactions naming an unknown category count toward Total
// but are otherwise skipped.
func Summarize(txs []Transaction, t TransactionType, reg *Registry) Summary {
	total := decimal.Zero
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		total = total.Add(tx.Amount)
		if _, ok := reg.Lookup(t, tx.Category); !ok {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	s := Summary{
		Type:  t,
		Total: total,
		Chart: ChartData{
			Datasets: []ChartDataset{{Data: []float64{}, BackgroundColor: []string{}}},
			Labels:   []string{},
		},
	}
	for _, c := range reg.Categories(t) {
		amt, ok := sums[c.Name]
		if !ok || !amt.IsPositive() {
			continue
		}
		value, ok := ChartValue(amt)
		if !ok {
			continue
		}
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: c.Name, Color: c.Color, Amount: amt})
		s.Chart.Datasets[0].Data = append(s.Chart.Datasets[0].Data, value)
		s.Chart.Datasets[0].BackgroundColor = append(s.Chart.Datasets[0].BackgroundColor, c.Color)
		s.Chart.Labels = append(s.Chart.Labels, c.Name)
	}
	return s
}

// ChartValue converts an amount for plotting. It reports false when the
// amount has no finite float64 form.
func ChartValue(d decimal.Decimal) (float64, bool) {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Orphans returns the transactions of type t whose category is not registered.
func Orphans(txs []Transaction, t TransactionType, reg *Registry) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		if _, ok := reg.Lookup(t, tx.Category); !ok {
			out = append(out, tx)
		}
	}
	return out
}
