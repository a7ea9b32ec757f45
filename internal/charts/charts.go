package charts

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"expensetracker/internal/core"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no chart data")

// Renderer draws summaries as PNG images.
type Renderer struct {
	Width  int
	Height int
}

func NewRenderer() *Renderer {
	return &Renderer{Width: 640, Height: 480}
}

// RenderSummary draws one pie slice per category, coloured with the category
// colour. Categories without a positive finite value are left out.
func (r *Renderer) RenderSummary(s core.Summary) ([]byte, error) {
	values := make([]chart.Value, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		v, ok := core.ChartValue(c.Amount)
		if !ok || v <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", c.Name, core.FormatAmount(c.Amount)),
			Value: v,
			Style: chart.Style{
				FillColor:   hexColor(c.Color),
				StrokeColor: chart.ColorWhite,
				StrokeWidth: 2,
				FontColor:   chart.ColorWhite,
			},
		})
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("%s %s", s.Type, core.FormatAmount(s.Total)),
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render %s summary chart: %w", s.Type, err)
	}
	return buffer.Bytes(), nil
}

// RenderBalance draws income against expense totals as two bars.
// Negative or non-finite totals are drawn as empty bars.
func (r *Renderer) RenderBalance(income, expense core.Summary) ([]byte, error) {
	in := clampPositive(income.Total)
	out := clampPositive(expense.Total)
	if in == 0 && out == 0 {
		return nil, ErrNoData
	}

	bars := chart.BarChart{
		Title:    "Balance " + core.FormatAmount(income.Total.Sub(expense.Total)),
		Width:    r.Width,
		Height:   r.Height,
		BarWidth: r.Width / 4,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: max(in, out) * 1.1},
		},
		Bars: []chart.Value{
			{Label: "Income", Value: in, Style: chart.Style{FillColor: hexColor("#0bc77e"), StrokeColor: hexColor("#0bc77e")}},
			{Label: "Expense", Value: out, Style: chart.Style{FillColor: hexColor("#b50d12"), StrokeColor: hexColor("#b50d12")}},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := bars.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render balance chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

func clampPositive(d decimal.Decimal) float64 {
	if !d.IsPositive() {
		return 0
	}
	v, ok := core.ChartValue(d)
	if !ok {
		return 0
	}
	return v
}
