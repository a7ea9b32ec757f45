package http

import (
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

// sanitizeInput removes control characters (except tab, newline and carriage
// return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// typeParam reads the transaction type from the "type" query parameter.
func typeParam(r *http.Request) (core.TransactionType, error) {
	return core.ParseTransactionType(r.URL.Query().Get("type"))
}

type formView struct {
	Amount     string
	Category   string
	Type       string
	Date       string
	Transcript string
	Types      []string
	Categories []core.Category
	Complete   bool
}

func newFormView(f core.FormState, reg *core.Registry, transcript string) formView {
	return formView{
		Amount:     f.Amount,
		Category:   f.Category,
		Type:       f.Type.String(),
		Date:       f.Date,
		Transcript: transcript,
		Types:      []string{core.Income.String(), core.Expense.String()},
		Categories: reg.Categories(f.Type),
		Complete:   f.Complete(),
	}
}

type transactionRow struct {
	ID       string
	Label    string
	Category string
	Type     string
	Expense  bool
}

func newTransactionRows(txs []core.Transaction) []transactionRow {
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, transactionRow{
			ID:       tx.ID,
			Label:    core.FormatAmount(tx.Amount) + " - " + tx.Date,
			Category: tx.Category,
			Type:     tx.Type.String(),
			Expense:  tx.Type == core.Expense,
		})
	}
	return rows
}

type summaryRow struct {
	Name    string
	Color   string
	Amount  string
	Percent int
}

type summaryView struct {
	Type     string
	Total    string
	Rows     []summaryRow
	ChartURL string
}

func newSummaryView(s core.Summary, version uint64) summaryView {
	v := summaryView{
		Type:  s.Type.String(),
		Total: core.FormatAmount(s.Total),
	}
	var positive float64
	for _, c := range s.ByCategory {
		positive += c.Amount.InexactFloat64()
	}
	for _, c := range s.ByCategory {
		pct := 0
		if positive > 0 {
			pct = int(c.Amount.InexactFloat64()/positive*100 + 0.5)
		}
		v.Rows = append(v.Rows, summaryRow{
			Name:    c.Name,
			Color:   c.Color,
			Amount:  core.FormatAmount(c.Amount),
			Percent: pct,
		})
	}
	if len(v.Rows) > 0 {
		v.ChartURL = chartURL(strings.ToLower(v.Type), version)
	}
	return v
}

type balanceView struct {
	Balance  string
	Negative bool
	ChartURL string
}

func chartURL(name string, version uint64) string {
	return "/charts/" + name + ".png?v=" + strconv.FormatUint(version, 10)
}
