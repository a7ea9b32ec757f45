package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"expensetracker/internal/charts"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func (s *Server) summaryView(ctx context.Context, typ core.TransactionType) (summaryView, error) {
	summary, err := s.tracker.Summary(ctx, typ)
	if err != nil {
		return summaryView{}, err
	}
	return newSummaryView(summary, s.tracker.Version()), nil
}

func (s *Server) balanceView(ctx context.Context) (balanceView, error) {
	balance, err := s.tracker.Balance(ctx)
	if err != nil {
		return balanceView{}, err
	}
	txs, err := s.tracker.Transactions(ctx)
	if err != nil {
		return balanceView{}, err
	}
	v := balanceView{
		Balance:  core.FormatAmount(balance),
		Negative: balance.IsNegative(),
	}
	if len(txs) > 0 {
		v.ChartURL = chartURL("balance", s.tracker.Version())
	}
	return v, nil
}

// handleSummaryPartial renders the per-category summary of ?type=.
func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	typ, err := typeParam(r)
	if err != nil {
		BadRequestError("Unknown transaction type").Write(w)
		return
	}
	ctx := r.Context()
	view, err := s.summaryView(ctx, typ)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Summary failed",
			log.FieldTransactionType, typ.String(),
			log.FieldError, err.Error())
		InternalServerError("Could not load the summary").Write(w)
		return
	}
	body, ok := s.render(ctx, "summary.html", view)
	if !ok {
		InternalServerError("Summary unavailable").Write(w)
		return
	}
	NewHTMXResponse().Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}

func (s *Server) handleBalancePartial(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	view, err := s.balanceView(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Balance failed", log.FieldError, err.Error())
		InternalServerError("Could not load the balance").Write(w)
		return
	}
	body, ok := s.render(ctx, "balance.html", view)
	if !ok {
		InternalServerError("Balance unavailable").Write(w)
		return
	}
	NewHTMXResponse().Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}

// handleAPISummary returns {type, total, chartData} for ?type=.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	typ, err := typeParam(r)
	if err != nil {
		NewHTMXResponse().Status(http.StatusBadRequest).
			BodyJSON(map[string]string{"error": "type must be Income or Expense"}).
			Write(w)
		return
	}
	ctx := r.Context()
	summary, err := s.tracker.Summary(ctx, typ)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Summary failed",
			log.FieldTransactionType, typ.String(),
			log.FieldError, err.Error())
		NewHTMXResponse().Status(http.StatusInternalServerError).
			BodyJSON(map[string]string{"error": "could not load the summary"}).
			Write(w)
		return
	}
	NewHTMXResponse().BodyJSON(summary).Write(w)
}

// handleChart serves /charts/{income,expense,balance}.png. An empty chart is
// answered with 204 so the page can hide the image.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.charts == nil {
		NotFoundError("Charts disabled").Write(w)
		return
	}

	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/charts/"), ".png")
	if !ok || name == "" || strings.Contains(name, "/") {
		NotFoundError("Unknown chart").Write(w)
		return
	}

	ctx := r.Context()
	var png []byte
	var err error
	if strings.EqualFold(name, "balance") {
		png, err = s.charts.BalancePNG(ctx)
	} else {
		typ, perr := core.ParseTransactionType(name)
		if perr != nil {
			NotFoundError("Unknown chart").Write(w)
			return
		}
		png, err = s.charts.SummaryPNG(ctx, typ)
	}

	switch {
	case errors.Is(err, charts.ErrNoData):
		w.WriteHeader(http.StatusNoContent)
	case err != nil:
		log.FromContext(ctx).ErrorContext(ctx, "Chart rendering failed",
			"chart", name,
			log.FieldOperation, log.OpRender,
			log.FieldError, err.Error())
		InternalServerError("Could not render the chart").Write(w)
	default:
		NewHTMXResponse().
			Header("Content-Type", "image/png").
			Header("Cache-Control", "private, max-age=300").
			Body(png).
			Write(w)
	}
}
