package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

type pageData struct {
	Balance      balanceView
	Form         formView
	Transactions []transactionRow
	Income       summaryView
	Expense      summaryView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		NotFoundError("Page not found").Write(w)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx := r.Context()
	data, err := s.loadPage(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Loading page data failed", log.FieldError, err.Error())
		InternalServerError("Could not load transactions").Write(w)
		return
	}

	body, ok := s.render(ctx, "index.html", data)
	if !ok {
		InternalServerError("Page unavailable").Write(w)
		return
	}
	NewHTMXResponse().Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}

func (s *Server) loadPage(ctx context.Context) (pageData, error) {
	txs, err := s.tracker.Transactions(ctx)
	if err != nil {
		return pageData{}, err
	}
	balance, err := s.balanceView(ctx)
	if err != nil {
		return pageData{}, err
	}
	income, err := s.summaryView(ctx, core.Income)
	if err != nil {
		return pageData{}, err
	}
	expense, err := s.summaryView(ctx, core.Expense)
	if err != nil {
		return pageData{}, err
	}
	return pageData{
		Balance:      balance,
		Form:         newFormView(s.tracker.Form(), s.tracker.Registry(), s.tracker.LastTranscript()),
		Transactions: newTransactionRows(txs),
		Income:       income,
		Expense:      expense,
	}, nil
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}
	NewHTMXResponse().BodyJSON(health).Write(w)
}

// handleReady checks that templates are loaded and the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if txs, err := s.tracker.Transactions(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = map[string]any{
			"status":       "ok",
			"transactions": len(txs),
		}
	}

	if s.charts != nil {
		stats := s.charts.CacheStats()
		checks["chart_cache"] = map[string]any{
			"entries": stats.Size,
			"status":  "ok",
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	response := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}
	NewHTMXResponse().Status(httpStatus).BodyJSON(response).Write(w)
}

// handleMetrics exposes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.WriteHeader(http.StatusOK)

	counter := func(name, help string, value int64) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s counter\n", name)
		fmt.Fprintf(w, "%s %d\n\n", name, value)
	}
	gauge := func(name, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", name)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}

	counter("http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter("http_server_errors_total", "Total number of 5xx responses", traceMetrics.ServerErrors)
	gauge("http_response_time_average_microseconds", "Average response time", traceMetrics.AverageResponseTime)

	counter("transactions_created_total", "Transactions created over HTTP", s.appMetrics.created.Load())
	counter("transactions_rejected_total", "Create attempts rejected by the guard", s.appMetrics.rejected.Load())
	counter("transactions_deleted_total", "Transactions deleted over HTTP", s.appMetrics.deleted.Load())
	counter("voice_segments_total", "Voice segments received over HTTP", s.appMetrics.voiceSegments.Load())
	gauge("store_version", "Number of changes applied to the store", s.tracker.Version())

	if s.charts != nil {
		stats := s.charts.CacheStats()
		counter("chart_cache_hits_total", "Chart cache hits", stats.Hits)
		counter("chart_cache_misses_total", "Chart cache misses", stats.Misses)
		gauge("chart_cache_entries", "Current chart cache entries", stats.Size)
	}

	if s.worker != nil {
		processed, created, failed := s.worker.Stats()
		counter("queue_segments_processed_total", "Queued voice segments processed", processed)
		counter("queue_transactions_created_total", "Transactions created from queued segments", created)
		counter("queue_segments_failed_total", "Queued voice segments that failed", failed)
	}

	counter("rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	gauge("rate_limit_active_clients", "Currently tracked clients", rateLimitMetrics.ClientCount)
	counter("security_suspicious_requests_total", "Requests flagged as suspicious", securityMetrics.SuspiciousRequests)
	counter("security_blocked_requests_total", "Requests rejected by the detector", securityMetrics.BlockedRequests)

	gauge("uptime_seconds", "Application uptime in seconds", int64(time.Since(s.appMetrics.uptime).Seconds()))
}
