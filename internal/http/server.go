package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

// SegmentStats reports what the background voice worker has done.
type SegmentStats interface {
	Stats() (processed, created, failed int64)
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	Logger             *log.Logger
	// Worker is optional; when set its counters are exported on /metrics.
	Worker SegmentStats
}

type appMetrics struct {
	uptime        time.Time
	created       atomic.Int64
	rejected      atomic.Int64
	deleted       atomic.Int64
	voiceSegments atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template
	tracker   *services.Tracker
	charts    *services.ChartService
	worker    SegmentStats
	logger    *log.Logger

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(tracker *services.Tracker, charts *services.ChartService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.Addr == "" {
		opts.Addr = ":8081"
	}
	logger := opts.Logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		tracker:          tracker,
		charts:           charts,
		worker:           opts.Worker,
		logger:           logger,
		securityDetector: security.NewDetector(opts.Logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, opts.Logger)

	t, err := parseTemplates()
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/ui/form", s.handleForm)
	mux.HandleFunc("/ui/transactions", s.handleTransactionsPartial)
	mux.HandleFunc("/ui/summary", s.handleSummaryPartial)
	mux.HandleFunc("/ui/balance", s.handleBalancePartial)

	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/transactions/delete", s.handleDeleteTransaction)
	mux.HandleFunc("/voice/segments", s.handleVoiceSegment)

	mux.HandleFunc("/api/transactions", s.handleAPITransactions)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/charts/", s.handleChart)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited, http.MethodPost, http.MethodDelete)(handler)
	handler = log.ComponentMiddleware(log.ComponentHTTP)(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(handler)
	handler = log.Middleware(opts.Logger)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

func parseTemplates() (*template.Template, error) {
	return template.ParseFS(appweb.TemplatesFS, "templates/*.html")
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Too many requests, slow down.").
		TriggerWarningNotification("Too many requests, slow down.").
		Write(w)
}

// render executes a template into a buffer so a failing template never
// leaves a half-written response.
func (s *Server) render(ctx context.Context, name string, data any) ([]byte, bool) {
	if s.templates == nil {
		log.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", "template", name)
		return nil, false
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Template execution failed",
			"template", name,
			log.FieldError, err.Error())
		return nil, false
	}
	return buf.Bytes(), true
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
