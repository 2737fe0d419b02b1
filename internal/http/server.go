package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budgetwise/internal/auth"
	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/middleware/ratelimit"
	"budgetwise/internal/middleware/security"
	"budgetwise/internal/middleware/trace"
	"budgetwise/internal/services"
)

const readyTimeout = 2 * time.Second

// Services bundles the application services the API exposes.
type Services struct {
	Budgets    *services.BudgetService
	Incomes    *services.TransactionService
	Expenses   *services.TransactionService
	Categories *services.CategoryService
	Reports    *services.ReportService
}

// Options configures the server beyond its services.
type Options struct {
	Addr               string
	Tokens             *auth.TokenResolver
	RateLimitPerMinute int
	// Ready backs /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	svc      Services
	tokens   *auth.TokenResolver
	ready    func(ctx context.Context) error
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options, svc Services) *Server {
	detector := security.NewDetector()
	s := &Server{
		svc:      svc,
		tokens:   opts.Tokens,
		ready:    opts.Ready,
		detector: detector,
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, writeRateLimited)(handler)
	handler = s.detectSuspicious(handler)
	handler = headers.Middleware(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = log.Middleware(log.New(log.Config{
		Handler:   slog.Default().Handler(),
		Component: log.ComponentHTTP,
	}))(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	authed := auth.Middleware(s.tokens, writeUnauthorized)
	statusAuth := authed
	if s.svc.Budgets.Access() == services.StatusAccessOpen {
		statusAuth = auth.Optional(s.tokens)
	}

	mux.Handle("POST /api/budgets", authed(http.HandlerFunc(s.handleUpsertBudget)))
	mux.Handle("GET /api/budgets", authed(http.HandlerFunc(s.handleListBudgets)))
	mux.Handle("GET /api/budgets/status", statusAuth(http.HandlerFunc(s.handleBudgetStatus)))
	mux.Handle("PUT /api/budgets/{id}", authed(http.HandlerFunc(s.handleUpdateBudget)))
	mux.Handle("DELETE /api/budgets/{id}", authed(http.HandlerFunc(s.handleDeleteBudget)))

	s.transactionRoutes(mux, "/api/incomes", s.svc.Incomes, authed)
	s.transactionRoutes(mux, "/api/expenses", s.svc.Expenses, authed)

	mux.Handle("GET /api/categories", authed(http.HandlerFunc(s.handleListCategories)))
	mux.Handle("POST /api/categories", authed(http.HandlerFunc(s.handleCreateCategory)))
	mux.Handle("DELETE /api/categories/{id}", authed(http.HandlerFunc(s.handleDeleteCategory)))

	mux.Handle("GET /api/reports", authed(http.HandlerFunc(s.handleReport)))
}

// detectSuspicious logs requests that look like probes. They are still
// served; the rate limiter and auth decide what they get.
func (s *Server) detectSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			log.FromContext(r.Context()).WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		traced := s.tracer.GetMetrics()
		slog.Info("HTTP server stopped",
			log.FieldComponent, log.ComponentHTTP,
			"total_requests", traced.TotalRequests,
			"avg_response_us", traced.AverageResponseTime,
			"rate_limited", s.limiter.GetMetrics().Rejected,
			"suspicious", s.detector.GetMetrics().SuspiciousRequests)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			slog.WarnContext(r.Context(), "Readiness check failed",
				log.FieldComponent, log.ComponentHTTP,
				log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.Report(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	OK(newReportResponse(report)).Write(w)
}

// caller returns the identity attached by the auth middleware, or "" on
// unauthenticated routes.
func caller(r *http.Request) core.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}
