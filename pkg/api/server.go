package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
	"github.com/platinummonkey/tally/pkg/httputil"
	"github.com/platinummonkey/tally/pkg/middleware"
	"github.com/platinummonkey/tally/pkg/reports"
	"github.com/platinummonkey/tally/pkg/storage"
)

// maxRequestBytes bounds JSON request bodies
const maxRequestBytes = 1 << 20

// StatisticsService computes activity reports
type StatisticsService interface {
	UserActivity(ctx context.Context, caller analytics.Caller, req analytics.UserActivityRequest) (*analytics.ActivityReport, error)
	PostActivity(ctx context.Context, caller analytics.Caller, req analytics.PostActivityRequest) (*analytics.ActivityReport, error)
}

// ReportService renders and looks up exported reports
type ReportService interface {
	Generate(ctx context.Context, caller analytics.Caller, req reports.GenerateRequest) (*storage.ReportRecord, error)
	Latest(ctx context.Context, caller analytics.Caller, target *int64) (*storage.ReportRecord, error)
}

// ServerOptions wires the server's collaborators
type ServerOptions struct {
	Statistics   StatisticsService
	Reports      ReportService // Optional, report routes are skipped when nil
	TokenManager *auth.TokenManager
	Logger       *logrus.Logger

	// ReportLimiter throttles report generation per caller. Nil disables the limit.
	ReportLimiter middleware.Limiter

	// ReportLimitFailClosed rejects generate requests with 503 while the limiter is unavailable
	ReportLimitFailClosed bool

	// ArtifactDir is served under /artifacts/ when set
	ArtifactDir string

	// Middleware is applied outside the built-in request id, logging and recovery chain
	Middleware []func(http.Handler) http.Handler
}

// Server is the tally HTTP API server
type Server struct {
	router    *mux.Router
	stats     StatisticsService
	reports   ReportService
	auth      *middleware.AuthMiddleware
	rateLimit *middleware.RateLimitMiddleware
	logger    *logrus.Logger
	opts      ServerOptions
}

// NewServer creates a new API server
func NewServer(opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	s := &Server{
		router:  mux.NewRouter(),
		stats:   opts.Statistics,
		reports: opts.Reports,
		auth:    middleware.NewAuthMiddleware(opts.TokenManager, false),
		logger:  opts.Logger,
		opts:    opts,
	}
	if opts.ReportLimiter != nil {
		s.rateLimit = middleware.NewRateLimitMiddleware(opts.ReportLimiter, opts.Logger)
		s.rateLimit.SetFallbackEnabled(!opts.ReportLimitFailClosed)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "route not found")
	})

	// Statistics routes
	statistics := s.router.PathPrefix("/statistics").Subrouter()
	statistics.Use(s.auth.Handler)
	statistics.HandleFunc("/user-activity", s.getUserActivity).Methods("GET")
	statistics.HandleFunc("/post-activity", s.getPostActivity).Methods("GET")

	// Report routes
	if s.reports != nil {
		reportRoutes := s.router.PathPrefix("/reports").Subrouter()
		reportRoutes.Use(s.auth.Handler)

		var generate http.Handler = http.HandlerFunc(s.generateReport)
		if s.rateLimit != nil {
			generate = s.rateLimit.Handler(generate)
		}
		reportRoutes.Handle("/generate", httputil.MaxBytesMiddleware(maxRequestBytes)(generate)).Methods("POST")
		reportRoutes.HandleFunc("/download", s.downloadReport).Methods("GET")
	}

	// Locally stored artifacts
	if s.opts.ArtifactDir != "" {
		files := http.StripPrefix("/artifacts/", http.FileServer(http.Dir(s.opts.ArtifactDir)))
		s.router.PathPrefix("/artifacts/").Handler(files).Methods("GET", "HEAD")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the router wrapped in the standard middleware chain and tracing
func (s *Server) Handler() http.Handler {
	chain := append([]func(http.Handler) http.Handler{}, s.opts.Middleware...)
	chain = append(chain,
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
	)
	return otelhttp.NewHandler(httputil.Chain(chain...)(s), "tally-api")
}

// Router exposes the underlying router for additional routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// callerFromRequest builds the engine caller from the authenticated request
func callerFromRequest(r *http.Request) (analytics.Caller, bool) {
	authCtx := middleware.GetAuthContext(r)
	if authCtx == nil {
		return analytics.Caller{}, false
	}
	return analytics.Caller{ID: authCtx.UserID, Role: authCtx.Role}, true
}
