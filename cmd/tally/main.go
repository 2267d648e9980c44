package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/api"
	"github.com/platinummonkey/tally/pkg/auth"
	"github.com/platinummonkey/tally/pkg/backend"
	"github.com/platinummonkey/tally/pkg/config"
	"github.com/platinummonkey/tally/pkg/middleware"
	"github.com/platinummonkey/tally/pkg/observability"
	"github.com/platinummonkey/tally/pkg/reports"
)

var version = "dev"

func main() {
	issueToken := flag.Int64("issue-token", 0, "Print a bearer token for this user id and exit")
	asAdmin := flag.Bool("admin", false, "Issue the token with the admin role (with --issue-token)")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of tokens printed by --issue-token")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if *issueToken > 0 {
		role := auth.RoleRegular
		if *asAdmin {
			role = auth.RoleAdmin
		}
		token, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, *tokenTTL).IssueToken(*issueToken, role)
		if err != nil {
			logger.WithError(err).Fatal("failed to issue token")
		}
		fmt.Println(token)
		return
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("tally exited with error")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	ctx := context.Background()

	otelCfg := cfg.Observability.OTel()
	if otelCfg.ServiceVersion == "" {
		otelCfg.ServiceVersion = version
	}
	providers, err := observability.InitOTel(ctx, otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	backends, err := backend.Open(ctx, cfg.Storage, backend.Options{SeedDemo: cfg.Server.SeedDemo}, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	if backends.Cache != nil {
		metrics.RegisterCacheStats(backends.Cache.Stats)
		metrics.RegisterCacheErrors(backends.Cache.L2Errors)
	}

	service := analytics.NewService(backends.Records, analytics.AggregatorConfig{
		QueryTimeout: cfg.Statistics.QueryTimeout,
		MaxParallel:  cfg.Statistics.MaxParallel,
		Observer:     metrics.QueryObserver(),
	})
	exporter := reports.NewExporter(service, backends.Artifacts, backends.Reports, logger).WithObserver(metrics.RecordExport)

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	limiter := reportLimiter(limiterCtx, cfg, backends)

	var serverMiddleware []func(http.Handler) http.Handler
	if cfg.Observability.MetricsEnabled {
		serverMiddleware = append(serverMiddleware, observability.HTTPMetricsMiddleware(metrics))
	}

	apiServer := api.NewServer(api.ServerOptions{
		Statistics:            service,
		Reports:               exporter,
		TokenManager:          auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, 0),
		Logger:                logger,
		ReportLimiter:         limiter,
		ReportLimitFailClosed: cfg.Reports.RateLimitFailClosed,
		ArtifactDir:           backends.FilesystemRoot,
		Middleware:            serverMiddleware,
	})

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(version)
	backends.RegisterHealthChecks(health)
	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, health)
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:           healthMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		stopLimiter()
		return backends.Close()
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	serveErr := make(chan error, 2)
	go func() {
		defer observability.RecoverPanic(logger, "health server")
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		defer observability.RecoverPanic(logger, "api server")
		logger.WithFields(logrus.Fields{
			"addr":    httpServer.Addr,
			"tls":     cfg.Server.TLSEnabled(),
			"version": version,
		}).Info("tally API listening")

		var err error
		if cfg.Server.TLSEnabled() {
			err = httpServer.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("api server: %w", err)
		}
	}()

	shutdownDone := make(chan error, 1)
	go func() {
		shutdownDone <- shutdown.WaitForShutdown()
	}()

	select {
	case err := <-serveErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if shutdownErr := shutdown.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WithError(shutdownErr).Error("shutdown after server failure")
		}
		return err
	case err := <-shutdownDone:
		if err != nil {
			return err
		}
		logger.Info("tally stopped")
		return nil
	}
}

// reportLimiter shares limits through Redis when it is configured
func reportLimiter(ctx context.Context, cfg *config.Config, backends *backend.Backends) middleware.Limiter {
	if cfg.Reports.RateLimit <= 0 {
		return nil
	}
	limitCfg := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Reports.RateLimit,
		WindowDuration:    time.Minute,
	}

	if backends.Redis != nil {
		return middleware.NewDistributedRateLimiter(backends.Redis.GetClient(), limitCfg, "tally:ratelimit:reports")
	}

	limiter := middleware.NewRateLimiter(limitCfg)
	limiter.StartCleanup(ctx)
	return limiter
}
