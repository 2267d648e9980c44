package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
	"github.com/platinummonkey/tally/pkg/backend"
	"github.com/platinummonkey/tally/pkg/config"
	"github.com/platinummonkey/tally/pkg/observability"
	"github.com/platinummonkey/tally/pkg/reports"
)

// systemCaller runs scheduled exports with admin access
var systemCaller = analytics.Caller{ID: 0, Role: auth.RoleAdmin}

var (
	exportsFile = flag.String("exports", "", "YAML export schedule (defaults to TALLY_EXPORTS_FILE)")
	runOnce     = flag.Bool("run-once", false, "Run every export job once and exit")
	jobName     = flag.String("job", "", "Only run the named job. Only used with --run-once")
	jobTimeout  = flag.Duration("job-timeout", 5*time.Minute, "Maximum duration of a single export job")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("tally exporter exited with error")
	}
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	path := *exportsFile
	if path == "" {
		path = cfg.Reports.ExportsFile
	}
	schedule, err := config.LoadExportSchedule(path)
	if err != nil {
		return fmt.Errorf("failed to load export schedule %s: %w", path, err)
	}

	ctx := context.Background()
	backends, err := backend.Open(ctx, cfg.Storage, backend.Options{SeedDemo: cfg.Server.SeedDemo}, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	service := analytics.NewService(backends.Records, analytics.AggregatorConfig{
		QueryTimeout: cfg.Statistics.QueryTimeout,
		MaxParallel:  cfg.Statistics.MaxParallel,
		Observer:     metrics.QueryObserver(),
	})
	exporter := reports.NewExporter(service, backends.Artifacts, backends.Reports, logger).WithObserver(metrics.RecordExport)
	runner := &jobRunner{exporter: exporter, logger: logger, timeout: *jobTimeout}
	if cfg.Observability.MetricsEnabled && cfg.Observability.MetricsPushURL != "" {
		runner.pushURL = cfg.Observability.MetricsPushURL
		runner.registry = registry
	}

	// Run once mode (for testing or backfilling)
	if *runOnce {
		failed := 0
		for _, job := range schedule.Exports {
			if *jobName != "" && job.Name != *jobName {
				continue
			}
			failed += runner.run(job)
		}
		if failed > 0 {
			return fmt.Errorf("export run finished with %d failures", failed)
		}
		logger.Info("export run completed successfully")
		return nil
	}

	// Scheduled mode
	c := cron.New()
	for _, job := range schedule.Exports {
		if _, err := c.AddFunc(job.Schedule, func() { runner.run(job) }); err != nil {
			return fmt.Errorf("failed to schedule export job %s: %w", job.Name, err)
		}
		logger.WithFields(logrus.Fields{
			"job":      job.Name,
			"schedule": job.Schedule,
			"users":    len(job.UserIDs),
		}).Info("export job scheduled")
	}

	c.Start()
	logger.WithField("jobs", len(schedule.Exports)).Info("tally exporter started")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down exporter")
	<-c.Stop().Done()
	return nil
}

type jobRunner struct {
	exporter *reports.Exporter
	logger   *logrus.Logger
	timeout  time.Duration

	// pushURL is a Pushgateway receiving registry after every job
	pushURL  string
	registry prometheus.Gatherer
}

// run exports every user of the job and returns the number of failures
func (r *jobRunner) run(job config.ExportJob) (failed int) {
	defer observability.RecoverPanic(r.logger, "export job "+job.Name)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	log := r.logger.WithField("job", job.Name)
	log.Info("starting export job")
	start := time.Now()

	for _, userID := range job.UserIDs {
		target := userID
		record, err := r.exporter.Generate(ctx, systemCaller, reports.GenerateRequest{
			TargetUserID: &target,
			Period:       job.Period,
			Interval:     job.Interval,
		})
		if err != nil {
			failed++
			log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"kind":    analytics.KindOf(err).String(),
			}).Error("export failed")
			continue
		}
		log.WithFields(logrus.Fields{
			"user_id": userID,
			"url":     record.URL,
		}).Debug("export stored")
	}

	log.WithFields(logrus.Fields{
		"exported": len(job.UserIDs) - failed,
		"failed":   failed,
		"duration": time.Since(start).String(),
	}).Info("export job finished")

	if err := r.pushMetrics(job.Name); err != nil {
		log.WithError(err).Warn("failed to push export metrics")
	}
	return failed
}

// pushMetrics replaces the job's metric group on the Pushgateway
func (r *jobRunner) pushMetrics(jobName string) error {
	if r.pushURL == "" {
		return nil
	}
	return push.New(r.pushURL, "tally_exporter").
		Gatherer(r.registry).
		Grouping("export_job", jobName).
		Push()
}
