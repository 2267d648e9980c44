package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/observability"
	"github.com/platinummonkey/tally/pkg/storage"
	"github.com/platinummonkey/tally/pkg/storage/memory"
	"github.com/platinummonkey/tally/pkg/storage/postgres"
)

// Options tune how backends are opened
type Options struct {
	// SeedDemo fills the memory store with demo data
	SeedDemo bool

	// ReplicaCheckInterval is how often unhealthy postgres replicas are pruned
	ReplicaCheckInterval time.Duration
}

// Backends holds the opened storage backends
type Backends struct {
	Records   analytics.RecordStore
	Reports   storage.ReportRecordStore
	Artifacts storage.ArtifactStore

	// Cache is set when lookup caching is enabled
	Cache *storage.CachedRecordStore

	// Redis is set when a Redis URL is configured
	Redis *postgres.RedisClient

	// FilesystemRoot is set when artifacts are written to local disk
	FilesystemRoot string

	conns  *postgres.ConnectionManager
	checks []healthCheck
	cancel context.CancelFunc
	logger *logrus.Logger
}

type healthCheck struct {
	name     string
	checker  storage.HealthChecker
	critical bool
}

// Open connects every backend named in cfg. Callers must Close the result.
func Open(ctx context.Context, cfg storage.Config, opts Options, logger *logrus.Logger) (*Backends, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	b := &Backends{logger: logger}
	if err := b.openRecords(ctx, cfg, opts); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openRedis(cfg); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.openArtifacts(cfg); err != nil {
		b.Close()
		return nil, err
	}

	if cfg.CacheEnabled {
		var l2 storage.LookupCache
		if b.Redis != nil {
			l2 = b.Redis
		}
		b.Cache = storage.NewCachedRecordStore(b.Records, l2, cfg)
		b.Records = b.Cache
	}

	logger.WithFields(logrus.Fields{
		"storage":   cfg.Type,
		"artifacts": cfg.ArtifactType,
		"cache":     cfg.CacheEnabled,
		"redis":     b.Redis != nil,
	}).Info("storage backends ready")

	return b, nil
}

func (b *Backends) openRecords(ctx context.Context, cfg storage.Config, opts Options) error {
	switch cfg.Type {
	case "", "memory":
		store := memory.NewStore()
		if opts.SeedDemo {
			memory.SeedDemoData(store, time.Now().UTC())
			b.logger.Info("seeded memory store with demo data")
		}
		b.Records = store
		b.Reports = store
		b.addCheck("memory", store, true)
		return nil

	case "postgres":
		conns, err := postgres.NewConnectionManager(postgres.ConnectionConfig{
			PrimaryURL:  cfg.PostgresURL,
			ReplicaURLs: postgres.ParseReplicaURLs(cfg.PostgresReplicaURLs),
			MaxConns:    cfg.PostgresMaxConns,
			MinConns:    cfg.PostgresMinConns,
			Timeout:     cfg.PostgresTimeout,
		}, b.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		b.conns = conns

		if err := postgres.EnsureSchema(ctx, conns); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}

		routineCtx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		conns.StartHealthCheckRoutine(routineCtx, opts.ReplicaCheckInterval)

		records := postgres.NewRecordStore(conns)
		b.Records = records
		b.Reports = postgres.NewReportStore(conns)
		b.addCheck("postgres", records, true)
		return nil

	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func (b *Backends) openRedis(cfg storage.Config) error {
	if cfg.RedisURL == "" {
		return nil
	}
	client, err := postgres.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	b.Redis = client
	b.addCheck("redis", client, false)
	return nil
}

func (b *Backends) openArtifacts(cfg storage.Config) error {
	switch cfg.ArtifactType {
	case "", "filesystem":
		fs, err := storage.NewFileSystemArtifactStore(cfg.FilesystemRoot, cfg.ArtifactBaseURL)
		if err != nil {
			return err
		}
		b.Artifacts = fs
		b.FilesystemRoot = fs.Root()
		return nil

	case "s3":
		client, err := postgres.NewS3Client(cfg)
		if err != nil {
			return fmt.Errorf("failed to create s3 client: %w", err)
		}
		b.Artifacts = client
		b.addCheck("s3", client, false)
		return nil

	default:
		return fmt.Errorf("unsupported artifact type: %s", cfg.ArtifactType)
	}
}

func (b *Backends) addCheck(name string, checker storage.HealthChecker, critical bool) {
	b.checks = append(b.checks, healthCheck{name: name, checker: checker, critical: critical})
}

// RegisterHealthChecks adds a dependency check for every opened backend
func (b *Backends) RegisterHealthChecks(checker *observability.HealthChecker) {
	for _, c := range b.checks {
		checker.AddCheck(c.name, c.checker, c.critical)
	}
}

// Close releases every connection. It is safe to call on a partially opened set.
func (b *Backends) Close() error {
	if b.cancel != nil {
		b.cancel()
	}

	var errs []error
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if b.conns != nil {
		if err := b.conns.Close(); err != nil {
			errs = append(errs, fmt.Errorf("postgres close: %w", err))
		}
	}
	return errors.Join(errs...)
}
