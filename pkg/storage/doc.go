// Package storage provides the persistence backends used by tally.
//
// # Overview
//
// tally does not own activity data. Posts, likes, comments and users live in an
// external record store that the analytics engine reads through
// analytics.RecordStore. This package supplies implementations of that read
// surface, plus the stores used by report exports:
//
//   - memory: in-process record store for development, demos and tests
//   - postgres: PostgreSQL record store, Redis lookup cache, S3 artifact store
//   - FileSystemArtifactStore: local artifact store for development
//   - CachedRecordStore: LRU cache for post owner and user role lookups
//
// # Interfaces
//
//	type ArtifactStore interface {
//		PutArtifact(ctx context.Context, key string, content []byte, contentType string) (string, error)
//	}
//
//	type ReportRecordStore interface {
//		SaveReportRecord(ctx context.Context, record *ReportRecord) error
//		LatestReportRecord(ctx context.Context, subjectID int64) (*ReportRecord, error)
//	}
//
// # Caching
//
// Post ownership and user roles are looked up on every scoped request. The
// CachedRecordStore keeps them in a bounded in-process LRU (L1) and, when a
// LookupCache such as postgres.RedisClient is configured, in Redis (L2):
//
//	records := storage.NewCachedRecordStore(pgStore, redisClient, cfg)
//
// Timestamp queries are never cached.
//
// # Configuration
//
//	cfg := storage.DefaultConfig()
//	cfg.Type = "postgres"
//	cfg.PostgresURL = "postgres://localhost/app?sslmode=disable"
//	cfg.ArtifactType = "s3"
//	cfg.S3Bucket = "tally-reports"
package storage
