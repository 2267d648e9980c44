package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNoReport is returned when no report record exists for a subject
var ErrNoReport = errors.New("no report found")

// ReportRecord remembers where a generated report artifact was stored
type ReportRecord struct {
	ID          int64     `json:"id"`
	SubjectID   int64     `json:"subjectId"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ArtifactStore stores rendered report artifacts and returns their download URL
type ArtifactStore interface {
	PutArtifact(ctx context.Context, key string, content []byte, contentType string) (url string, err error)
}

// ReportRecordStore persists generated artifact records
type ReportRecordStore interface {
	SaveReportRecord(ctx context.Context, record *ReportRecord) error
	// LatestReportRecord returns ErrNoReport when the subject has no records
	LatestReportRecord(ctx context.Context, subjectID int64) (*ReportRecord, error)
}

// LookupCache is a shared second level cache for immutable integer lookups.
// Get reports found=false on a miss.
type LookupCache interface {
	GetInt64(ctx context.Context, key string) (value int64, found bool, err error)
	SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error
}

// HealthChecker is implemented by backends that can report connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Config for storage backends
type Config struct {
	Type string // "memory" or "postgres"

	// Artifact store: "filesystem" or "s3"
	ArtifactType    string
	FilesystemRoot  string
	ArtifactBaseURL string

	// PostgreSQL config
	PostgresURL         string
	PostgresReplicaURLs string // Comma-separated
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration

	// S3 config
	S3Endpoint     string
	S3Region       string
	S3Bucket       string
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
	S3PublicURL    string // Base URL for artifact links, defaults to the endpoint

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled    bool
	CacheTTL        map[string]time.Duration
	LookupCacheSize int // Entries
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:             "memory",
		ArtifactType:     "filesystem",
		FilesystemRoot:   "/tmp/tally/reports",
		ArtifactBaseURL:  "http://localhost:8080/artifacts",
		PostgresMaxConns: 20,
		PostgresMinConns: 2,
		PostgresTimeout:  10 * time.Second,
		S3Region:         "us-east-1",
		RedisDB:          0,
		RedisMaxRetries:  3,
		RedisPoolSize:    10,
		CacheEnabled:     true,
		CacheTTL: map[string]time.Duration{
			CacheKeyPostOwner: 1 * time.Hour,
			CacheKeyUserRole:  5 * time.Minute,
		},
		LookupCacheSize: 10000,
	}
}

// Cache TTL keys
const (
	CacheKeyPostOwner = "post_owner"
	CacheKeyUserRole  = "user_role"
)
