// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	TALLY_HOST="0.0.0.0"
//	TALLY_PORT="8080"
//	TALLY_HEALTH_PORT="9090"
//	TALLY_TLS_CERT_FILE="/etc/tally/tls.crt"
//	TALLY_TLS_KEY_FILE="/etc/tally/tls.key"
//
// Caller tokens and statistics:
//
//	TALLY_JWT_SECRET="..."            # required
//	TALLY_JWT_ISSUER="community"
//	TALLY_QUERY_TIMEOUT="10s"
//	TALLY_MAX_PARALLEL="0"            # 0 means one read per activity type
//
// Storage settings:
//
//	TALLY_STORAGE_TYPE="postgres"     # memory, postgres
//	TALLY_POSTGRES_URL="postgres://localhost/community"
//	TALLY_POSTGRES_REPLICA_URLS="postgres://replica1/community,postgres://replica2/community"
//	TALLY_ARTIFACT_TYPE="s3"          # filesystem, s3
//	TALLY_S3_BUCKET="tally-reports"
//	TALLY_S3_REGION="us-east-1"
//
// Cache settings:
//
//	TALLY_CACHE_ENABLED="true"
//	TALLY_REDIS_URL="redis://localhost:6379"
//	TALLY_LOOKUP_CACHE_SIZE="10000"
//	TALLY_POST_OWNER_TTL="1h"
//	TALLY_USER_ROLE_TTL="5m"
//
// Reports:
//
//	TALLY_REPORT_RATE_LIMIT="10"      # generate requests per caller per minute
//	TALLY_EXPORTS_FILE="exports.yaml"
//
// Observability:
//
//	TALLY_LOG_LEVEL="info"
//	TALLY_METRICS_ENABLED="true"
//	TALLY_OTEL_ENABLED="false"
//	TALLY_OTEL_ENDPOINT="localhost:4317"
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Scheduled Exports
//
// tally-exporter reads a YAML schedule:
//
//	exports:
//	  - name: weekly-digest
//	    schedule: "0 6 * * 1"
//	    users: [2, 3]
//	    period: week
//	    interval: day
package config
