package postgres

import (
	"context"
	"fmt"
)

// schema is applied idempotently at startup. The activity tables are usually
// owned by the main application; creating them here keeps local setups working.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		role_id INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id BIGSERIAL PRIMARY KEY,
		author_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		post_id BIGINT NOT NULL REFERENCES posts(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		post_id BIGINT NOT NULL REFERENCES posts(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS statistics_reports (
		id BIGSERIAL PRIMARY KEY,
		subject_id BIGINT NOT NULL,
		url TEXT NOT NULL,
		generated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts (author_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_user_created ON likes (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_post_created ON likes (post_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_user_created ON comments (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_statistics_reports_subject ON statistics_reports (subject_id, generated_at DESC)`,
}

// EnsureSchema creates missing tables and indexes on the primary
func EnsureSchema(ctx context.Context, conns *ConnectionManager) error {
	for i, stmt := range schema {
		if _, err := conns.Primary().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}
