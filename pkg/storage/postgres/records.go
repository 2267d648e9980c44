package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
)

var tracer = otel.Tracer("github.com/platinummonkey/tally/pkg/storage/postgres")

// Rows come back in id order, which is insertion order for the serial keys.
const (
	queryPostsByAuthor = `SELECT created_at FROM posts
		WHERE author_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id`
	queryLikesByUser = `SELECT created_at FROM likes
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id`
	queryLikesByPost = `SELECT created_at FROM likes
		WHERE post_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id`
	queryCommentsByUser = `SELECT created_at FROM comments
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id`
	queryCommentsByPost = `SELECT created_at FROM comments
		WHERE post_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY id`
	queryPostOwner = `SELECT author_id FROM posts WHERE id = $1`
	queryUserRole  = `SELECT role_id FROM users WHERE id = $1`
)

// RecordStore implements analytics.RecordStore over the posts, likes,
// comments and users tables. All reads go to replicas.
type RecordStore struct {
	conns *ConnectionManager
}

// NewRecordStore creates a record store over the given connections
func NewRecordStore(conns *ConnectionManager) *RecordStore {
	return &RecordStore{conns: conns}
}

// selectQuery picks the timestamp query and its subject argument for a filter
func selectQuery(filter analytics.Filter) (string, int64, error) {
	switch filter.Type {
	case analytics.ActivityPosts:
		if filter.UserID == nil {
			return "", 0, analytics.NewInvalidArgumentError("posts require a user filter")
		}
		return queryPostsByAuthor, *filter.UserID, nil
	case analytics.ActivityLikes:
		if filter.PostID != nil {
			return queryLikesByPost, *filter.PostID, nil
		}
		if filter.UserID != nil {
			return queryLikesByUser, *filter.UserID, nil
		}
	case analytics.ActivityComments:
		if filter.PostID != nil {
			return queryCommentsByPost, *filter.PostID, nil
		}
		if filter.UserID != nil {
			return queryCommentsByUser, *filter.UserID, nil
		}
	default:
		return "", 0, analytics.NewInvalidArgumentError("unknown activity type " + string(filter.Type))
	}
	return "", 0, analytics.NewInvalidArgumentError("filter has no subject")
}

// FindTimestamps returns creation timestamps matching the filter in id order
func (s *RecordStore) FindTimestamps(ctx context.Context, filter analytics.Filter) ([]time.Time, error) {
	ctx, span := tracer.Start(ctx, "RecordStore.FindTimestamps",
		trace.WithAttributes(
			attribute.String("activity.type", string(filter.Type)),
			attribute.String("db.operation", "SELECT"),
		),
	)
	defer span.End()

	query, subjectID, err := selectQuery(filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid filter")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("subject.id", subjectID))

	rows, err := s.conns.Replica().QueryContext(ctx, query, subjectID, filter.Start, filter.End)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to query %s: %w", filter.Type, err)
	}
	defer rows.Close()

	timestamps := make([]time.Time, 0)
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan %s: %w", filter.Type, err)
		}
		timestamps = append(timestamps, createdAt)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "row iteration failed")
		return nil, fmt.Errorf("failed to read %s: %w", filter.Type, err)
	}

	span.SetAttributes(attribute.Int("result.count", len(timestamps)))
	span.SetStatus(codes.Ok, "")
	return timestamps, nil
}

// FindPostOwner returns the author of a post
func (s *RecordStore) FindPostOwner(ctx context.Context, postID int64) (int64, error) {
	ctx, span := tracer.Start(ctx, "RecordStore.FindPostOwner",
		trace.WithAttributes(attribute.Int64("post.id", postID)),
	)
	defer span.End()

	var authorID int64
	err := s.conns.Replica().QueryRowContext(ctx, queryPostOwner, postID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, analytics.NewNotFoundError(analytics.SubjectPost, postID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return 0, fmt.Errorf("failed to find post owner: %w", err)
	}
	return authorID, nil
}

// FindUserRole returns the role of a user
func (s *RecordStore) FindUserRole(ctx context.Context, userID int64) (auth.Role, error) {
	ctx, span := tracer.Start(ctx, "RecordStore.FindUserRole",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	var roleID int
	err := s.conns.Replica().QueryRowContext(ctx, queryUserRole, userID).Scan(&roleID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, analytics.NewNotFoundError(analytics.SubjectUser, userID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return 0, fmt.Errorf("failed to find user role: %w", err)
	}

	role, err := auth.ParseRoleID(roleID)
	if err != nil {
		return 0, fmt.Errorf("user %d: %w", userID, err)
	}
	return role, nil
}

// HealthCheck verifies the database connections
func (s *RecordStore) HealthCheck(ctx context.Context) error {
	return s.conns.HealthCheck(ctx)
}
