package analytics

import (
	"context"
	"time"

	"github.com/platinummonkey/tally/pkg/auth"
)

// RecordStore is the read surface of the external store that owns posts,
// likes, comments and users. Lookups of missing records return ErrNotFound.
type RecordStore interface {
	// FindTimestamps returns the occurred-at times of records matching the filter,
	// with Start and End both inclusive, in store retrieval order.
	FindTimestamps(ctx context.Context, filter Filter) ([]time.Time, error)

	// FindPostOwner returns the author of a post
	FindPostOwner(ctx context.Context, postID int64) (int64, error)

	// FindUserRole returns the role of a user
	FindUserRole(ctx context.Context, userID int64) (auth.Role, error)
}
