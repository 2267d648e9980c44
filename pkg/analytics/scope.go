package analytics

import (
	"context"

	"github.com/platinummonkey/tally/pkg/auth"
)

// Caller is the authenticated identity a request is made on behalf of
type Caller struct {
	ID   int64
	Role auth.Role
}

// Scope is the authorization boundary of one request
type Scope struct {
	Kind      SubjectKind
	CallerID  int64
	SubjectID int64
	// OwnerID is the author of the subject post. Unused for user subjects.
	OwnerID int64
}

// IsPrivileged reports whether a caller with role may read any subject in scope.
// Admins are always privileged; post owners are privileged for their own posts.
func IsPrivileged(role auth.Role, scope Scope) bool {
	if role.IsAdmin() {
		return true
	}
	return scope.Kind == SubjectPost && scope.OwnerID == scope.CallerID
}

// UserScope returns the effective user subject for a request.
// A nil requested id means the caller's own statistics.
func UserScope(caller Caller, requested *int64) (int64, error) {
	if requested == nil {
		return caller.ID, nil
	}

	scope := Scope{Kind: SubjectUser, CallerID: caller.ID, SubjectID: *requested}
	if scope.SubjectID != caller.ID && !IsPrivileged(caller.Role, scope) {
		return 0, NewAccessDeniedError("cannot read statistics of another user")
	}
	return scope.SubjectID, nil
}

// PostScope checks that caller may read statistics of postID
func PostScope(ctx context.Context, store RecordStore, caller Caller, postID int64) (int64, error) {
	owner, err := store.FindPostOwner(ctx, postID)
	if err != nil {
		return 0, classifyStoreError(ctx, "find post owner", err)
	}

	scope := Scope{Kind: SubjectPost, CallerID: caller.ID, SubjectID: postID, OwnerID: owner}
	if !IsPrivileged(caller.Role, scope) {
		return 0, NewAccessDeniedError("cannot read statistics of another user's post")
	}
	return postID, nil
}
