package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/platinummonkey/tally/pkg/auth"
)

type event struct {
	userID int64
	postID int64
	at     time.Time
}

// fakeStore is an in-memory RecordStore that counts timestamp queries
type fakeStore struct {
	mu      sync.Mutex
	events  map[ActivityType][]event
	owners  map[int64]int64
	roles   map[int64]auth.Role
	queries []Filter

	// block makes FindTimestamps wait for context cancellation
	block bool
	// blockLookups does the same for owner and role lookups
	blockLookups bool
	// cancelErr replaces ctx.Err() as the error returned after blocking
	cancelErr error
	// fail makes FindTimestamps return this error for the given type
	fail map[ActivityType]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events: make(map[ActivityType][]event),
		owners: make(map[int64]int64),
		roles:  make(map[int64]auth.Role),
		fail:   make(map[ActivityType]error),
	}
}

func (f *fakeStore) add(activity ActivityType, userID, postID int64, at string) {
	ts, err := time.Parse(time.RFC3339, at)
	if err != nil {
		panic(err)
	}
	f.events[activity] = append(f.events[activity], event{userID: userID, postID: postID, at: ts})
}

func (f *fakeStore) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *fakeStore) FindTimestamps(ctx context.Context, filter Filter) ([]time.Time, error) {
	f.mu.Lock()
	f.queries = append(f.queries, filter)
	failErr := f.fail[filter.Type]
	f.mu.Unlock()

	if f.block {
		return nil, f.wait(ctx)
	}
	if failErr != nil {
		return nil, failErr
	}

	var out []time.Time
	for _, e := range f.events[filter.Type] {
		if e.at.Before(filter.Start) || e.at.After(filter.End) {
			continue
		}
		switch {
		case filter.UserID != nil && e.userID == *filter.UserID:
			out = append(out, e.at)
		case filter.PostID != nil && e.postID == *filter.PostID:
			out = append(out, e.at)
		}
	}
	return out, nil
}

func (f *fakeStore) wait(ctx context.Context) error {
	<-ctx.Done()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	return ctx.Err()
}

func (f *fakeStore) FindPostOwner(ctx context.Context, postID int64) (int64, error) {
	if f.blockLookups {
		return 0, f.wait(ctx)
	}
	owner, ok := f.owners[postID]
	if !ok {
		return 0, NewNotFoundError(SubjectPost, postID)
	}
	return owner, nil
}

func (f *fakeStore) FindUserRole(ctx context.Context, userID int64) (auth.Role, error) {
	if f.blockLookups {
		return 0, f.wait(ctx)
	}
	role, ok := f.roles[userID]
	if !ok {
		return 0, NewNotFoundError(SubjectUser, userID)
	}
	return role, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
