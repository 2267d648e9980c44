// Package memory provides an in-process record store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/platinummonkey/tally/pkg/analytics"
	"github.com/platinummonkey/tally/pkg/auth"
	"github.com/platinummonkey/tally/pkg/storage"
)

type post struct {
	id        int64
	authorID  int64
	createdAt time.Time
}

type reaction struct {
	userID    int64
	postID    int64
	createdAt time.Time
}

// Store implements analytics.RecordStore and storage.ReportRecordStore in memory.
// Events are returned in insertion order.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]auth.Role
	posts    []post
	postByID map[int64]int
	likes    []reaction
	comments []reaction
	reports  []storage.ReportRecord
	nextID   int64
}

// NewStore creates a new empty Store
func NewStore() *Store {
	return &Store{
		users:    make(map[int64]auth.Role),
		postByID: make(map[int64]int),
	}
}

// AddUser registers a user with a role
func (s *Store) AddUser(id int64, role auth.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = role
}

// AddPost records a post written by authorID
func (s *Store) AddPost(id, authorID int64, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.postByID[id] = len(s.posts)
	s.posts = append(s.posts, post{id: id, authorID: authorID, createdAt: createdAt})
}

// AddLike records a like of postID by userID
func (s *Store) AddLike(userID, postID int64, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = append(s.likes, reaction{userID: userID, postID: postID, createdAt: createdAt})
}

// AddComment records a comment on postID by userID
func (s *Store) AddComment(userID, postID int64, createdAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, reaction{userID: userID, postID: postID, createdAt: createdAt})
}

// FindTimestamps implements analytics.RecordStore
func (s *Store) FindTimestamps(ctx context.Context, filter analytics.Filter) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	inWindow := func(t time.Time) bool {
		return !t.Before(filter.Start) && !t.After(filter.End)
	}

	out := make([]time.Time, 0)
	switch filter.Type {
	case analytics.ActivityPosts:
		if filter.UserID == nil {
			return out, nil
		}
		for _, p := range s.posts {
			if p.authorID == *filter.UserID && inWindow(p.createdAt) {
				out = append(out, p.createdAt)
			}
		}
	case analytics.ActivityLikes:
		out = matchReactions(out, s.likes, filter, inWindow)
	case analytics.ActivityComments:
		out = matchReactions(out, s.comments, filter, inWindow)
	default:
		return nil, analytics.NewInvalidArgumentError("unknown activity type " + string(filter.Type))
	}
	return out, nil
}

func matchReactions(out []time.Time, events []reaction, filter analytics.Filter, inWindow func(time.Time) bool) []time.Time {
	for _, e := range events {
		if !inWindow(e.createdAt) {
			continue
		}
		switch {
		case filter.UserID != nil && e.userID == *filter.UserID:
			out = append(out, e.createdAt)
		case filter.PostID != nil && e.postID == *filter.PostID:
			out = append(out, e.createdAt)
		}
	}
	return out
}

// FindPostOwner implements analytics.RecordStore
func (s *Store) FindPostOwner(ctx context.Context, postID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.postByID[postID]
	if !ok {
		return 0, analytics.NewNotFoundError(analytics.SubjectPost, postID)
	}
	return s.posts[i].authorID, nil
}

// FindUserRole implements analytics.RecordStore
func (s *Store) FindUserRole(ctx context.Context, userID int64) (auth.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	role, ok := s.users[userID]
	if !ok {
		return 0, analytics.NewNotFoundError(analytics.SubjectUser, userID)
	}
	return role, nil
}

// SaveReportRecord implements storage.ReportRecordStore
func (s *Store) SaveReportRecord(ctx context.Context, record *storage.ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	record.ID = s.nextID
	s.reports = append(s.reports, *record)
	return nil
}

// LatestReportRecord implements storage.ReportRecordStore
func (s *Store) LatestReportRecord(ctx context.Context, subjectID int64) (*storage.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []storage.ReportRecord
	for _, r := range s.reports {
		if r.SubjectID == subjectID {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return nil, storage.ErrNoReport
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].GeneratedAt.Equal(matches[j].GeneratedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].GeneratedAt.After(matches[j].GeneratedAt)
	})
	latest := matches[0]
	return &latest, nil
}

// HealthCheck implements storage.HealthChecker
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}
