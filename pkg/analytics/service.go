package analytics

import (
	"context"
	"time"
)

// Service provides the statistics entry points
type Service struct {
	store      RecordStore
	aggregator *Aggregator
	now        func() time.Time
}

// NewService creates a new statistics service
func NewService(store RecordStore, config AggregatorConfig) *Service {
	return &Service{
		store:      store,
		aggregator: NewAggregator(store, config),
		now:        time.Now,
	}
}

// WithClock replaces the clock used to resolve periods
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UserActivityRequest selects a user activity report.
// Types is an optional comma separated filter; empty means posts, likes and comments.
type UserActivityRequest struct {
	UserID   *int64
	Period   Period
	Interval Interval
	Types    string
}

// PostActivityRequest selects a post activity report
type PostActivityRequest struct {
	PostID   *int64
	Period   Period
	Interval Interval
}

// UserActivity reports posts, likes and comments made by a user.
// A nil UserID reports on the caller.
func (s *Service) UserActivity(ctx context.Context, caller Caller, req UserActivityRequest) (*ActivityReport, error) {
	start, end, err := s.window(req.Period, req.Interval)
	if err != nil {
		return nil, err
	}

	types := UserActivityTypes
	if req.Types != "" {
		if types = ParseActivityTypes(req.Types); len(types) == 0 {
			return nil, NewInvalidArgumentError("invalid type")
		}
	}

	subjectID, err := UserScope(caller, req.UserID)
	if err != nil {
		return nil, err
	}
	if subjectID != caller.ID {
		if _, err := s.store.FindUserRole(ctx, subjectID); err != nil {
			return nil, classifyStoreError(ctx, "find user", err)
		}
	}

	stats, err := s.aggregator.Aggregate(ctx, subjectID, SubjectUser, types, start, end, req.Interval)
	if err != nil {
		return nil, err
	}

	return &ActivityReport{
		Kind:       SubjectUser,
		SubjectID:  &subjectID,
		Period:     req.Period,
		Interval:   req.Interval,
		Statistics: stats,
	}, nil
}

// PostActivity reports likes and comments received by a post.
// A nil PostID yields an empty report rather than an error.
func (s *Service) PostActivity(ctx context.Context, caller Caller, req PostActivityRequest) (*ActivityReport, error) {
	start, end, err := s.window(req.Period, req.Interval)
	if err != nil {
		return nil, err
	}

	if req.PostID == nil {
		return &ActivityReport{
			Kind:       SubjectPost,
			Period:     req.Period,
			Interval:   req.Interval,
			Statistics: Statistics{},
		}, nil
	}

	postID, err := PostScope(ctx, s.store, caller, *req.PostID)
	if err != nil {
		return nil, err
	}

	stats, err := s.aggregator.Aggregate(ctx, postID, SubjectPost, PostActivityTypes, start, end, req.Interval)
	if err != nil {
		return nil, err
	}

	return &ActivityReport{
		Kind:       SubjectPost,
		SubjectID:  &postID,
		Period:     req.Period,
		Interval:   req.Interval,
		Statistics: stats,
	}, nil
}

// window validates both tokens before any store access
func (s *Service) window(period Period, interval Interval) (time.Time, time.Time, error) {
	start, end, err := ResolvePeriod(period, s.now().UTC())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateInterval(interval); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
