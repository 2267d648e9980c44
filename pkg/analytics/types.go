package analytics

import (
	"strings"
	"time"
)

// Period is the symbolic lookback window of a report
type Period string

const (
	PeriodDay      Period = "day"
	PeriodWeek     Period = "week"
	PeriodMonth    Period = "month"
	PeriodHalfYear Period = "half-year"
)

// Interval is the bucket granularity of a report
type Interval string

const (
	IntervalHour  Interval = "hour"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ActivityType names a kind of recorded activity
type ActivityType string

const (
	ActivityPosts    ActivityType = "posts"
	ActivityLikes    ActivityType = "likes"
	ActivityComments ActivityType = "comments"
)

// UserActivityTypes is the fixed set aggregated for user subjects
var UserActivityTypes = []ActivityType{ActivityPosts, ActivityLikes, ActivityComments}

// PostActivityTypes is the fixed set aggregated for post subjects
var PostActivityTypes = []ActivityType{ActivityLikes, ActivityComments}

// SubjectKind tells whether a subject is a user or a post
type SubjectKind string

const (
	SubjectUser SubjectKind = "user"
	SubjectPost SubjectKind = "post"
)

// ParseActivityTypes parses a comma separated type list, dropping unknown entries.
// The result keeps the order of UserActivityTypes and never contains duplicates.
func ParseActivityTypes(raw string) []ActivityType {
	requested := make(map[ActivityType]bool)
	for _, part := range strings.Split(raw, ",") {
		requested[ActivityType(strings.ToLower(strings.TrimSpace(part)))] = true
	}

	types := make([]ActivityType, 0, len(UserActivityTypes))
	for _, t := range UserActivityTypes {
		if requested[t] {
			types = append(types, t)
		}
	}
	return types
}

// supports reports whether an activity type can be aggregated for a subject kind
func (k SubjectKind) supports(t ActivityType) bool {
	switch t {
	case ActivityPosts:
		return k == SubjectUser
	case ActivityLikes, ActivityComments:
		return true
	default:
		return false
	}
}

// Bucket is one labelled time slot and its event count
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Statistics maps each activity type to its ordered buckets
type Statistics map[ActivityType][]Bucket

// ActivityReport is the result of a statistics request.
// SubjectID is nil only for post reports requested without a post id.
type ActivityReport struct {
	Kind       SubjectKind `json:"type"`
	SubjectID  *int64      `json:"subjectId"`
	Period     Period      `json:"period"`
	Interval   Interval    `json:"interval"`
	Statistics Statistics  `json:"statistics"`
}

// Filter selects the records whose timestamps are fetched for one activity type.
// Exactly one of UserID and PostID is set.
type Filter struct {
	Type   ActivityType
	UserID *int64
	PostID *int64
	Start  time.Time
	End    time.Time
}
