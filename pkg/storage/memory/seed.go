package memory

import (
	"time"

	"github.com/platinummonkey/tally/pkg/auth"
)

// SeedDemoData fills the store with a small community relative to now:
// an admin (1), two regular users (2, 3) and a handful of posts with likes and comments.
func SeedDemoData(s *Store, now time.Time) {
	s.AddUser(1, auth.RoleAdmin)
	s.AddUser(2, auth.RoleRegular)
	s.AddUser(3, auth.RoleRegular)

	hoursAgo := func(h int) time.Time {
		return now.Add(-time.Duration(h) * time.Hour)
	}

	// User 2 posts steadily over the last few months
	for i, h := range []int{2, 26, 50, 170, 340, 800, 2000, 3500} {
		s.AddPost(int64(100+i), 2, hoursAgo(h))
	}
	// User 3 posts occasionally
	for i, h := range []int{5, 400, 1500} {
		s.AddPost(int64(200+i), 3, hoursAgo(h))
	}

	// User 3 likes and comments on user 2's posts
	for i, h := range []int{1, 3, 25, 49, 169, 339, 799} {
		s.AddLike(3, int64(100+i), hoursAgo(h))
	}
	for i, h := range []int{1, 24, 168} {
		s.AddComment(3, int64(100+i), hoursAgo(h))
	}

	// User 2 reacts to user 3's first post
	s.AddLike(2, 200, hoursAgo(4))
	s.AddComment(2, 200, hoursAgo(3))
	s.AddComment(2, 200, hoursAgo(2))
}
