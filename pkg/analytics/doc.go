// Package analytics computes activity statistics for users and posts.
//
// # Overview
//
// A report counts how many posts, likes or comments happened for a subject in
// a lookback window, grouped into fixed-size time buckets. The package owns no
// event storage; raw timestamps are read on demand through a RecordStore.
//
// # Pipeline
//
//	Service -> ResolvePeriod -> UserScope / PostScope -> Aggregator
//	        -> RecordStore.FindTimestamps (one query per activity type)
//	        -> BucketLabel fold -> ActivityReport
//
// # Periods and Intervals
//
// Periods select the window size:
//   - day: now minus 24 hours
//   - week: now minus 7 days
//   - month: now minus one calendar month
//   - half-year: now minus six calendar months
//
// Calendar month subtraction keeps the day of month and clamps it to the last
// day of the target month, so 2024-08-31 minus six months is 2024-02-29.
//
// Intervals select the bucket size. All labels are computed in UTC:
//   - hour: 2024-01-01T10
//   - day: 2024-01-01
//   - week: date of the Sunday that starts the week
//   - month: 2024-01
//
// # Buckets
//
// Buckets are sparse and appear in the order their label was first seen while
// scanning timestamps in store order:
//
//	report.Statistics[analytics.ActivityLikes]
//	// [{Label: "2024-01-01", Count: 2}, {Label: "2024-01-02", Count: 1}]
//
// # Access Control
//
// Regular callers may only read their own user statistics, or statistics of
// posts they own. Admins may read any subject. Violations fail with
// ErrAccessDenied from both entry points.
//
// # Errors
//
// Every failure aborts the whole report. Use KindOf or the Is* helpers to map
// errors to transport status codes:
//
//	switch analytics.KindOf(err) {
//	case analytics.KindInvalidArgument: // 400
//	case analytics.KindAccessDenied:    // 403
//	case analytics.KindNotFound:        // 404
//	case analytics.KindTimeout:         // 504
//	default:                            // 500
//	}
//
// # Related Packages
//
//   - pkg/storage: RecordStore implementations (memory, postgres)
//   - pkg/reports: renders and exports reports
//   - pkg/api: HTTP endpoints
package analytics
