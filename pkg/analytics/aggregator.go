package analytics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/platinummonkey/tally/pkg/analytics")

// QueryObserver is notified after every record store read
type QueryObserver func(activity ActivityType, duration time.Duration, err error)

// AggregatorConfig tunes store access
type AggregatorConfig struct {
	// QueryTimeout bounds each record store read. Zero means only the caller deadline applies.
	QueryTimeout time.Duration

	// MaxParallel limits concurrent store reads per report. Zero means one per activity type.
	MaxParallel int

	Observer QueryObserver
}

// Aggregator builds per activity type bucket sequences from record store reads
type Aggregator struct {
	store  RecordStore
	config AggregatorConfig
}

// NewAggregator creates a new aggregator over store
func NewAggregator(store RecordStore, config AggregatorConfig) *Aggregator {
	return &Aggregator{store: store, config: config}
}

// Aggregate counts the activity of one subject in [start, end] for each type.
// Types that do not apply to the subject kind are dropped. Either every type
// succeeds or the first error is returned and the remaining reads are cancelled.
func (a *Aggregator) Aggregate(ctx context.Context, subjectID int64, kind SubjectKind, types []ActivityType, start, end time.Time, interval Interval) (Statistics, error) {
	if err := ValidateInterval(interval); err != nil {
		return nil, err
	}

	types = applicableTypes(kind, types)

	ctx, span := tracer.Start(ctx, "Aggregator.Aggregate",
		trace.WithAttributes(
			attribute.String("subject.kind", string(kind)),
			attribute.Int64("subject.id", subjectID),
			attribute.String("interval", string(interval)),
			attribute.Int("activity.types", len(types)),
		),
	)
	defer span.End()

	eg, ctx := errgroup.WithContext(ctx)
	if a.config.MaxParallel > 0 {
		eg.SetLimit(a.config.MaxParallel)
	}

	// Each goroutine writes only its own slot
	results := make([][]Bucket, len(types))
	for i, activity := range types {
		filter := newFilter(activity, kind, subjectID, start, end)
		eg.Go(func() error {
			timestamps, err := a.fetch(ctx, filter)
			if err != nil {
				return err
			}
			buckets, err := bucketize(timestamps, interval)
			if err != nil {
				return err
			}
			results[i] = buckets
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "aggregation failed")
		return nil, err
	}

	stats := make(Statistics, len(types))
	for i, activity := range types {
		stats[activity] = results[i]
	}
	span.SetStatus(codes.Ok, "aggregated")
	return stats, nil
}

func (a *Aggregator) fetch(ctx context.Context, filter Filter) ([]time.Time, error) {
	if a.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.QueryTimeout)
		defer cancel()
	}

	started := time.Now()
	timestamps, err := a.store.FindTimestamps(ctx, filter)
	if err == nil && ctx.Err() == context.DeadlineExceeded {
		err = ctx.Err()
	}
	if a.config.Observer != nil {
		a.config.Observer(filter.Type, time.Since(started), err)
	}
	if err != nil {
		return nil, classifyStoreError(ctx, "find "+string(filter.Type)+" timestamps", err)
	}
	return timestamps, nil
}

func newFilter(activity ActivityType, kind SubjectKind, subjectID int64, start, end time.Time) Filter {
	id := subjectID
	filter := Filter{Type: activity, Start: start, End: end}
	if kind == SubjectPost {
		filter.PostID = &id
	} else {
		filter.UserID = &id
	}
	return filter
}

// applicableTypes drops unknown, duplicate and kind-incompatible types
func applicableTypes(kind SubjectKind, types []ActivityType) []ActivityType {
	seen := make(map[ActivityType]bool, len(types))
	out := make([]ActivityType, 0, len(types))
	for _, t := range types {
		if seen[t] || !kind.supports(t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
