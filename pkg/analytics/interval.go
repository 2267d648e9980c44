package analytics

import "time"

const (
	hourLayout  = "2006-01-02T15"
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// BucketLabel formats t into the label of the bucket containing it.
// Labels are computed in UTC and sort lexically in time order.
func BucketLabel(t time.Time, interval Interval) (string, error) {
	t = t.UTC()
	switch interval {
	case IntervalHour:
		return t.Format(hourLayout), nil
	case IntervalDay:
		return t.Format(dayLayout), nil
	case IntervalWeek:
		// Weeks start on Sunday
		return t.AddDate(0, 0, -int(t.Weekday())).Format(dayLayout), nil
	case IntervalMonth:
		return t.Format(monthLayout), nil
	default:
		return "", NewInvalidArgumentError("unknown interval")
	}
}

// ValidateInterval checks that interval is a known token
func ValidateInterval(interval Interval) error {
	_, err := BucketLabel(time.Time{}, interval)
	return err
}

// bucketize folds timestamps into sparse buckets kept in first-seen label order
func bucketize(timestamps []time.Time, interval Interval) ([]Bucket, error) {
	buckets := make([]Bucket, 0)
	index := make(map[string]int)

	for _, ts := range timestamps {
		label, err := BucketLabel(ts, interval)
		if err != nil {
			return nil, err
		}
		if i, ok := index[label]; ok {
			buckets[i].Count++
			continue
		}
		index[label] = len(buckets)
		buckets = append(buckets, Bucket{Label: label, Count: 1})
	}

	return buckets, nil
}
