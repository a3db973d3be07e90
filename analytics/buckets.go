package analytics

import (
	"fmt"
	"time"

	"github.com/lumelearn/insight-engine/utils"
)

// ActivityMode selects the bucketing granularity.
type ActivityMode string

const (
	ModeDay  ActivityMode = "day"
	ModeWeek ActivityMode = "week"
)

// ActivityEvent is one timestamped event attributed to a user. Timestamps are
// UTC as stored; bucketing shifts them to platform-local time first.
type ActivityEvent struct {
	UserID uint
	At     time.Time
}

// ActivityBucket is one fixed local-time interval with its aggregates. Buckets
// with zero events are emitted with zero counts so callers can render a
// fixed-width axis.
type ActivityBucket struct {
	Label             string
	EventCount        int
	DistinctUserCount int
}

// BucketActivity groups events into local-time buckets relative to now.
// Week mode produces the 7 local calendar days ending today, labeled by
// weekday name; day mode produces the 24 hours of local today, labeled
// "00h".."23h".
func BucketActivity(events []ActivityEvent, now time.Time, offsetHours int, mode ActivityMode) ([]ActivityBucket, error) {
	localNow := utils.ShiftToLocal(now, offsetHours)
	today := truncateToDay(localNow)

	switch mode {
	case ModeWeek:
		buckets := make([]ActivityBucket, 7)
		start := today.AddDate(0, 0, -6)
		for i := range buckets {
			buckets[i].Label = start.AddDate(0, 0, i).Weekday().String()
		}
		fill(buckets, events, offsetHours, func(local time.Time) int {
			day := truncateToDay(local)
			idx := int(day.Sub(start).Hours() / 24)
			if idx < 0 || idx > 6 {
				return -1
			}
			return idx
		})
		return buckets, nil

	case ModeDay:
		buckets := make([]ActivityBucket, 24)
		for h := range buckets {
			buckets[h].Label = fmt.Sprintf("%02dh", h)
		}
		fill(buckets, events, offsetHours, func(local time.Time) int {
			if !truncateToDay(local).Equal(today) {
				return -1
			}
			return local.Hour()
		})
		return buckets, nil

	default:
		return nil, fmt.Errorf("unknown activity mode %q", mode)
	}
}

// BucketHourZoom refines one hour of local today into four 15-minute slots.
func BucketHourZoom(events []ActivityEvent, now time.Time, offsetHours int, hour int) ([]ActivityBucket, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("zoom hour %d out of range", hour)
	}

	localNow := utils.ShiftToLocal(now, offsetHours)
	today := truncateToDay(localNow)

	buckets := make([]ActivityBucket, 4)
	for q := range buckets {
		buckets[q].Label = fmt.Sprintf("%02d:%02d", hour, q*15)
	}
	fill(buckets, events, offsetHours, func(local time.Time) int {
		if !truncateToDay(local).Equal(today) || local.Hour() != hour {
			return -1
		}
		return local.Minute() / 15
	})
	return buckets, nil
}

// fill assigns each event to a bucket index (or -1 to skip) and accumulates
// event and distinct-user counts.
func fill(buckets []ActivityBucket, events []ActivityEvent, offsetHours int, index func(time.Time) int) {
	seen := make([]map[uint]struct{}, len(buckets))
	for i := range seen {
		seen[i] = make(map[uint]struct{})
	}
	for _, ev := range events {
		local := utils.ShiftToLocal(ev.At, offsetHours)
		idx := index(local)
		if idx < 0 {
			continue
		}
		buckets[idx].EventCount++
		seen[idx][ev.UserID] = struct{}{}
	}
	for i := range buckets {
		buckets[i].DistinctUserCount = len(seen[i])
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
