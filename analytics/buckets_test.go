package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOffset = -3 // platform-local time is UTC-3

func TestBucketActivityWeek(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) // local: Aug 15, 09:00

	t.Run("AlwaysSevenBuckets", func(t *testing.T) {
		buckets, err := BucketActivity(nil, now, testOffset, ModeWeek)
		require.NoError(t, err)
		require.Len(t, buckets, 7)
		for _, b := range buckets {
			assert.Zero(t, b.EventCount)
			assert.Zero(t, b.DistinctUserCount)
			assert.NotEmpty(t, b.Label)
		}
	})

	t.Run("LastBucketIsToday", func(t *testing.T) {
		buckets, err := BucketActivity(nil, now, testOffset, ModeWeek)
		require.NoError(t, err)
		// Aug 15 2026 is a Saturday.
		assert.Equal(t, "Saturday", buckets[6].Label)
		assert.Equal(t, "Sunday", buckets[0].Label)
	})

	t.Run("CountConservation", func(t *testing.T) {
		events := []ActivityEvent{
			{UserID: 1, At: now},
			{UserID: 1, At: now.Add(-24 * time.Hour)},
			{UserID: 2, At: now.Add(-24 * time.Hour)},
			{UserID: 3, At: now.Add(-5 * 24 * time.Hour)},
		}
		buckets, err := BucketActivity(events, now, testOffset, ModeWeek)
		require.NoError(t, err)
		total := 0
		for _, b := range buckets {
			total += b.EventCount
		}
		assert.Equal(t, len(events), total)
	})

	t.Run("EventsOutsideWindowAreDropped", func(t *testing.T) {
		events := []ActivityEvent{
			{UserID: 1, At: now.AddDate(0, 0, -10)},
			{UserID: 2, At: now.AddDate(0, 0, 2)},
		}
		buckets, err := BucketActivity(events, now, testOffset, ModeWeek)
		require.NoError(t, err)
		for _, b := range buckets {
			assert.Zero(t, b.EventCount)
		}
	})

	t.Run("DistinctUsersPerDay", func(t *testing.T) {
		yesterday := now.Add(-24 * time.Hour)
		events := []ActivityEvent{
			{UserID: 1, At: yesterday},
			{UserID: 1, At: yesterday.Add(time.Minute)},
			{UserID: 2, At: yesterday.Add(2 * time.Minute)},
		}
		buckets, err := BucketActivity(events, now, testOffset, ModeWeek)
		require.NoError(t, err)
		assert.Equal(t, 3, buckets[5].EventCount)
		assert.Equal(t, 2, buckets[5].DistinctUserCount)
	})
}

func TestBucketActivityDay(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	t.Run("AlwaysTwentyFourBuckets", func(t *testing.T) {
		buckets, err := BucketActivity(nil, now, testOffset, ModeDay)
		require.NoError(t, err)
		require.Len(t, buckets, 24)
		assert.Equal(t, "00h", buckets[0].Label)
		assert.Equal(t, "23h", buckets[23].Label)
	})

	t.Run("OffsetShiftsAcrossMidnight", func(t *testing.T) {
		// 02:30 UTC on Aug 15 is 23:30 local on Aug 14: with "today" being
		// Aug 15 local, the event must not land in hour 02 of today.
		event := ActivityEvent{UserID: 1, At: time.Date(2026, 8, 15, 2, 30, 0, 0, time.UTC)}
		buckets, err := BucketActivity([]ActivityEvent{event}, now, testOffset, ModeDay)
		require.NoError(t, err)
		assert.Zero(t, buckets[2].EventCount)
		assert.Zero(t, buckets[23].EventCount) // previous local day, not today

		// Same wall-clock event evaluated when "now" is still Aug 14 local:
		// it buckets into local hour 23 of that day.
		earlier := time.Date(2026, 8, 15, 1, 0, 0, 0, time.UTC) // local Aug 14, 22:00
		buckets, err = BucketActivity([]ActivityEvent{event}, earlier, testOffset, ModeDay)
		require.NoError(t, err)
		assert.Equal(t, 1, buckets[23].EventCount)
	})

	t.Run("LocalHourAssignment", func(t *testing.T) {
		// 12:00 UTC is 09:00 local.
		event := ActivityEvent{UserID: 7, At: now}
		buckets, err := BucketActivity([]ActivityEvent{event}, now, testOffset, ModeDay)
		require.NoError(t, err)
		assert.Equal(t, 1, buckets[9].EventCount)
		assert.Equal(t, 1, buckets[9].DistinctUserCount)
	})

	t.Run("UnknownModeRejected", func(t *testing.T) {
		_, err := BucketActivity(nil, now, testOffset, ActivityMode("month"))
		assert.Error(t, err)
	})
}

func TestBucketHourZoom(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC) // local 09:00

	t.Run("FourQuarterBuckets", func(t *testing.T) {
		buckets, err := BucketHourZoom(nil, now, testOffset, 9)
		require.NoError(t, err)
		require.Len(t, buckets, 4)
		assert.Equal(t, "09:00", buckets[0].Label)
		assert.Equal(t, "09:45", buckets[3].Label)
	})

	t.Run("QuarterAssignment", func(t *testing.T) {
		events := []ActivityEvent{
			{UserID: 1, At: time.Date(2026, 8, 15, 12, 5, 0, 0, time.UTC)},  // 09:05 local
			{UserID: 2, At: time.Date(2026, 8, 15, 12, 50, 0, 0, time.UTC)}, // 09:50 local
		}
		buckets, err := BucketHourZoom(events, now, testOffset, 9)
		require.NoError(t, err)
		assert.Equal(t, 1, buckets[0].EventCount)
		assert.Equal(t, 1, buckets[3].EventCount)
	})

	t.Run("OtherHoursExcluded", func(t *testing.T) {
		events := []ActivityEvent{{UserID: 1, At: now.Add(2 * time.Hour)}}
		buckets, err := BucketHourZoom(events, now, testOffset, 9)
		require.NoError(t, err)
		for _, b := range buckets {
			assert.Zero(t, b.EventCount)
		}
	})

	t.Run("HourOutOfRange", func(t *testing.T) {
		_, err := BucketHourZoom(nil, now, testOffset, 24)
		assert.Error(t, err)
	})
}
