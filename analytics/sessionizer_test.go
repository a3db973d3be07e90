package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(h, m int) time.Time {
	return time.Date(2026, 8, 10, h, m, 0, 0, time.UTC)
}

func TestCountSessions(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, CountSessions(nil))
	})

	t.Run("SingleEvent", func(t *testing.T) {
		assert.Equal(t, 1, CountSessions([]time.Time{ts(10, 0)}))
	})

	t.Run("AllWithinGapIsOneSession", func(t *testing.T) {
		events := []time.Time{ts(10, 0), ts(10, 20), ts(10, 45), ts(11, 10)}
		assert.Equal(t, 1, CountSessions(events))
	})

	t.Run("GapBeyondThresholdSplits", func(t *testing.T) {
		// 10:10 -> 10:50 is a 40 minute gap, beyond the 30 minute threshold.
		events := []time.Time{ts(10, 0), ts(10, 10), ts(10, 50)}
		assert.Equal(t, 2, CountSessions(events))
	})

	t.Run("ExactGapDoesNotSplit", func(t *testing.T) {
		events := []time.Time{ts(10, 0), ts(10, 30)}
		assert.Equal(t, 1, CountSessions(events))
	})

	t.Run("PairwiseSpacedEventsEachOwnSession", func(t *testing.T) {
		events := []time.Time{ts(8, 0), ts(9, 0), ts(10, 0), ts(11, 0)}
		assert.Equal(t, len(events), CountSessions(events))
	})

	t.Run("UnsortedInput", func(t *testing.T) {
		events := []time.Time{ts(10, 50), ts(10, 0), ts(10, 10)}
		assert.Equal(t, 2, CountSessions(events))
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		events := []time.Time{ts(11, 0), ts(9, 0)}
		CountSessions(events)
		assert.Equal(t, ts(11, 0), events[0])
	})
}

func TestCountSessionsSince(t *testing.T) {
	events := []time.Time{ts(8, 0), ts(10, 0), ts(11, 0)}

	t.Run("CutoffFiltersOldEvents", func(t *testing.T) {
		assert.Equal(t, 2, CountSessionsSince(events, ts(9, 0)))
	})

	t.Run("CutoffIsInclusive", func(t *testing.T) {
		assert.Equal(t, 3, CountSessionsSince(events, ts(8, 0)))
	})

	t.Run("NothingInWindow", func(t *testing.T) {
		assert.Equal(t, 0, CountSessionsSince(events, ts(12, 0)))
	})
}

func TestIsEngaged(t *testing.T) {
	assert.False(t, IsEngaged(0))
	assert.False(t, IsEngaged(1))
	assert.True(t, IsEngaged(2))
	assert.True(t, IsEngaged(5))
}
