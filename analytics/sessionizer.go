// Package analytics implements the derived-metric engine: sessionization,
// funnel classification, time bucketing and CRM segmentation. Everything in
// this package is a pure function over in-memory snapshots; data access stays
// in the repository layer.
package analytics

import (
	"sort"
	"time"
)

const (
	// SessionGap is the inactivity threshold that closes a session. A gap of
	// exactly SessionGap keeps the session open; only a strictly larger gap
	// starts a new one.
	SessionGap = 30 * time.Minute

	// EngagedMinSessions is the session count at which a user counts as
	// engaged ("power user"). The comparison is >=, shared by the funnel and
	// the CRM tiers so the two never disagree.
	EngagedMinSessions = 2

	// EngagementWindow is the trailing window over which engagement is
	// evaluated.
	EngagementWindow = 7 * 24 * time.Hour
)

// CountSessions derives the number of sessions from a user's raw event
// timestamps. Input order does not matter. A session is a maximal run of
// events where no consecutive gap exceeds SessionGap.
func CountSessions(timestamps []time.Time) int {
	if len(timestamps) == 0 {
		return 0
	}

	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	count := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Sub(sorted[i-1]) > SessionGap {
			count++
		}
	}
	return count
}

// CountSessionsSince counts sessions formed by events at or after cutoff.
func CountSessionsSince(timestamps []time.Time, cutoff time.Time) int {
	recent := make([]time.Time, 0, len(timestamps))
	for _, t := range timestamps {
		if !t.Before(cutoff) {
			recent = append(recent, t)
		}
	}
	return CountSessions(recent)
}

// IsEngaged reports whether a session count qualifies as engaged.
func IsEngaged(sessionCount int) bool {
	return sessionCount >= EngagedMinSessions
}
