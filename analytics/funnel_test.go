package analytics

import (
	"testing"

	"github.com/lumelearn/insight-engine/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	policy := DefaultStagePolicy()

	t.Run("NoSignalsIsRegistered", func(t *testing.T) {
		assert.Equal(t, models.StageRegistered, policy.Classify(StageSignals{}))
	})

	t.Run("FavoriteOutranksEverything", func(t *testing.T) {
		s := StageSignals{
			HasSavedFavorite:       true,
			HasCompletedMatch:      true,
			HasStartedMatch:        true,
			HasDefinedPreferences:  true,
			HasCompletedOnboarding: true,
			IsActivated:            true,
			HasAnyActivity:         true,
			HasRecentActivity:      true,
		}
		assert.Equal(t, models.StageFavorited, policy.Classify(s))
	})

	t.Run("MatchCompletedOutranksMatchStarted", func(t *testing.T) {
		s := StageSignals{HasCompletedMatch: true, HasStartedMatch: true}
		assert.Equal(t, models.StageMatchCompleted, policy.Classify(s))
	})

	t.Run("RecentActivityOnly", func(t *testing.T) {
		s := StageSignals{HasAnyActivity: true, HasRecentActivity: true}
		assert.Equal(t, models.StageActiveInWindow, policy.Classify(s))
	})

	t.Run("StaleActivityIsInactive", func(t *testing.T) {
		s := StageSignals{HasAnyActivity: true}
		assert.Equal(t, models.StageInactiveInWindow, policy.Classify(s))
	})

	t.Run("LowerSignalsNeverChangeResult", func(t *testing.T) {
		// With a high-precedence signal held true, flipping every combination
		// of lower-precedence signals must not change the outcome.
		for mask := 0; mask < 1<<6; mask++ {
			s := StageSignals{
				HasCompletedMatch:      true,
				HasStartedMatch:        mask&1 != 0,
				HasDefinedPreferences:  mask&2 != 0,
				HasCompletedOnboarding: mask&4 != 0,
				IsActivated:            mask&8 != 0,
				HasAnyActivity:         mask&16 != 0,
				HasRecentActivity:      mask&32 != 0,
			}
			assert.Equal(t, models.StageMatchCompleted, policy.Classify(s))
		}
	})

	t.Run("EveryRuleYieldsValidStage", func(t *testing.T) {
		signals := []StageSignals{
			{HasSavedFavorite: true},
			{HasCompletedMatch: true},
			{HasStartedMatch: true},
			{HasDefinedPreferences: true},
			{HasCompletedOnboarding: true},
			{IsActivated: true},
			{HasAnyActivity: true},
			{HasRecentActivity: true, HasAnyActivity: true},
			{},
		}
		for _, s := range signals {
			assert.True(t, policy.Classify(s).IsValid())
		}
	})
}
