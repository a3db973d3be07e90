package analytics

import (
	"github.com/lumelearn/insight-engine/models"
)

// StageSignals is the full set of boolean life-cycle signals computed for one
// user. Callers fill it from the raw snapshot; the policy decides which signal
// wins.
type StageSignals struct {
	HasSavedFavorite       bool
	HasCompletedMatch      bool
	HasStartedMatch        bool
	HasDefinedPreferences  bool
	HasCompletedOnboarding bool
	IsActivated            bool
	HasAnyActivity         bool
	HasRecentActivity      bool
}

type stageRule struct {
	stage models.FunnelStage
	match func(StageSignals) bool
}

// StagePolicy is the ordered precedence list mapping signals to a single
// stage. There is exactly one policy in the system; every caller (funnel
// report, user list, CRM export) is handed the same instance so the tiering
// can never drift between endpoints.
type StagePolicy struct {
	rules []stageRule
}

// DefaultStagePolicy returns the canonical precedence, most advanced first.
// A user holding both a favorite and a merely started match is always
// attributed to the favorite.
func DefaultStagePolicy() StagePolicy {
	return StagePolicy{rules: []stageRule{
		{models.StageFavorited, func(s StageSignals) bool { return s.HasSavedFavorite }},
		{models.StageMatchCompleted, func(s StageSignals) bool { return s.HasCompletedMatch }},
		{models.StageMatchStarted, func(s StageSignals) bool { return s.HasStartedMatch }},
		{models.StagePreferencesDefined, func(s StageSignals) bool { return s.HasDefinedPreferences }},
		{models.StageOnboarded, func(s StageSignals) bool { return s.HasCompletedOnboarding }},
		{models.StageActivated, func(s StageSignals) bool { return s.IsActivated }},
		{models.StageInactiveInWindow, func(s StageSignals) bool { return s.HasAnyActivity && !s.HasRecentActivity }},
		{models.StageActiveInWindow, func(s StageSignals) bool { return s.HasRecentActivity }},
	}}
}

// Classify returns the stage of the first true signal in precedence order,
// falling back to Registered when nothing matched.
func (p StagePolicy) Classify(s StageSignals) models.FunnelStage {
	for _, r := range p.rules {
		if r.match(s) {
			return r.stage
		}
	}
	return models.StageRegistered
}
