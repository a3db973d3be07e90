package models

// FunnelStage is the single life-cycle label assigned to a user. The type is
// closed: only the constants below are valid values, and every exported
// consumer goes through FunnelStages or StageDescription rather than raw
// strings, so a misspelled label cannot reach a response payload.
type FunnelStage string

const (
	StageRegistered         FunnelStage = "Registered"
	StageActiveInWindow     FunnelStage = "Active in window"
	StageInactiveInWindow   FunnelStage = "Inactive in window"
	StageActivated          FunnelStage = "Activated"
	StageOnboarded          FunnelStage = "Onboarded"
	StagePreferencesDefined FunnelStage = "Preferences defined"
	StageMatchStarted       FunnelStage = "Match started"
	StageMatchCompleted     FunnelStage = "Match completed"
	StageFavorited          FunnelStage = "Saved favorite"
)

// FunnelStages is the canonical response order, least advanced first. The
// funnel endpoint renders exactly this sequence, including empty stages.
var FunnelStages = []FunnelStage{
	StageRegistered,
	StageActiveInWindow,
	StageInactiveInWindow,
	StageActivated,
	StageOnboarded,
	StagePreferencesDefined,
	StageMatchStarted,
	StageMatchCompleted,
	StageFavorited,
}

var stageDescriptions = map[FunnelStage]string{
	StageRegistered:         "Created an account but has not interacted yet",
	StageActiveInWindow:     "Sent at least one message within the trailing window",
	StageInactiveInWindow:   "Has sent messages before but none within the trailing window",
	StageActivated:          "Returned for at least a second session",
	StageOnboarded:          "Finished the guided onboarding conversation",
	StagePreferencesDefined: "Saved a structured preference profile",
	StageMatchStarted:       "Started the opportunity matching workflow",
	StageMatchCompleted:     "Completed the opportunity matching workflow",
	StageFavorited:          "Saved at least one opportunity as a favorite",
}

func (s FunnelStage) String() string {
	return string(s)
}

// Description returns the human-readable explanation rendered next to the
// stage label in the funnel report.
func (s FunnelStage) Description() string {
	return stageDescriptions[s]
}

// IsValid reports whether s is one of the closed set of stage labels.
func (s FunnelStage) IsValid() bool {
	_, ok := stageDescriptions[s]
	return ok
}
