package dto

// InsightRequest optionally forces regeneration past the content-hash cache.
// The regeneration cooldown still applies.
type InsightRequest struct {
	Force bool `json:"force,omitempty"`
}

// InsightDTO is one narrative observation over the current analytics state.
type InsightDTO struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Severity string `json:"severity"`
}

// InsightsResponse reports generated or cached insights. Source is "cache"
// when the insights were served from a previous generation of identical data.
type InsightsResponse struct {
	Message     string       `json:"message"`
	Source      string       `json:"source"`
	Insights    []InsightDTO `json:"insights"`
	GeneratedAt string       `json:"generated_at"`
}
