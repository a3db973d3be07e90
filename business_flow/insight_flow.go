package businessflow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/app/services"
	"github.com/lumelearn/insight-engine/models"
)

const insightSystemPrompt = `You are an analyst for an educational-opportunity matching platform.
Given funnel and engagement statistics, produce 2 to 4 concise observations a
non-technical operations team can act on. Respond with a JSON array only, each
element an object with "title", "body" and "severity" ("info", "warning" or
"alert") fields. No prose outside the JSON.`

// insightStats is the condensed analytics state handed to the collaborator.
// Field order is fixed so identical states hash identically.
type insightStats struct {
	TotalUsers       int            `json:"total_users"`
	StageCounts      map[string]int `json:"stage_counts"`
	EngagedUsers     int            `json:"engaged_users"`
	MessagesLastWeek int            `json:"messages_last_week"`
}

// InsightFlow defines the AI-assisted insight use case.
type InsightFlow interface {
	GetInsights(ctx context.Context, req *dto.InsightRequest, metadata *ClientMetadata) (*dto.InsightsResponse, error)
}

// InsightFlowImpl implements InsightFlow.
type InsightFlowImpl struct {
	loader *SnapshotLoader
	policy analytics.StagePolicy
	store  services.InsightStore
	ai     services.TextCompletion
}

// NewInsightFlow creates a new insight flow.
func NewInsightFlow(loader *SnapshotLoader, policy analytics.StagePolicy, store services.InsightStore, ai services.TextCompletion) InsightFlow {
	return &InsightFlowImpl{
		loader: loader,
		policy: policy,
		store:  store,
		ai:     ai,
	}
}

// GetInsights serves narrative insights for the current analytics state.
// Identical states are served from cache by content hash; a fresh generation
// arms a cooldown so bursts of dashboard refreshes cannot hammer the
// collaborator. Force skips the cache lookup but still honors the cooldown.
// A malformed collaborator response degrades to a single alert insight
// carrying the raw text instead of failing the request.
func (f *InsightFlowImpl) GetInsights(ctx context.Context, req *dto.InsightRequest, metadata *ClientMetadata) (*dto.InsightsResponse, error) {
	if req == nil {
		req = &dto.InsightRequest{}
	}
	if f.ai == nil {
		return nil, NewBusinessError("INSIGHTS_UNAVAILABLE", "insight generation is disabled", ErrInsightsUnavailable)
	}

	snap, err := f.loader.Load(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	stats := f.summarize(snap)
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, NewBusinessError("INSIGHT_STATS_FAILED", "Failed to encode analytics state", err)
	}
	sum := sha256.Sum256(statsJSON)
	contentHash := hex.EncodeToString(sum[:])

	if cached, err := f.store.Get(ctx, contentHash); !req.Force && err == nil && cached != nil {
		var insights []dto.InsightDTO
		if json.Unmarshal(cached, &insights) == nil {
			return &dto.InsightsResponse{
				Message:     "Insights retrieved from cache",
				Source:      "cache",
				Insights:    insights,
				GeneratedAt: snap.TakenAt.Format(time.RFC3339),
			}, nil
		}
	}

	if cooling, err := f.store.InCooldown(ctx); err == nil && cooling {
		return &dto.InsightsResponse{
			Message:     "Insights are cooling down, serving a local summary",
			Source:      "fallback",
			Insights:    fallbackInsights(stats),
			GeneratedAt: snap.TakenAt.Format(time.RFC3339),
		}, nil
	}

	raw, err := f.ai.Complete(ctx, insightSystemPrompt, string(statsJSON))
	if err != nil {
		return nil, NewBusinessError("INSIGHT_GENERATION_FAILED", "Failed to generate insights", err)
	}

	insights := parseInsights(raw)

	if payload, err := json.Marshal(insights); err == nil {
		_ = f.store.Put(ctx, contentHash, payload)
	}
	_ = f.store.StartCooldown(ctx)

	return &dto.InsightsResponse{
		Message:     "Insights generated",
		Source:      "generated",
		Insights:    insights,
		GeneratedAt: snap.TakenAt.Format(time.RFC3339),
	}, nil
}

func (f *InsightFlowImpl) summarize(snap *Snapshot) insightStats {
	facts := deriveFacts(snap, f.policy, snap.TakenAt)

	stats := insightStats{
		TotalUsers:  len(snap.Users),
		StageCounts: make(map[string]int, len(models.FunnelStages)),
	}
	for _, stage := range models.FunnelStages {
		stats.StageCounts[stage.String()] = 0
	}

	cutoff := snap.TakenAt.Add(-analytics.EngagementWindow)
	for _, uf := range facts {
		stats.StageCounts[uf.stage.String()]++
		if analytics.IsEngaged(uf.sessionsRecent) {
			stats.EngagedUsers++
		}
	}
	for _, m := range snap.Messages {
		if !m.CreatedAt.Before(cutoff) {
			stats.MessagesLastWeek++
		}
	}
	return stats
}

// parseInsights extracts the JSON array from the collaborator's response,
// tolerating surrounding code fences. Anything unparseable becomes a single
// alert insight so the operator still sees that generation happened.
func parseInsights(raw string) []dto.InsightDTO {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var insights []dto.InsightDTO
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil || len(insights) == 0 {
		return []dto.InsightDTO{{
			Title:    "Unstructured analysis",
			Body:     cleaned,
			Severity: "alert",
		}}
	}

	for i := range insights {
		switch insights[i].Severity {
		case "info", "warning", "alert":
		default:
			insights[i].Severity = "info"
		}
	}
	return insights
}

// fallbackInsights builds a minimal locally-computed narrative for when the
// collaborator must not be called.
func fallbackInsights(stats insightStats) []dto.InsightDTO {
	return []dto.InsightDTO{{
		Title:    "Weekly engagement summary",
		Body:     summaryLine(stats),
		Severity: "info",
	}}
}

func summaryLine(stats insightStats) string {
	b, _ := json.Marshal(stats.StageCounts)
	return fmt.Sprintf("Users: %d, engaged this week: %d, messages this week: %d, funnel: %s",
		stats.TotalUsers, stats.EngagedUsers, stats.MessagesLastWeek, string(b))
}
