package businessflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/utils"
)

type fakeInsightStore struct {
	entries  map[string][]byte
	cooldown bool
}

func newFakeInsightStore() *fakeInsightStore {
	return &fakeInsightStore{entries: make(map[string][]byte)}
}

func (s *fakeInsightStore) Get(ctx context.Context, contentHash string) ([]byte, error) {
	return s.entries[contentHash], nil
}

func (s *fakeInsightStore) Put(ctx context.Context, contentHash string, payload []byte) error {
	s.entries[contentHash] = payload
	return nil
}

func (s *fakeInsightStore) InCooldown(ctx context.Context) (bool, error) {
	return s.cooldown, nil
}

func (s *fakeInsightStore) StartCooldown(ctx context.Context) error {
	s.cooldown = true
	return nil
}

type fakeCompletion struct {
	response string
	err      error
	calls    int
}

func (c *fakeCompletion) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	c.calls++
	return c.response, c.err
}

func TestGetInsights(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()

	newFlow := func(ai *fakeCompletion, store *fakeInsightStore) InsightFlow {
		fx := newFixture()
		fx.addUser(1, now.Add(-48*time.Hour))
		fx.addMessage(1, now.Add(-time.Hour), nil)
		return NewInsightFlow(fx.loader, analytics.DefaultStagePolicy(), store, ai)
	}

	t.Run("GeneratesThenServesFromCache", func(t *testing.T) {
		ai := &fakeCompletion{response: `[{"title":"Slow week","body":"Message volume dropped.","severity":"warning"}]`}
		store := newFakeInsightStore()
		flow := newFlow(ai, store)

		resp, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "generated", resp.Source)
		require.Len(t, resp.Insights, 1)
		assert.Equal(t, "Slow week", resp.Insights[0].Title)
		assert.Equal(t, "warning", resp.Insights[0].Severity)
		assert.Equal(t, 1, ai.calls)
		assert.True(t, store.cooldown)

		// Identical analytics state hits the cache even during cooldown.
		resp, err = flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "cache", resp.Source)
		assert.Equal(t, 1, ai.calls)
	})

	t.Run("ForceSkipsCacheButHonorsCooldown", func(t *testing.T) {
		ai := &fakeCompletion{response: `[{"title":"Slow week","body":"Message volume dropped.","severity":"warning"}]`}
		store := newFakeInsightStore()
		flow := newFlow(ai, store)

		_, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		require.Equal(t, 1, ai.calls)

		// Cooldown from the first generation still applies, so a forced
		// refresh falls back to the local summary instead of regenerating.
		resp, err := flow.GetInsights(ctx, &dto.InsightRequest{Force: true}, nil)
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Source)
		assert.Equal(t, 1, ai.calls)

		// Once the cooldown clears, force bypasses the cache and regenerates.
		store.cooldown = false
		resp, err = flow.GetInsights(ctx, &dto.InsightRequest{Force: true}, nil)
		require.NoError(t, err)
		assert.Equal(t, "generated", resp.Source)
		assert.Equal(t, 2, ai.calls)
	})

	t.Run("MalformedResponseDegradesToAlert", func(t *testing.T) {
		ai := &fakeCompletion{response: "Sorry, I cannot produce JSON today."}
		flow := newFlow(ai, newFakeInsightStore())

		resp, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "generated", resp.Source)
		require.Len(t, resp.Insights, 1)
		assert.Equal(t, "alert", resp.Insights[0].Severity)
		assert.Contains(t, resp.Insights[0].Body, "cannot produce JSON")
	})

	t.Run("CodeFencedResponseIsAccepted", func(t *testing.T) {
		ai := &fakeCompletion{response: "```json\n[{\"title\":\"Growth\",\"body\":\"Signups up.\",\"severity\":\"info\"}]\n```"}
		flow := newFlow(ai, newFakeInsightStore())

		resp, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		require.Len(t, resp.Insights, 1)
		assert.Equal(t, "Growth", resp.Insights[0].Title)
	})

	t.Run("UnknownSeverityNormalized", func(t *testing.T) {
		ai := &fakeCompletion{response: `[{"title":"Odd","body":"x","severity":"catastrophic"}]`}
		flow := newFlow(ai, newFakeInsightStore())

		resp, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "info", resp.Insights[0].Severity)
	})

	t.Run("CooldownServesLocalFallback", func(t *testing.T) {
		ai := &fakeCompletion{response: `[]`}
		store := newFakeInsightStore()
		store.cooldown = true
		flow := newFlow(ai, store)

		resp, err := flow.GetInsights(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "fallback", resp.Source)
		assert.Equal(t, 0, ai.calls)
		require.NotEmpty(t, resp.Insights)
	})

	t.Run("ProviderErrorSurfaces", func(t *testing.T) {
		ai := &fakeCompletion{err: errors.New("upstream timeout")}
		flow := newFlow(ai, newFakeInsightStore())

		_, err := flow.GetInsights(ctx, nil, nil)
		require.Error(t, err)
		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "INSIGHT_GENERATION_FAILED", be.Code)
	})

	t.Run("DisabledProviderRejected", func(t *testing.T) {
		flow := NewInsightFlow(newFixture().loader, analytics.DefaultStagePolicy(), newFakeInsightStore(), nil)
		_, err := flow.GetInsights(ctx, nil, nil)
		require.Error(t, err)
		assert.True(t, IsInsightsUnavailable(err))
	})
}
