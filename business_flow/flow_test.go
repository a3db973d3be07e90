package businessflow

import (
	"bytes"
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/models"
	"github.com/lumelearn/insight-engine/utils"
)

// In-memory repositories backing the flow tests.

type fakeUserRepo struct {
	users []*models.User
}

func (r *fakeUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range r.users {
		if u.UUID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	return r.ListCreatedBetween(ctx, nil, nil)
}

func (r *fakeUserRepo) ListCreatedBetween(ctx context.Context, start, end *time.Time) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		if start != nil && u.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && u.CreatedAt.After(*end) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []*models.Message
}

func (r *fakeMessageRepo) sorted() []*models.Message {
	out := make([]*models.Message, len(r.messages))
	copy(out, r.messages)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *fakeMessageRepo) ListAllBetween(ctx context.Context, start, end *time.Time) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.sorted() {
		if start != nil && m.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && m.CreatedAt.After(*end) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMessageRepo) ListByUserIDs(ctx context.Context, userIDs []uint) ([]*models.Message, []uint, error) {
	wanted := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	var out []*models.Message
	for _, m := range r.sorted() {
		if _, ok := wanted[m.UserID]; ok {
			out = append(out, m)
		}
	}
	return out, nil, nil
}

func (r *fakeMessageRepo) PageByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, bool, error) {
	var all []*models.Message
	for _, m := range r.sorted() {
		if m.UserID == userID {
			all = append(all, m)
		}
	}
	if offset >= len(all) {
		return nil, false, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], end < len(all), nil
}

func (r *fakeMessageRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeFavoriteRepo struct {
	favorites []*models.Favorite
}

func (r *fakeFavoriteRepo) ListAll(ctx context.Context) ([]*models.Favorite, error) {
	return r.favorites, nil
}

func (r *fakeFavoriteRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Favorite, error) {
	var out []*models.Favorite
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakePreferenceRepo struct {
	preferences []*models.Preference
}

func (r *fakePreferenceRepo) ListAll(ctx context.Context) ([]*models.Preference, error) {
	return r.preferences, nil
}

func (r *fakePreferenceRepo) ByUserID(ctx context.Context, userID uint) (*models.Preference, error) {
	for _, p := range r.preferences {
		if p.UserID == userID {
			return p, nil
		}
	}
	return nil, nil
}

type fixture struct {
	users  *fakeUserRepo
	msgs   *fakeMessageRepo
	favs   *fakeFavoriteRepo
	prefs  *fakePreferenceRepo
	loader *SnapshotLoader
}

func newFixture() *fixture {
	f := &fixture{
		users: &fakeUserRepo{},
		msgs:  &fakeMessageRepo{},
		favs:  &fakeFavoriteRepo{},
		prefs: &fakePreferenceRepo{},
	}
	f.loader = NewSnapshotLoader(f.users, f.msgs, f.favs, f.prefs)
	return f
}

func (f *fixture) addUser(id uint, createdAt time.Time) *models.User {
	u := &models.User{ID: id, UUID: uuid.New(), CreatedAt: createdAt}
	f.users.users = append(f.users.users, u)
	return u
}

func (f *fixture) addMessage(userID uint, at time.Time, tag *string) {
	f.msgs.messages = append(f.msgs.messages, &models.Message{
		ID:          int64(len(f.msgs.messages) + 1),
		UserID:      userID,
		Body:        "hello",
		WorkflowTag: tag,
		CreatedAt:   at,
	})
}

func TestGetFunnel(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()

	// Registered only.
	fx.addUser(1, now.Add(-48*time.Hour))
	// One recent message.
	fx.addUser(2, now.Add(-48*time.Hour))
	fx.addMessage(2, now.Add(-time.Hour), nil)
	// Completed the matching questionnaire.
	fx.addUser(3, now.Add(-48*time.Hour))
	fx.prefs.preferences = append(fx.prefs.preferences, &models.Preference{ID: 1, UserID: 3, Completed: true})
	// Saved a favorite, which outranks everything else.
	fx.addUser(4, now.Add(-48*time.Hour))
	fx.prefs.preferences = append(fx.prefs.preferences, &models.Preference{ID: 2, UserID: 4, Completed: true})
	fx.favs.favorites = append(fx.favs.favorites, &models.Favorite{ID: 1, UserID: 4, OpportunityID: "opp-1"})

	flow := NewFunnelFlow(fx.loader, analytics.DefaultStagePolicy())
	resp, err := flow.GetFunnel(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalUsers)
	require.Len(t, resp.Stages, len(models.FunnelStages))

	counts := make(map[string]int)
	sum := 0
	for i, s := range resp.Stages {
		assert.Equal(t, models.FunnelStages[i].String(), s.Stage)
		counts[s.Stage] = s.UserCount
		sum += s.UserCount
	}
	// Every user lands in exactly one stage.
	assert.Equal(t, resp.TotalUsers, sum)
	assert.Equal(t, 1, counts[models.StageRegistered.String()])
	assert.Equal(t, 1, counts[models.StageActiveInWindow.String()])
	assert.Equal(t, 1, counts[models.StageMatchCompleted.String()])
	assert.Equal(t, 1, counts[models.StageFavorited.String()])
}

func TestGetFunnelRangeFiltersUsers(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	fx.addUser(1, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	fx.addUser(2, time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))

	flow := NewFunnelFlow(fx.loader, analytics.DefaultStagePolicy())
	resp, err := flow.GetFunnel(ctx, &dto.FunnelRequest{
		AnalyticsRangeRequest: dto.AnalyticsRangeRequest{
			StartDate: utils.ToPtr("2026-05-01"),
			EndDate:   utils.ToPtr("2026-06-30"),
		},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalUsers)
}

func TestGetFunnelRejectsInvertedRange(t *testing.T) {
	fx := newFixture()
	flow := NewFunnelFlow(fx.loader, analytics.DefaultStagePolicy())

	_, err := flow.GetFunnel(context.Background(), &dto.FunnelRequest{
		AnalyticsRangeRequest: dto.AnalyticsRangeRequest{
			StartDate: utils.ToPtr("2026-06-30"),
			EndDate:   utils.ToPtr("2026-05-01"),
		},
	}, nil)
	require.Error(t, err)
	assert.True(t, IsStartDateAfterEndDate(err))
}

func TestGetFunnelIncludeDetails(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()
	u1 := fx.addUser(1, now.Add(-48*time.Hour))
	u2 := fx.addUser(2, now.Add(-48*time.Hour))

	flow := NewFunnelFlow(fx.loader, analytics.DefaultStagePolicy())

	resp, err := flow.GetFunnel(ctx, &dto.FunnelRequest{IncludeDetails: true}, nil)
	require.NoError(t, err)

	var registered *dto.FunnelStageCount
	for i := range resp.Stages {
		if resp.Stages[i].Stage == models.StageRegistered.String() {
			registered = &resp.Stages[i]
		}
	}
	require.NotNil(t, registered)
	assert.ElementsMatch(t, []string{u1.UUID.String(), u2.UUID.String()}, registered.UserIDs)

	// Without the flag no ids leak into the response.
	resp, err = flow.GetFunnel(ctx, nil, nil)
	require.NoError(t, err)
	for _, s := range resp.Stages {
		assert.Empty(t, s.UserIDs)
	}
}

func TestExportFunnel(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()
	fx.addUser(1, now.Add(-48*time.Hour))

	flow := NewFunnelFlow(fx.loader, analytics.DefaultStagePolicy())

	filename, contentType, content, err := flow.ExportFunnel(ctx, &dto.AnalyticsRangeRequest{}, nil)
	require.NoError(t, err)
	assert.Contains(t, filename, "funnel_report_")
	assert.Equal(t, "text/csv; charset=utf-8", contentType)
	assert.True(t, bytes.HasPrefix(content, utils.UTF8BOM))
	assert.Contains(t, string(content), `"funnel_stage","description","user_count"`)
	assert.Contains(t, string(content), `"`+models.StageRegistered.String()+`","`)
}

func TestGetActivity(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()
	fx.addUser(1, utils.UTCNow().Add(-72*time.Hour))
	fx.addMessage(1, utils.UTCNow(), nil)

	flow := NewActivityFlow(fx.msgs, -3)

	t.Run("WeekModeHasSevenBuckets", func(t *testing.T) {
		resp, err := flow.GetActivity(ctx, &dto.ActivityRequest{Mode: "week"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "week", resp.Mode)
		assert.Equal(t, -3, resp.UTCOffsetHours)
		require.Len(t, resp.Buckets, 7)

		total := 0
		for _, b := range resp.Buckets {
			total += b.MessageCount
		}
		assert.Equal(t, 1, total)
	})

	t.Run("DayModeHasTwentyFourBuckets", func(t *testing.T) {
		resp, err := flow.GetActivity(ctx, &dto.ActivityRequest{Mode: "day"}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Buckets, 24)
		assert.Equal(t, "00h", resp.Buckets[0].Label)
		assert.Equal(t, "23h", resp.Buckets[23].Label)
	})

	t.Run("ZoomHasFourBuckets", func(t *testing.T) {
		resp, err := flow.GetActivity(ctx, &dto.ActivityRequest{Zoom: utils.ToPtr(14)}, nil)
		require.NoError(t, err)
		assert.Equal(t, "zoom", resp.Mode)
		require.Len(t, resp.Buckets, 4)
		assert.Equal(t, "14:00", resp.Buckets[0].Label)
		assert.Equal(t, "14:45", resp.Buckets[3].Label)
	})

	t.Run("UnknownModeRejected", func(t *testing.T) {
		_, err := flow.GetActivity(ctx, &dto.ActivityRequest{Mode: "month"}, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidActivityMode(err))
	})

	t.Run("ZoomHourOutOfRangeRejected", func(t *testing.T) {
		_, err := flow.GetActivity(ctx, &dto.ActivityRequest{Zoom: utils.ToPtr(24)}, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidZoomHour(err))
	})
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()
	fx.addUser(1, now.Add(-3*time.Hour))
	fx.addUser(2, now.Add(-2*time.Hour))
	fx.addUser(3, now.Add(-1*time.Hour))

	flow := NewConversationFlow(fx.loader, fx.users, fx.msgs, fx.favs, fx.prefs, analytics.DefaultStagePolicy())

	resp, err := flow.ListUsers(ctx, &dto.UserListRequest{Page: 1, PageSize: 2}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Users, 2)
	assert.Equal(t, 3, resp.Pagination.TotalItems)
	assert.True(t, resp.Pagination.HasMore)
	// Newest registration first.
	assert.Equal(t, fx.users.users[2].UUID.String(), resp.Users[0].UUID)
	assert.Equal(t, utils.AnonymousDisplayName, resp.Users[0].DisplayName)

	resp, err = flow.ListUsers(ctx, &dto.UserListRequest{Page: 2, PageSize: 2}, nil)
	require.NoError(t, err)
	require.Len(t, resp.Users, 1)
	assert.False(t, resp.Pagination.HasMore)

	_, err = flow.ListUsers(ctx, &dto.UserListRequest{Page: -1}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidPage(err))
}

func TestGetConversation(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()
	user := fx.addUser(1, now.Add(-24*time.Hour))
	for i := 0; i < 5; i++ {
		fx.addMessage(1, now.Add(time.Duration(i-6)*time.Hour), nil)
	}

	flow := NewConversationFlow(fx.loader, fx.users, fx.msgs, fx.favs, fx.prefs, analytics.DefaultStagePolicy())

	t.Run("PagesOldestFirst", func(t *testing.T) {
		resp, err := flow.GetConversation(ctx, user.UUID.String(), &dto.ConversationRequest{Page: 1, PageSize: 3}, nil)
		require.NoError(t, err)
		require.Len(t, resp.Messages, 3)
		assert.True(t, resp.Pagination.HasMore)
		assert.Equal(t, 5, resp.Pagination.TotalItems)
		assert.Equal(t, int64(1), resp.Messages[0].ID)
		assert.Equal(t, user.UUID.String(), resp.User.UUID)
		assert.Equal(t, 5, resp.User.MessageCount)
	})

	t.Run("UnknownUserRejected", func(t *testing.T) {
		_, err := flow.GetConversation(ctx, uuid.NewString(), nil, nil)
		require.Error(t, err)
		assert.True(t, IsUserNotFound(err))
	})

	t.Run("MalformedUUIDRejected", func(t *testing.T) {
		_, err := flow.GetConversation(ctx, "not-a-uuid", nil, nil)
		require.Error(t, err)
		assert.True(t, IsInvalidUserID(err))
	})
}

func TestSegments(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()

	// Two sessions this week in the focus region.
	u1 := fx.addUser(1, now.Add(-10*24*time.Hour))
	u1.City = utils.ToPtr("Fortaleza")
	fx.addMessage(1, now.Add(-2*time.Hour), nil)
	fx.addMessage(1, now.Add(-30*time.Hour), nil)
	// Two sessions this week, elsewhere.
	u2 := fx.addUser(2, now.Add(-10*24*time.Hour))
	u2.City = utils.ToPtr("Lisbon")
	fx.addMessage(2, now.Add(-2*time.Hour), nil)
	fx.addMessage(2, now.Add(-30*time.Hour), nil)
	// Quiet this week but inside the focus region.
	u3 := fx.addUser(3, now.Add(-10*24*time.Hour))
	u3.City = utils.ToPtr("fortaleza")
	// Neither engaged nor in the focus region: excluded.
	fx.addUser(4, now.Add(-10*24*time.Hour))

	focus := analytics.NewFocusRegions([]string{"Fortaleza"})
	flow := NewSegmentFlow(fx.loader, analytics.DefaultStagePolicy(), focus)

	resp, err := flow.GetSegments(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalProspects)
	require.Len(t, resp.Segments, 3)

	byName := make(map[string]dto.SegmentGroupDTO)
	seen := make(map[uint]int)
	for _, g := range resp.Segments {
		byName[g.Name] = g
		for _, c := range g.Contacts {
			seen[c.UserID]++
		}
	}
	assert.Equal(t, 1, byName[models.SegmentEngagedFocusRegion.String()].Count)
	assert.Equal(t, 1, byName[models.SegmentEngagedOther.String()].Count)
	assert.Equal(t, 1, byName[models.SegmentDormantFocusRegion.String()].Count)
	// Buckets are pairwise disjoint.
	for id, n := range seen {
		assert.Equalf(t, 1, n, "user %d appears in %d segments", id, n)
	}
}

func TestExportSegments(t *testing.T) {
	ctx := context.Background()
	now := utils.UTCNow()
	fx := newFixture()
	u := fx.addUser(1, now.Add(-10*24*time.Hour))
	u.City = utils.ToPtr("Fortaleza")
	u.DisplayName = utils.ToPtr(`Maria "Mia" Souza`)

	focus := analytics.NewFocusRegions([]string{"Fortaleza"})
	flow := NewSegmentFlow(fx.loader, analytics.DefaultStagePolicy(), focus)

	t.Run("CSV", func(t *testing.T) {
		filename, contentType, content, err := flow.ExportSegments(ctx, nil, "csv", nil)
		require.NoError(t, err)
		assert.Contains(t, filename, ".csv")
		assert.Contains(t, contentType, "text/csv")
		assert.True(t, bytes.HasPrefix(content, utils.UTF8BOM))
		assert.Contains(t, string(content), `"Maria ""Mia"" Souza"`)
	})

	t.Run("Excel", func(t *testing.T) {
		filename, contentType, content, err := flow.ExportSegments(ctx, nil, "xlsx", nil)
		require.NoError(t, err)
		assert.Contains(t, filename, ".xlsx")
		assert.Contains(t, contentType, "spreadsheetml")
		assert.NotEmpty(t, content)
	})

	t.Run("UnknownFormatRejected", func(t *testing.T) {
		_, _, _, err := flow.ExportSegments(ctx, nil, "pdf", nil)
		require.Error(t, err)
		assert.True(t, IsInvalidExportFormat(err))
	})
}
