// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/models"
	"github.com/lumelearn/insight-engine/repository"
	"github.com/lumelearn/insight-engine/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for request logging.
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// Snapshot is one in-memory copy of the analytics source tables, taken at a
// single point in time. Every derived metric in a report is computed from the
// same snapshot so the numbers in one response are mutually consistent.
type Snapshot struct {
	Users       []*models.User
	Messages    []*models.Message
	Favorites   []*models.Favorite
	Preferences []*models.Preference

	// LostUserIDs are users whose message rows could not be recovered even
	// after batch splitting. Their messages are absent from the snapshot.
	LostUserIDs []uint

	TakenAt time.Time
}

// SnapshotLoader drains the source tables into snapshots.
type SnapshotLoader struct {
	userRepo       repository.UserRepository
	messageRepo    repository.MessageRepository
	favoriteRepo   repository.FavoriteRepository
	preferenceRepo repository.PreferenceRepository
}

// NewSnapshotLoader creates a new snapshot loader.
func NewSnapshotLoader(
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	favoriteRepo repository.FavoriteRepository,
	preferenceRepo repository.PreferenceRepository,
) *SnapshotLoader {
	return &SnapshotLoader{
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		favoriteRepo:   favoriteRepo,
		preferenceRepo: preferenceRepo,
	}
}

// Load fetches a snapshot, optionally restricted to users registered inside
// the inclusive range. Users are loaded first; the remaining tables are then
// drained concurrently. With a range present, messages are fetched per user id
// so the restriction applies to every derived metric.
func (l *SnapshotLoader) Load(ctx context.Context, start, end *time.Time) (*Snapshot, error) {
	users, err := l.userRepo.ListCreatedBetween(ctx, start, end)
	if err != nil {
		return nil, NewBusinessError("SNAPSHOT_LOAD_FAILED", "Failed to load users", err)
	}

	snap := &Snapshot{
		Users:   users,
		TakenAt: utils.UTCNow(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if start == nil && end == nil {
			messages, err := l.messageRepo.ListAllBetween(gctx, nil, nil)
			if err != nil {
				return NewBusinessError("SNAPSHOT_LOAD_FAILED", "Failed to load messages", err)
			}
			snap.Messages = messages
			return nil
		}

		ids := make([]uint, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		messages, lost, err := l.messageRepo.ListByUserIDs(gctx, ids)
		if err != nil {
			return NewBusinessError("SNAPSHOT_LOAD_FAILED", "Failed to load messages", err)
		}
		snap.Messages = messages
		snap.LostUserIDs = lost
		return nil
	})

	g.Go(func() error {
		favorites, err := l.favoriteRepo.ListAll(gctx)
		if err != nil {
			return NewBusinessError("SNAPSHOT_LOAD_FAILED", "Failed to load favorites", err)
		}
		snap.Favorites = favorites
		return nil
	})

	g.Go(func() error {
		preferences, err := l.preferenceRepo.ListAll(gctx)
		if err != nil {
			return NewBusinessError("SNAPSHOT_LOAD_FAILED", "Failed to load preferences", err)
		}
		snap.Preferences = preferences
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// userFacts is the per-user working set every report shares: raw message
// timestamps, the derived life-cycle signals, session counts over both
// horizons, and the classified stage.
type userFacts struct {
	user           *models.User
	preference     *models.Preference
	messageTimes   []time.Time
	messageCount   int
	sessionsAll    int
	sessionsRecent int
	stage          models.FunnelStage
}

// deriveFacts computes the shared per-user facts from a snapshot. The same
// derivation backs the funnel report, the user directory and the CRM
// segmentation, so a user's stage can never differ between endpoints.
func deriveFacts(snap *Snapshot, policy analytics.StagePolicy, now time.Time) map[uint]*userFacts {
	timesByUser := make(map[uint][]time.Time, len(snap.Users))
	onboardedByUser := make(map[uint]bool)
	matchStartedByUser := make(map[uint]bool)
	for _, m := range snap.Messages {
		timesByUser[m.UserID] = append(timesByUser[m.UserID], m.CreatedAt)
		if m.WorkflowTag != nil {
			switch *m.WorkflowTag {
			case models.WorkflowOnboarding:
				onboardedByUser[m.UserID] = true
			case models.WorkflowMatch:
				matchStartedByUser[m.UserID] = true
			}
		}
	}

	favoritedByUser := make(map[uint]bool)
	for _, f := range snap.Favorites {
		favoritedByUser[f.UserID] = true
	}

	prefByUser := make(map[uint]*models.Preference, len(snap.Preferences))
	for _, p := range snap.Preferences {
		prefByUser[p.UserID] = p
	}

	cutoff := now.Add(-analytics.EngagementWindow)

	facts := make(map[uint]*userFacts, len(snap.Users))
	for _, u := range snap.Users {
		times := timesByUser[u.ID]
		pref := prefByUser[u.ID]

		recent := false
		for _, t := range times {
			if !t.Before(cutoff) {
				recent = true
				break
			}
		}

		f := &userFacts{
			user:           u,
			preference:     pref,
			messageTimes:   times,
			messageCount:   len(times),
			sessionsAll:    analytics.CountSessions(times),
			sessionsRecent: analytics.CountSessionsSince(times, cutoff),
		}

		signals := analytics.StageSignals{
			HasSavedFavorite:       favoritedByUser[u.ID],
			HasCompletedMatch:      pref != nil && pref.Completed,
			HasStartedMatch:        matchStartedByUser[u.ID],
			HasDefinedPreferences:  pref != nil,
			HasCompletedOnboarding: onboardedByUser[u.ID],
			IsActivated:            analytics.IsEngaged(f.sessionsAll),
			HasAnyActivity:         len(times) > 0,
			HasRecentActivity:      recent,
		}
		f.stage = policy.Classify(signals)

		facts[u.ID] = f
	}
	return facts
}

// toUserSummaryDTO projects one user's facts into the directory entry shape.
func toUserSummaryDTO(f *userFacts) dto.UserSummaryDTO {
	var lastActive *string
	if len(f.messageTimes) > 0 {
		last := f.messageTimes[0]
		for _, t := range f.messageTimes[1:] {
			if t.After(last) {
				last = t
			}
		}
		lastActive = utils.ToPtr(last.Format(time.RFC3339))
	}

	return dto.UserSummaryDTO{
		UUID:         f.user.UUID.String(),
		DisplayName:  utils.StringOr(f.user.DisplayName, utils.AnonymousDisplayName),
		City:         f.user.City,
		RegisteredAt: f.user.CreatedAt.Format(time.RFC3339),
		LastActiveAt: lastActive,
		MessageCount: f.messageCount,
		SessionCount: f.sessionsAll,
		Stage:        f.stage.String(),
	}
}

// courseInterest flattens preference selections into the display form used by
// CRM exports.
func courseInterest(pref *models.Preference) string {
	if pref == nil {
		return ""
	}
	return strings.Join(pref.Selections, ", ")
}

// parseRange validates the optional inclusive registration date range. The end
// date is widened to the last instant of its calendar day.
func parseRange(req *dto.AnalyticsRangeRequest) (start, end *time.Time, err error) {
	if req == nil {
		return nil, nil, nil
	}

	if req.StartDate != nil && *req.StartDate != "" {
		t, perr := time.Parse("2006-01-02", *req.StartDate)
		if perr != nil {
			return nil, nil, NewBusinessError("INVALID_DATE", "start_date is malformed", ErrInvalidDateFormat)
		}
		start = &t
	}

	if req.EndDate != nil && *req.EndDate != "" {
		t, perr := time.Parse("2006-01-02", *req.EndDate)
		if perr != nil {
			return nil, nil, NewBusinessError("INVALID_DATE", "end_date is malformed", ErrInvalidDateFormat)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		end = &t
	}

	if start != nil && end != nil && start.After(*end) {
		return nil, nil, NewBusinessError("INVALID_DATE_RANGE", "start_date is after end_date", ErrStartDateAfterEndDate)
	}
	return start, end, nil
}

// normalizePage applies defaults and bounds to page/page_size parameters.
func normalizePage(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = utils.DefaultConversationPageSize
	}
	if page < 1 {
		return 0, 0, NewBusinessError("INVALID_PAGE", "page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > utils.MaxConversationPageSize {
		return 0, 0, NewBusinessError("INVALID_PAGE_SIZE", "page size is out of range", ErrInvalidPageSize)
	}
	return page, pageSize, nil
}
