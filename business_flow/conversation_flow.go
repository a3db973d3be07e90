package businessflow

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/models"
	"github.com/lumelearn/insight-engine/repository"
	"github.com/lumelearn/insight-engine/utils"
)

// ConversationFlow defines the user directory and conversation use cases.
type ConversationFlow interface {
	ListUsers(ctx context.Context, req *dto.UserListRequest, metadata *ClientMetadata) (*dto.UserListResponse, error)
	GetConversation(ctx context.Context, userUUID string, req *dto.ConversationRequest, metadata *ClientMetadata) (*dto.ConversationResponse, error)
}

// ConversationFlowImpl implements ConversationFlow.
type ConversationFlowImpl struct {
	loader         *SnapshotLoader
	userRepo       repository.UserRepository
	messageRepo    repository.MessageRepository
	favoriteRepo   repository.FavoriteRepository
	preferenceRepo repository.PreferenceRepository
	policy         analytics.StagePolicy
}

// NewConversationFlow creates a new conversation flow.
func NewConversationFlow(
	loader *SnapshotLoader,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	favoriteRepo repository.FavoriteRepository,
	preferenceRepo repository.PreferenceRepository,
	policy analytics.StagePolicy,
) ConversationFlow {
	return &ConversationFlowImpl{
		loader:         loader,
		userRepo:       userRepo,
		messageRepo:    messageRepo,
		favoriteRepo:   favoriteRepo,
		preferenceRepo: preferenceRepo,
		policy:         policy,
	}
}

// ListUsers returns one page of the user directory, newest registration first,
// with each user's derived engagement facts attached.
func (f *ConversationFlowImpl) ListUsers(ctx context.Context, req *dto.UserListRequest, metadata *ClientMetadata) (*dto.UserListResponse, error) {
	if req == nil {
		req = &dto.UserListRequest{}
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	start, end, err := parseRange(&req.AnalyticsRangeRequest)
	if err != nil {
		return nil, err
	}

	snap, err := f.loader.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	facts := deriveFacts(snap, f.policy, snap.TakenAt)

	ordered := make([]*userFacts, 0, len(snap.Users))
	for _, u := range snap.Users {
		ordered = append(ordered, facts[u.ID])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].user.CreatedAt.After(ordered[j].user.CreatedAt)
	})

	total := len(ordered)
	from := (page - 1) * pageSize
	if from > total {
		from = total
	}
	to := from + pageSize
	if to > total {
		to = total
	}

	users := make([]dto.UserSummaryDTO, 0, to-from)
	for _, uf := range ordered[from:to] {
		users = append(users, toUserSummaryDTO(uf))
	}

	return &dto.UserListResponse{
		Message: "Users retrieved",
		Users:   users,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			HasMore:    to < total,
		},
	}, nil
}

// GetConversation returns one page of a single user's messages, oldest first,
// alongside the user's directory entry.
func (f *ConversationFlowImpl) GetConversation(ctx context.Context, userUUID string, req *dto.ConversationRequest, metadata *ClientMetadata) (*dto.ConversationResponse, error) {
	id, err := uuid.Parse(userUUID)
	if err != nil {
		return nil, NewBusinessError("INVALID_USER_ID", "user id is malformed", ErrInvalidUserID)
	}

	if req == nil {
		req = &dto.ConversationRequest{}
	}
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	user, err := f.userRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to load user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "user not found", ErrUserNotFound)
	}

	summary, err := f.summarizeUser(ctx, user)
	if err != nil {
		return nil, err
	}

	total, err := f.messageRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to count messages", err)
	}

	rows, hasMore, err := f.messageRepo.PageByUser(ctx, user.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to load messages", err)
	}

	messages := make([]dto.MessageDTO, len(rows))
	for i, m := range rows {
		messages[i] = dto.MessageDTO{
			ID:          m.ID,
			Body:        m.Body,
			WorkflowTag: m.WorkflowTag,
			SentAt:      m.CreatedAt.Format(time.RFC3339),
		}
	}

	return &dto.ConversationResponse{
		Message:  "Conversation retrieved",
		User:     summary,
		Messages: messages,
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: int(total),
			HasMore:    hasMore,
		},
	}, nil
}

// summarizeUser derives one user's facts from their own rows only, through the
// same derivation the full-snapshot reports use.
func (f *ConversationFlowImpl) summarizeUser(ctx context.Context, user *models.User) (dto.UserSummaryDTO, error) {
	messages, _, err := f.messageRepo.ListByUserIDs(ctx, []uint{user.ID})
	if err != nil {
		return dto.UserSummaryDTO{}, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to load messages", err)
	}
	favorites, err := f.favoriteRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return dto.UserSummaryDTO{}, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to load favorites", err)
	}
	pref, err := f.preferenceRepo.ByUserID(ctx, user.ID)
	if err != nil {
		return dto.UserSummaryDTO{}, NewBusinessError("CONVERSATION_LOAD_FAILED", "Failed to load preferences", err)
	}

	snap := &Snapshot{
		Users:     []*models.User{user},
		Messages:  messages,
		Favorites: favorites,
		TakenAt:   utils.UTCNow(),
	}
	if pref != nil {
		snap.Preferences = []*models.Preference{pref}
	}

	facts := deriveFacts(snap, f.policy, snap.TakenAt)
	return toUserSummaryDTO(facts[user.ID]), nil
}
