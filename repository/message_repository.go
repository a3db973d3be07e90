// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lumelearn/insight-engine/models"
	"gorm.io/gorm"
)

// MessageRepositoryImpl implements MessageRepository interface
type MessageRepositoryImpl struct {
	*BaseRepository[models.Message]
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Message](db),
	}
}

// ListAllBetween drains every message in the optional created_at range,
// ordered by creation time.
func (r *MessageRepositoryImpl) ListAllBetween(ctx context.Context, start, end *time.Time) ([]*models.Message, error) {
	db := r.getDB(ctx)

	return FetchAllPages(DefaultPageSize, func(limit, offset int) ([]*models.Message, error) {
		query := db.WithContext(ctx).Model(&models.Message{})
		if start != nil {
			query = query.Where("created_at >= ?", *start)
		}
		if end != nil {
			query = query.Where("created_at <= ?", *end)
		}

		var rows []*models.Message
		err := query.Order("created_at ASC, id ASC").Limit(limit).Offset(offset).Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		return rows, nil
	})
}

// ListByUserIDs fetches every message belonging to the given users. Oversized
// id lists are recovered by adaptive binary splitting; the second return value
// holds user ids whose rows were lost to un-splittable failures.
func (r *MessageRepositoryImpl) ListByUserIDs(ctx context.Context, userIDs []uint) ([]*models.Message, []uint, error) {
	db := r.getDB(ctx)

	result, err := FetchByIDsSplit(ctx, userIDs, func(ctx context.Context, ids []uint) ([]*models.Message, error) {
		return FetchAllPages(DefaultPageSize, func(limit, offset int) ([]*models.Message, error) {
			var rows []*models.Message
			err := db.WithContext(ctx).
				Where("user_id IN ?", ids).
				Order("created_at ASC, id ASC").
				Limit(limit).
				Offset(offset).
				Find(&rows).Error
			if err != nil {
				return nil, fmt.Errorf("failed to list messages by user ids: %w", err)
			}
			return rows, nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return result.Rows, result.FailedIDs, nil
}

// PageByUser returns one page of a user's messages plus a has-more flag.
func (r *MessageRepositoryImpl) PageByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, bool, error) {
	db := r.getDB(ctx)

	// Fetch one extra row to learn whether another page exists.
	var rows []*models.Message
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(limit + 1).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to page messages for user %d: %w", userID, err)
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	return rows, hasMore, nil
}

// CountByUser returns the total number of messages for one user.
func (r *MessageRepositoryImpl) CountByUser(ctx context.Context, userID uint) (int64, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages for user %d: %w", userID, err)
	}
	return count, nil
}
