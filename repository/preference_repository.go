// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumelearn/insight-engine/models"
	"gorm.io/gorm"
)

// PreferenceRepositoryImpl implements PreferenceRepository interface
type PreferenceRepositoryImpl struct {
	*BaseRepository[models.Preference]
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &PreferenceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Preference](db),
	}
}

// ListAll drains the full preferences table (at most one live row per user).
func (r *PreferenceRepositoryImpl) ListAll(ctx context.Context) ([]*models.Preference, error) {
	db := r.getDB(ctx)

	return FetchAllPages(DefaultPageSize, func(limit, offset int) ([]*models.Preference, error) {
		var rows []*models.Preference
		err := db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list preferences: %w", err)
		}
		return rows, nil
	})
}

// ByUserID returns the user's live preference row, or nil when none exists.
func (r *PreferenceRepositoryImpl) ByUserID(ctx context.Context, userID uint) (*models.Preference, error) {
	db := r.getDB(ctx)

	var pref models.Preference
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find preference for user %d: %w", userID, err)
	}
	return &pref, nil
}
