// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/lumelearn/insight-engine/models"
	"gorm.io/gorm"
)

// FavoriteRepositoryImpl implements FavoriteRepository interface
type FavoriteRepositoryImpl struct {
	*BaseRepository[models.Favorite]
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &FavoriteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Favorite](db),
	}
}

// ListAll drains the full favorites table.
func (r *FavoriteRepositoryImpl) ListAll(ctx context.Context) ([]*models.Favorite, error) {
	db := r.getDB(ctx)

	return FetchAllPages(DefaultPageSize, func(limit, offset int) ([]*models.Favorite, error) {
		var rows []*models.Favorite
		err := db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list favorites: %w", err)
		}
		return rows, nil
	})
}

// ListByUser returns every favorite saved by one user.
func (r *FavoriteRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*models.Favorite, error) {
	db := r.getDB(ctx)

	var rows []*models.Favorite
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %d: %w", userID, err)
	}
	return rows, nil
}
