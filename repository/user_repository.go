// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lumelearn/insight-engine/models"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User](db),
	}
}

// ByUUID returns the user with the given public UUID, or nil when none exists.
func (r *UserRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	db := r.getDB(ctx)

	var user models.User
	err := db.WithContext(ctx).Where("uuid = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user by UUID %s: %w", id, err)
	}
	return &user, nil
}

// ListAll drains the full users table.
func (r *UserRepositoryImpl) ListAll(ctx context.Context) ([]*models.User, error) {
	return r.ListCreatedBetween(ctx, nil, nil)
}

// ListCreatedBetween drains users registered inside the optional range.
func (r *UserRepositoryImpl) ListCreatedBetween(ctx context.Context, start, end *time.Time) ([]*models.User, error) {
	db := r.getDB(ctx)

	return FetchAllPages(DefaultPageSize, func(limit, offset int) ([]*models.User, error) {
		query := db.WithContext(ctx).Model(&models.User{})
		if start != nil {
			query = query.Where("created_at >= ?", *start)
		}
		if end != nil {
			query = query.Where("created_at <= ?", *end)
		}

		var rows []*models.User
		err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		return rows, nil
	})
}
