// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lumelearn/insight-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// UserRepository defines read operations over the users table.
type UserRepository interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	ListCreatedBetween(ctx context.Context, start, end *time.Time) ([]*models.User, error)
}

// MessageRepository defines read operations over the messages table.
type MessageRepository interface {
	ListAllBetween(ctx context.Context, start, end *time.Time) ([]*models.Message, error)
	ListByUserIDs(ctx context.Context, userIDs []uint) ([]*models.Message, []uint, error)
	PageByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Message, bool, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

// FavoriteRepository defines read operations over the favorites table.
type FavoriteRepository interface {
	ListAll(ctx context.Context) ([]*models.Favorite, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Favorite, error)
}

// PreferenceRepository defines read operations over the preferences table.
type PreferenceRepository interface {
	ListAll(ctx context.Context) ([]*models.Preference, error)
	ByUserID(ctx context.Context, userID uint) (*models.Preference, error)
}
