package models

import (
	"time"
)

// Favorite records a user saving an opportunity. Append-only.
type Favorite struct {
	ID            int64  `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	UserID        uint   `gorm:"not null;index:idx_favorites_user_id" json:"user_id"`
	OpportunityID string `gorm:"size:64;not null" json:"opportunity_id"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_favorites_created_at" json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// FavoriteFilter represents filter criteria for favorite queries
type FavoriteFilter struct {
	ID            *int64
	UserID        *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
