// Package models contains domain entities and business models for the analytics engine
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account on the matching platform. Profile attributes are filled
// in by external profile-edit flows and may be missing for any given user.
type User struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_users_uuid" json:"uuid"`

	DisplayName *string `gorm:"size:120" json:"display_name,omitempty"`
	City        *string `gorm:"size:80;index:idx_users_city" json:"city,omitempty"`
	PhoneNumber *string `gorm:"size:20" json:"phone_number,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_users_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Messages   []Message   `gorm:"foreignKey:UserID" json:"-"`
	Favorites  []Favorite  `gorm:"foreignKey:UserID" json:"-"`
	Preference *Preference `gorm:"foreignKey:UserID" json:"preference,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	City          *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
