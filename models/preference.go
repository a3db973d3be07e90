package models

import (
	"time"

	"github.com/lib/pq"
)

// Preference is the single live preference record per user, upserted by the
// preference-edit flow. Selections are stored as a PostgreSQL TEXT[] column.
// Completed is set when the user finishes the full matching questionnaire.
type Preference struct {
	ID         int64          `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	UserID     uint           `gorm:"not null;uniqueIndex:uk_preferences_user_id" json:"user_id"`
	Selections pq.StringArray `gorm:"type:text[]" json:"selections"`
	Completed  bool           `gorm:"not null;default:false" json:"completed"`

	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_preferences_updated_at" json:"updated_at"`
}

func (Preference) TableName() string {
	return "preferences"
}

// PreferenceFilter represents filter criteria for preference queries
type PreferenceFilter struct {
	ID            *int64
	UserID        *uint
	Completed     *bool
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
}
