package models

import (
	"time"
)

// Workflow tags attached to chat messages by the conversational flows.
// A tagged message marks the user's progress through that guided workflow.
const (
	WorkflowOnboarding = "onboarding"
	WorkflowMatch      = "match"
)

// Message is a single chat message. Rows are append-only and immutable once
// written; created_at is the ordering key for all derived metrics.
type Message struct {
	ID          int64   `gorm:"primaryKey;autoIncrement;type:bigserial" json:"id"`
	UserID      uint    `gorm:"not null;index:idx_messages_user_id" json:"user_id"`
	Body        string  `gorm:"type:text;not null" json:"body"`
	WorkflowTag *string `gorm:"size:40;index:idx_messages_workflow_tag" json:"workflow_tag,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_messages_created_at" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageFilter represents filter criteria for message queries
type MessageFilter struct {
	ID            *int64
	UserID        *uint
	WorkflowTag   *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
