package dto

// UserListRequest pages through the dashboard user directory, optionally
// restricted to a registration date range.
type UserListRequest struct {
	AnalyticsRangeRequest
	Page     int `query:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" json:"page_size" validate:"omitempty,min=1,max=200"`
}

// UserSummaryDTO is one directory entry with its derived engagement facts.
type UserSummaryDTO struct {
	UUID         string  `json:"uuid"`
	DisplayName  string  `json:"display_name"`
	City         *string `json:"city,omitempty"`
	RegisteredAt string  `json:"registered_at"`
	LastActiveAt *string `json:"last_active_at,omitempty"`
	MessageCount int     `json:"message_count"`
	SessionCount int     `json:"session_count"`
	Stage        string  `json:"stage"`
}

// PaginationMeta describes the window a paged response covers.
type PaginationMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalItems int  `json:"total_items"`
	HasMore    bool `json:"has_more"`
}

// UserListResponse is one page of the user directory.
type UserListResponse struct {
	Message    string           `json:"message"`
	Users      []UserSummaryDTO `json:"users"`
	Pagination PaginationMeta   `json:"pagination"`
}

// ConversationRequest pages through one user's message history.
type ConversationRequest struct {
	Page     int `query:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" json:"page_size" validate:"omitempty,min=1,max=200"`
}

// MessageDTO is one message in a conversation, oldest first.
type MessageDTO struct {
	ID          int64   `json:"id"`
	Body        string  `json:"body"`
	WorkflowTag *string `json:"workflow_tag,omitempty"`
	SentAt      string  `json:"sent_at"`
}

// ConversationResponse is one page of a single user's conversation.
type ConversationResponse struct {
	Message    string         `json:"message"`
	User       UserSummaryDTO `json:"user"`
	Messages   []MessageDTO   `json:"messages"`
	Pagination PaginationMeta `json:"pagination"`
}
