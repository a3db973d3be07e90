package dto

// AnalyticsRangeRequest carries the optional registration date range shared by
// the funnel and segmentation endpoints. Dates are inclusive calendar days.
type AnalyticsRangeRequest struct {
	StartDate *string `query:"start_date" json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `query:"end_date" json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// FunnelRequest selects the registration range and the level of detail of the
// funnel report.
type FunnelRequest struct {
	AnalyticsRangeRequest
	IncludeDetails bool `query:"include_details" json:"include_details,omitempty"`
}

// FunnelExportRequest selects the output format of the funnel export.
type FunnelExportRequest struct {
	Format string `query:"format" json:"format,omitempty" validate:"omitempty,oneof=csv"`
}

// FunnelStageCount is one row of the funnel report. UserIDs is only populated
// when details were requested.
type FunnelStageCount struct {
	Stage       string   `json:"stage"`
	Description string   `json:"description"`
	UserCount   int      `json:"user_count"`
	UserIDs     []string `json:"user_ids,omitempty"`
}

// FunnelResponse reports stage counts in canonical ascending order.
type FunnelResponse struct {
	Message     string             `json:"message"`
	TotalUsers  int                `json:"total_users"`
	LostUsers   int                `json:"lost_users,omitempty"`
	Stages      []FunnelStageCount `json:"stages"`
	GeneratedAt string             `json:"generated_at"`
}

// ActivityRequest selects the bucketing mode of the activity report.
// Zoom is an optional local hour; when present it replaces the mode with a
// quarter-hour breakdown of that hour.
type ActivityRequest struct {
	Mode string `query:"mode" json:"mode,omitempty" validate:"omitempty,oneof=day week"`
	Zoom *int   `query:"zoom" json:"zoom,omitempty" validate:"omitempty,min=0,max=23"`
}

// ActivityBucketDTO is one labeled time bucket.
type ActivityBucketDTO struct {
	Label        string `json:"label"`
	MessageCount int    `json:"message_count"`
	ActiveUsers  int    `json:"active_users"`
}

// ActivityResponse is the bucketed activity report.
type ActivityResponse struct {
	Message        string              `json:"message"`
	Mode           string              `json:"mode"`
	UTCOffsetHours int                 `json:"utc_offset_hours"`
	Buckets        []ActivityBucketDTO `json:"buckets"`
	GeneratedAt    string              `json:"generated_at"`
}
