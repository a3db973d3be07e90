package dto

// SegmentContactDTO is one exportable CRM contact.
type SegmentContactDTO struct {
	UserID         uint   `json:"user_id"`
	DisplayName    string `json:"display_name"`
	PhoneNumber    string `json:"phone_number"`
	City           string `json:"city"`
	CourseInterest string `json:"course_interest"`
	FunnelStage    string `json:"funnel_stage"`
	RegisteredAt   string `json:"registered_at"`
}

// SegmentGroupDTO is one of the three disjoint outreach buckets.
type SegmentGroupDTO struct {
	Name     string              `json:"name"`
	Count    int                 `json:"count"`
	Contacts []SegmentContactDTO `json:"contacts"`
}

// SegmentsResponse partitions every matched prospect into outreach buckets.
type SegmentsResponse struct {
	Message        string            `json:"message"`
	TotalProspects int               `json:"total_prospects"`
	Segments       []SegmentGroupDTO `json:"segments"`
	GeneratedAt    string            `json:"generated_at"`
}

// SegmentExportRequest selects the spreadsheet format of the export.
type SegmentExportRequest struct {
	Format string `query:"format" json:"format,omitempty" validate:"omitempty,oneof=csv xlsx"`
}
