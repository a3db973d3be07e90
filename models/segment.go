package models

// SegmentName identifies one of the mutually exclusive CRM export buckets.
// A user appears in at most one segment per export; users that are neither
// engaged nor inside the focus region are not exported at all.
type SegmentName string

const (
	SegmentEngagedFocusRegion SegmentName = "engaged_focus_region"
	SegmentEngagedOther       SegmentName = "engaged_other"
	SegmentDormantFocusRegion SegmentName = "dormant_focus_region"
)

// SegmentNames is the priority order in which users are claimed by segments.
var SegmentNames = []SegmentName{
	SegmentEngagedFocusRegion,
	SegmentEngagedOther,
	SegmentDormantFocusRegion,
}

func (s SegmentName) String() string {
	return string(s)
}
