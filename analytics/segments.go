package analytics

import (
	"strings"
	"time"

	"github.com/lumelearn/insight-engine/models"
)

// FocusRegions is the fixed set of geographic areas prioritized for CRM
// targeting. Matching is case-insensitive on the normalized city name.
type FocusRegions map[string]struct{}

// NewFocusRegions builds the set from configured region names.
func NewFocusRegions(names []string) FocusRegions {
	set := make(FocusRegions, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the user's residence city or any stated preference
// selection falls inside the focus region set.
func (f FocusRegions) Contains(city string, selections []string) bool {
	if _, ok := f[strings.ToLower(strings.TrimSpace(city))]; ok {
		return true
	}
	for _, s := range selections {
		if _, ok := f[strings.ToLower(strings.TrimSpace(s))]; ok {
			return true
		}
	}
	return false
}

// Prospect is one user enriched with the two segmentation facets plus the
// CRM fields carried through to the export. SessionCount is internal scoring
// and never leaves this package.
type Prospect struct {
	UserID         uint
	DisplayName    string
	PhoneNumber    string
	City           string
	CourseInterest string
	Stage          models.FunnelStage
	RegisteredAt   time.Time

	Engaged       bool
	InFocusRegion bool
	SessionCount  int
}

// Contact is the CRM-facing projection of a Prospect with scoring stripped.
type Contact struct {
	UserID         uint      `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	PhoneNumber    string    `json:"phone_number"`
	City           string    `json:"city"`
	CourseInterest string    `json:"course_interest"`
	FunnelStage    string    `json:"funnel_stage"`
	RegisteredAt   time.Time `json:"registered_at"`
}

// Segmentation holds the three mutually exclusive CRM buckets.
type Segmentation struct {
	EngagedFocusRegion []Contact
	EngagedOther       []Contact
	DormantFocusRegion []Contact
}

// PartitionSegments assigns every prospect to the first matching bucket and
// removes it from consideration for the rest, so the buckets are pairwise
// disjoint. Prospects that are neither engaged nor in the focus region are
// not CRM targets and are excluded entirely.
func PartitionSegments(prospects []Prospect) Segmentation {
	var out Segmentation
	for _, p := range prospects {
		switch {
		case p.Engaged && p.InFocusRegion:
			out.EngagedFocusRegion = append(out.EngagedFocusRegion, p.toContact())
		case p.Engaged:
			out.EngagedOther = append(out.EngagedOther, p.toContact())
		case p.InFocusRegion:
			out.DormantFocusRegion = append(out.DormantFocusRegion, p.toContact())
		}
	}
	return out
}

func (p Prospect) toContact() Contact {
	return Contact{
		UserID:         p.UserID,
		DisplayName:    p.DisplayName,
		PhoneNumber:    p.PhoneNumber,
		City:           p.City,
		CourseInterest: p.CourseInterest,
		FunnelStage:    p.Stage.String(),
		RegisteredAt:   p.RegisteredAt,
	}
}
