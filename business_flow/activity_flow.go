package businessflow

import (
	"context"
	"time"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/repository"
	"github.com/lumelearn/insight-engine/utils"
)

// ActivityFlow defines the bucketed activity report use case.
type ActivityFlow interface {
	GetActivity(ctx context.Context, req *dto.ActivityRequest, metadata *ClientMetadata) (*dto.ActivityResponse, error)
}

// ActivityFlowImpl implements ActivityFlow.
type ActivityFlowImpl struct {
	messageRepo    repository.MessageRepository
	utcOffsetHours int
}

// NewActivityFlow creates a new activity flow.
func NewActivityFlow(messageRepo repository.MessageRepository, utcOffsetHours int) ActivityFlow {
	return &ActivityFlowImpl{
		messageRepo:    messageRepo,
		utcOffsetHours: utcOffsetHours,
	}
}

// GetActivity buckets message activity into fixed local-time intervals. The
// default week mode covers the 7 local days ending today; day mode covers the
// 24 hours of local today; a zoom hour replaces the mode with four 15-minute
// slots of that hour.
func (f *ActivityFlowImpl) GetActivity(ctx context.Context, req *dto.ActivityRequest, metadata *ClientMetadata) (*dto.ActivityResponse, error) {
	if req == nil {
		req = &dto.ActivityRequest{}
	}

	mode := analytics.ModeWeek
	switch req.Mode {
	case "", string(analytics.ModeWeek):
	case string(analytics.ModeDay):
		mode = analytics.ModeDay
	default:
		return nil, NewBusinessError("INVALID_ACTIVITY_MODE", "unknown activity mode", ErrInvalidActivityMode)
	}

	if req.Zoom != nil && (*req.Zoom < 0 || *req.Zoom > 23) {
		return nil, NewBusinessError("INVALID_ZOOM_HOUR", "zoom hour is out of range", ErrInvalidZoomHour)
	}

	now := utils.UTCNow()

	// Fetch only the messages that can land in a bucket. The window starts at
	// local midnight (today for day/zoom, six days back for week), converted
	// back to UTC by undoing the display offset.
	localNow := utils.ShiftToLocal(now, f.utcOffsetHours)
	localStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)
	if mode == analytics.ModeWeek && req.Zoom == nil {
		localStart = localStart.AddDate(0, 0, -6)
	}
	fetchStart := localStart.Add(-time.Duration(f.utcOffsetHours) * time.Hour)

	messages, err := f.messageRepo.ListAllBetween(ctx, &fetchStart, &now)
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_LOAD_FAILED", "Failed to load messages", err)
	}

	events := make([]analytics.ActivityEvent, len(messages))
	for i, m := range messages {
		events[i] = analytics.ActivityEvent{UserID: m.UserID, At: m.CreatedAt}
	}

	var buckets []analytics.ActivityBucket
	responseMode := string(mode)
	if req.Zoom != nil {
		buckets, err = analytics.BucketHourZoom(events, now, f.utcOffsetHours, *req.Zoom)
		responseMode = "zoom"
	} else {
		buckets, err = analytics.BucketActivity(events, now, f.utcOffsetHours, mode)
	}
	if err != nil {
		return nil, NewBusinessError("ACTIVITY_BUCKETING_FAILED", "Failed to bucket activity", err)
	}

	out := make([]dto.ActivityBucketDTO, len(buckets))
	for i, b := range buckets {
		out[i] = dto.ActivityBucketDTO{
			Label:        b.Label,
			MessageCount: b.EventCount,
			ActiveUsers:  b.DistinctUserCount,
		}
	}

	return &dto.ActivityResponse{
		Message:        "Activity report generated",
		Mode:           responseMode,
		UTCOffsetHours: f.utcOffsetHours,
		Buckets:        out,
		GeneratedAt:    now.Format(time.RFC3339),
	}, nil
}
