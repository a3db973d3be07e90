package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/models"
	"github.com/lumelearn/insight-engine/utils"
)

// SegmentFlow defines the CRM segmentation and export use cases.
type SegmentFlow interface {
	GetSegments(ctx context.Context, req *dto.AnalyticsRangeRequest, metadata *ClientMetadata) (*dto.SegmentsResponse, error)
	ExportSegments(ctx context.Context, req *dto.AnalyticsRangeRequest, format string, metadata *ClientMetadata) (string, string, []byte, error)
}

// SegmentFlowImpl implements SegmentFlow.
type SegmentFlowImpl struct {
	loader *SnapshotLoader
	policy analytics.StagePolicy
	focus  analytics.FocusRegions
}

// NewSegmentFlow creates a new segment flow.
func NewSegmentFlow(loader *SnapshotLoader, policy analytics.StagePolicy, focus analytics.FocusRegions) SegmentFlow {
	return &SegmentFlowImpl{
		loader: loader,
		policy: policy,
		focus:  focus,
	}
}

var segmentExportHeader = []string{
	"segment", "display_name", "phone_number", "city", "course_interest", "funnel_stage", "registered_at",
}

// GetSegments partitions the current prospects into the three disjoint
// outreach buckets.
func (f *SegmentFlowImpl) GetSegments(ctx context.Context, req *dto.AnalyticsRangeRequest, metadata *ClientMetadata) (*dto.SegmentsResponse, error) {
	seg, takenAt, err := f.segment(ctx, req)
	if err != nil {
		return nil, err
	}

	groups := make([]dto.SegmentGroupDTO, 0, len(models.SegmentNames))
	total := 0
	for _, name := range models.SegmentNames {
		contacts := contactsFor(seg, name)
		total += len(contacts)
		groups = append(groups, dto.SegmentGroupDTO{
			Name:     name.String(),
			Count:    len(contacts),
			Contacts: toContactDTOs(contacts),
		})
	}

	return &dto.SegmentsResponse{
		Message:        "Segments generated",
		TotalProspects: total,
		Segments:       groups,
		GeneratedAt:    takenAt.Format(time.RFC3339),
	}, nil
}

// ExportSegments renders the segmentation as a downloadable spreadsheet.
// Returns filename, content type and file bytes.
func (f *SegmentFlowImpl) ExportSegments(ctx context.Context, req *dto.AnalyticsRangeRequest, format string, metadata *ClientMetadata) (string, string, []byte, error) {
	switch format {
	case "", "csv", "xlsx":
	default:
		return "", "", nil, NewBusinessError("INVALID_EXPORT_FORMAT", "unknown export format", ErrInvalidExportFormat)
	}

	seg, takenAt, err := f.segment(ctx, req)
	if err != nil {
		return "", "", nil, err
	}

	if format == "xlsx" {
		return f.exportExcel(seg, takenAt)
	}
	return f.exportCSV(seg, takenAt)
}

func (f *SegmentFlowImpl) segment(ctx context.Context, req *dto.AnalyticsRangeRequest) (analytics.Segmentation, time.Time, error) {
	start, end, err := parseRange(req)
	if err != nil {
		return analytics.Segmentation{}, time.Time{}, err
	}

	snap, err := f.loader.Load(ctx, start, end)
	if err != nil {
		return analytics.Segmentation{}, time.Time{}, err
	}
	facts := deriveFacts(snap, f.policy, snap.TakenAt)

	prospects := make([]analytics.Prospect, 0, len(snap.Users))
	for _, u := range snap.Users {
		uf := facts[u.ID]

		var selections []string
		if uf.preference != nil {
			selections = uf.preference.Selections
		}
		city := utils.StringOr(u.City, "")

		prospects = append(prospects, analytics.Prospect{
			UserID:         u.ID,
			DisplayName:    utils.StringOr(u.DisplayName, utils.AnonymousDisplayName),
			PhoneNumber:    utils.StringOr(u.PhoneNumber, ""),
			City:           city,
			CourseInterest: courseInterest(uf.preference),
			Stage:          uf.stage,
			RegisteredAt:   u.CreatedAt,
			Engaged:        analytics.IsEngaged(uf.sessionsRecent),
			InFocusRegion:  f.focus.Contains(city, selections),
			SessionCount:   uf.sessionsRecent,
		})
	}

	return analytics.PartitionSegments(prospects), snap.TakenAt, nil
}

func (f *SegmentFlowImpl) exportCSV(seg analytics.Segmentation, takenAt time.Time) (string, string, []byte, error) {
	var rows [][]string
	for _, name := range models.SegmentNames {
		for _, c := range contactsFor(seg, name) {
			rows = append(rows, []string{
				name.String(),
				c.DisplayName,
				c.PhoneNumber,
				c.City,
				c.CourseInterest,
				c.FunnelStage,
				c.RegisteredAt.UTC().Format(time.RFC3339),
			})
		}
	}

	filename := fmt.Sprintf("crm_segments_%s.csv", takenAt.Format("2006-01-02"))
	return filename, "text/csv; charset=utf-8", utils.WriteCSV(segmentExportHeader, rows), nil
}

func (f *SegmentFlowImpl) exportExcel(seg analytics.Segmentation, takenAt time.Time) (string, string, []byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	for i, name := range models.SegmentNames {
		sheet := name.String()
		if i == 0 {
			xl.SetSheetName(xl.GetSheetName(0), sheet)
		} else {
			_, _ = xl.NewSheet(sheet)
		}

		header := segmentExportHeader[1:]
		_ = xl.SetSheetRow(sheet, "A1", &header)

		for ri, c := range contactsFor(seg, name) {
			record := []string{
				c.DisplayName,
				c.PhoneNumber,
				c.City,
				c.CourseInterest,
				c.FunnelStage,
				c.RegisteredAt.UTC().Format(time.RFC3339),
			}
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(sheet, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("crm_segments_%s.xlsx", takenAt.Format("2006-01-02"))
	return filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes(), nil
}

func contactsFor(seg analytics.Segmentation, name models.SegmentName) []analytics.Contact {
	switch name {
	case models.SegmentEngagedFocusRegion:
		return seg.EngagedFocusRegion
	case models.SegmentEngagedOther:
		return seg.EngagedOther
	case models.SegmentDormantFocusRegion:
		return seg.DormantFocusRegion
	}
	return nil
}

func toContactDTOs(contacts []analytics.Contact) []dto.SegmentContactDTO {
	out := make([]dto.SegmentContactDTO, len(contacts))
	for i, c := range contacts {
		out[i] = dto.SegmentContactDTO{
			UserID:         c.UserID,
			DisplayName:    c.DisplayName,
			PhoneNumber:    c.PhoneNumber,
			City:           c.City,
			CourseInterest: c.CourseInterest,
			FunnelStage:    c.FunnelStage,
			RegisteredAt:   c.RegisteredAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
