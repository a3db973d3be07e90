package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lumelearn/insight-engine/analytics"
	"github.com/lumelearn/insight-engine/app/dto"
	"github.com/lumelearn/insight-engine/models"
	"github.com/lumelearn/insight-engine/utils"
)

// FunnelFlow defines the funnel report use case.
type FunnelFlow interface {
	GetFunnel(ctx context.Context, req *dto.FunnelRequest, metadata *ClientMetadata) (*dto.FunnelResponse, error)
	ExportFunnel(ctx context.Context, req *dto.AnalyticsRangeRequest, metadata *ClientMetadata) (string, string, []byte, error)
}

// FunnelFlowImpl implements FunnelFlow.
type FunnelFlowImpl struct {
	loader *SnapshotLoader
	policy analytics.StagePolicy
}

// NewFunnelFlow creates a new funnel flow.
func NewFunnelFlow(loader *SnapshotLoader, policy analytics.StagePolicy) FunnelFlow {
	return &FunnelFlowImpl{
		loader: loader,
		policy: policy,
	}
}

var funnelExportHeader = []string{"funnel_stage", "description", "user_count"}

// GetFunnel classifies every user in the optional registration range into
// exactly one stage and reports counts in canonical ascending order. Stages
// with no users are still present with a zero count.
func (f *FunnelFlowImpl) GetFunnel(ctx context.Context, req *dto.FunnelRequest, metadata *ClientMetadata) (*dto.FunnelResponse, error) {
	if req == nil {
		req = &dto.FunnelRequest{}
	}
	start, end, err := parseRange(&req.AnalyticsRangeRequest)
	if err != nil {
		return nil, err
	}

	snap, err := f.loader.Load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	facts := deriveFacts(snap, f.policy, snap.TakenAt)

	counts := make(map[models.FunnelStage]int, len(models.FunnelStages))
	ids := make(map[models.FunnelStage][]string)
	for _, uf := range facts {
		counts[uf.stage]++
		if req.IncludeDetails {
			ids[uf.stage] = append(ids[uf.stage], uf.user.UUID.String())
		}
	}

	stages := make([]dto.FunnelStageCount, 0, len(models.FunnelStages))
	for _, stage := range models.FunnelStages {
		row := dto.FunnelStageCount{
			Stage:       stage.String(),
			Description: stage.Description(),
			UserCount:   counts[stage],
		}
		if req.IncludeDetails {
			sort.Strings(ids[stage])
			row.UserIDs = ids[stage]
		}
		stages = append(stages, row)
	}

	return &dto.FunnelResponse{
		Message:     "Funnel report generated",
		TotalUsers:  len(snap.Users),
		LostUsers:   len(snap.LostUserIDs),
		Stages:      stages,
		GeneratedAt: snap.TakenAt.Format(time.RFC3339),
	}, nil
}

// ExportFunnel renders the funnel report as a CSV download. Returns filename,
// content type, and file content.
func (f *FunnelFlowImpl) ExportFunnel(ctx context.Context, req *dto.AnalyticsRangeRequest, metadata *ClientMetadata) (string, string, []byte, error) {
	res, err := f.GetFunnel(ctx, &dto.FunnelRequest{AnalyticsRangeRequest: *req}, metadata)
	if err != nil {
		return "", "", nil, err
	}

	rows := make([][]string, 0, len(res.Stages))
	for _, s := range res.Stages {
		rows = append(rows, []string{s.Stage, s.Description, strconv.Itoa(s.UserCount)})
	}

	content := utils.WriteCSV(funnelExportHeader, rows)
	filename := fmt.Sprintf("funnel_report_%s.csv", utils.UTCNow().Format("2006-01-02"))
	return filename, "text/csv; charset=utf-8", content, nil
}
