// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/lumelearn/insight-engine/app/dto"
	businessflow "github.com/lumelearn/insight-engine/business_flow"
)

// SegmentHandlerInterface defines the contract for CRM segmentation endpoints.
type SegmentHandlerInterface interface {
	GetSegments(c fiber.Ctx) error
	ExportSegments(c fiber.Ctx) error
}

// SegmentHandler handles CRM segmentation requests.
type SegmentHandler struct {
	flow      businessflow.SegmentFlow
	validator *validator.Validate
}

// NewSegmentHandler creates a new segment handler.
func NewSegmentHandler(flow businessflow.SegmentFlow) *SegmentHandler {
	return &SegmentHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *SegmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SegmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetSegments returns the disjoint CRM outreach buckets.
// @Summary CRM segments
// @Description Partition matched prospects into disjoint outreach buckets
// @Tags Segments
// @Produce json
// @Param start_date query string false "Registration range start (YYYY-MM-DD)"
// @Param end_date query string false "Registration range end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.SegmentsResponse} "Segments generated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/segments [get]
func (h *SegmentHandler) GetSegments(c fiber.Ctx) error {
	var req dto.AnalyticsRangeRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.GetSegments(h.createRequestContext(c, "/api/v1/analytics/segments"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_DATE", "INVALID_DATE_RANGE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate segments", "SEGMENT_AGGREGATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Segments generated", res)
}

// ExportSegments streams the segmentation as a spreadsheet download.
// @Summary Export CRM segments
// @Description Download the segmentation as CSV (default) or XLSX
// @Tags Segments
// @Produce application/octet-stream
// @Param format query string false "Export format: csv or xlsx (default csv)"
// @Param start_date query string false "Registration range start (YYYY-MM-DD)"
// @Param end_date query string false "Registration range end (YYYY-MM-DD)"
// @Success 200 {file} file "Spreadsheet file"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/segments/export [get]
func (h *SegmentHandler) ExportSegments(c fiber.Ctx) error {
	var rangeReq dto.AnalyticsRangeRequest
	if err := c.Bind().Query(&rangeReq); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	var formatReq dto.SegmentExportRequest
	if err := c.Bind().Query(&formatReq); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&formatReq); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	filename, contentType, content, err := h.flow.ExportSegments(h.createRequestContext(c, "/api/v1/analytics/segments/export"), &rangeReq, formatReq.Format, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_DATE", "INVALID_DATE_RANGE", "INVALID_EXPORT_FORMAT":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid export parameters", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export segments", "SEGMENT_EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(fiber.StatusOK).Send(content)
}

func (h *SegmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	// Exports walk the full snapshot, so they get a longer deadline.
	return createRequestContext(c, endpoint, 60*time.Second)
}
