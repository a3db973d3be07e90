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
	"github.com/lumelearn/insight-engine/utils"
)

// AnalyticsHandlerInterface defines the contract for the funnel and activity reports.
type AnalyticsHandlerInterface interface {
	GetFunnel(c fiber.Ctx) error
	ExportFunnel(c fiber.Ctx) error
	GetActivity(c fiber.Ctx) error
}

// AnalyticsHandler handles analytics report requests.
type AnalyticsHandler struct {
	funnelFlow   businessflow.FunnelFlow
	activityFlow businessflow.ActivityFlow
	validator    *validator.Validate
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(funnelFlow businessflow.FunnelFlow, activityFlow businessflow.ActivityFlow) *AnalyticsHandler {
	return &AnalyticsHandler{
		funnelFlow:   funnelFlow,
		activityFlow: activityFlow,
		validator:    validator.New(),
	}
}

func (h *AnalyticsHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AnalyticsHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetFunnel returns the funnel report.
// @Summary Funnel report
// @Description Classify every user into a single life-cycle stage and report counts per stage
// @Tags Analytics
// @Produce json
// @Param start_date query string false "Registration range start (YYYY-MM-DD)"
// @Param end_date query string false "Registration range end (YYYY-MM-DD)"
// @Param include_details query bool false "Include per-stage user UUIDs"
// @Success 200 {object} dto.APIResponse{data=dto.FunnelResponse} "Report generated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/funnel [get]
func (h *AnalyticsHandler) GetFunnel(c fiber.Ctx) error {
	var req dto.FunnelRequest
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
	res, err := h.funnelFlow.GetFunnel(h.createRequestContext(c, "/api/v1/analytics/funnel"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_DATE", "INVALID_DATE_RANGE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate funnel report", "FUNNEL_AGGREGATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Funnel report generated", res)
}

// ExportFunnel streams the funnel report as a CSV download.
// @Summary Funnel export
// @Description Download the funnel report as CSV
// @Tags Analytics
// @Produce text/csv
// @Param start_date query string false "Registration range start (YYYY-MM-DD)"
// @Param end_date query string false "Registration range end (YYYY-MM-DD)"
// @Param format query string false "Export format (csv)"
// @Success 200 {file} file "CSV document"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/funnel/export [get]
func (h *AnalyticsHandler) ExportFunnel(c fiber.Ctx) error {
	var rangeReq dto.AnalyticsRangeRequest
	if err := c.Bind().Query(&rangeReq); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	var exportReq dto.FunnelExportRequest
	if err := c.Bind().Query(&exportReq); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	for _, req := range []any{&rangeReq, &exportReq} {
		if err := h.validator.Struct(req); err != nil {
			var validationErrors []string
			for _, e := range err.(validator.ValidationErrors) {
				validationErrors = append(validationErrors, getValidationErrorMessage(e))
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	filename, contentType, content, err := h.funnelFlow.ExportFunnel(h.createRequestContext(c, "/api/v1/analytics/funnel/export"), &rangeReq, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_DATE", "INVALID_DATE_RANGE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export funnel report", "FUNNEL_AGGREGATION_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(content)
}

// GetActivity returns the bucketed activity report.
// @Summary Activity report
// @Description Bucket message activity into local-time intervals (week, day, or a zoomed hour)
// @Tags Analytics
// @Produce json
// @Param mode query string false "Bucketing mode: day or week (default week)"
// @Param zoom query int false "Local hour (0-23) to zoom into quarter-hour slots"
// @Success 200 {object} dto.APIResponse{data=dto.ActivityResponse} "Report generated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/activity [get]
func (h *AnalyticsHandler) GetActivity(c fiber.Ctx) error {
	var req dto.ActivityRequest
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
	res, err := h.activityFlow.GetActivity(h.createRequestContext(c, "/api/v1/analytics/activity"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_ACTIVITY_MODE", "INVALID_ZOOM_HOUR":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid report parameters", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate activity report", "ACTIVITY_AGGREGATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Activity report generated", res)
}

func (h *AnalyticsHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContext(c, endpoint, 30*time.Second)
}

// createRequestContext builds the flow context carrying request metadata.
// Shared by every handler in the package.
func createRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
