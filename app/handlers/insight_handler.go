// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/lumelearn/insight-engine/app/dto"
	businessflow "github.com/lumelearn/insight-engine/business_flow"
)

// InsightHandlerInterface defines the contract for AI-assisted insights.
type InsightHandlerInterface interface {
	GetInsights(c fiber.Ctx) error
}

// InsightHandler handles insight requests.
type InsightHandler struct {
	flow businessflow.InsightFlow
}

// NewInsightHandler creates a new insight handler.
func NewInsightHandler(flow businessflow.InsightFlow) *InsightHandler {
	return &InsightHandler{
		flow: flow,
	}
}

func (h *InsightHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *InsightHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetInsights returns narrative insights over the current analytics state.
// @Summary Insights
// @Description Serve cached or freshly generated narrative insights for the dashboard
// @Tags Insights
// @Accept json
// @Produce json
// @Param request body dto.InsightRequest false "Generation options"
// @Success 200 {object} dto.APIResponse{data=dto.InsightsResponse} "Insights served"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Failure 503 {object} dto.APIResponse "Insight generation disabled"
// @Router /api/v1/analytics/insights [post]
func (h *InsightHandler) GetInsights(c fiber.Ctx) error {
	var req dto.InsightRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.GetInsights(h.createRequestContext(c, "/api/v1/analytics/insights"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INSIGHTS_UNAVAILABLE":
				return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Insight generation is disabled", be.Code, be.Error())
			case "INSIGHT_GENERATION_FAILED":
				return h.ErrorResponse(c, fiber.StatusBadGateway, "Insight generation failed", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to serve insights", "INSIGHT_GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *InsightHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	// Generation may call the external collaborator.
	return createRequestContext(c, endpoint, 90*time.Second)
}
