// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/lumelearn/insight-engine/app/dto"
	businessflow "github.com/lumelearn/insight-engine/business_flow"
)

// ConversationHandlerInterface defines the contract for the user directory and conversations.
type ConversationHandlerInterface interface {
	ListUsers(c fiber.Ctx) error
	GetConversation(c fiber.Ctx) error
}

// ConversationHandler handles user directory and conversation requests.
type ConversationHandler struct {
	flow      businessflow.ConversationFlow
	validator *validator.Validate
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(flow businessflow.ConversationFlow) *ConversationHandler {
	return &ConversationHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *ConversationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ConversationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListUsers returns one page of the user directory.
// @Summary List users
// @Description List users with derived engagement facts, newest registration first
// @Tags Users
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Param start_date query string false "Registration range start (YYYY-MM-DD)"
// @Param end_date query string false "Registration range end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse} "Users retrieved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/users [get]
func (h *ConversationHandler) ListUsers(c fiber.Ctx) error {
	var req dto.UserListRequest
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
	res, err := h.flow.ListUsers(h.createRequestContext(c, "/api/v1/analytics/users"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_PAGE", "INVALID_PAGE_SIZE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", be.Code, be.Error())
			case "INVALID_DATE", "INVALID_DATE_RANGE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid date range", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list users", "USER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Users retrieved", res)
}

// GetConversation returns one page of a single user's messages.
// @Summary Get conversation
// @Description Page through one user's message history, oldest first
// @Tags Users
// @Produce json
// @Param uuid path string true "User UUID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 200)"
// @Success 200 {object} dto.APIResponse{data=dto.ConversationResponse} "Conversation retrieved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/analytics/users/{uuid}/conversation [get]
func (h *ConversationHandler) GetConversation(c fiber.Ctx) error {
	userUUID := c.Params("uuid")

	var req dto.ConversationRequest
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
	res, err := h.flow.GetConversation(h.createRequestContext(c, "/api/v1/analytics/users/:uuid/conversation"), userUUID, &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_USER_ID":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user id", be.Code, be.Error())
			case "USER_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", be.Code, be.Error())
			case "INVALID_PAGE", "INVALID_PAGE_SIZE":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load conversation", "CONVERSATION_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Conversation retrieved", res)
}

func (h *ConversationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContext(c, endpoint, 30*time.Second)
}
